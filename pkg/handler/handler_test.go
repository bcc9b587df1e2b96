// Copyright (c) 2025, The nsplugins Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package handler

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type stubHandler struct{ uri string }

func (s *stubHandler) NamespaceURI() string { return s.uri }
func (s *stubHandler) Name() string         { return "stub" }
func (s *stubHandler) Parse(context.Context, string) (any, error) {
	return nil, nil
}

// TestRegister tests global factory registration
func TestRegister(t *testing.T) {
	name := "test-register"
	factory := func(uri string) (Handler, error) { return &stubHandler{uri: uri}, nil }

	if err := Register(name, factory); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := Register(name, factory); err == nil {
		t.Error("Register() should fail for duplicate name")
	}
	if err := Register("", factory); err == nil {
		t.Error("Register() should fail for empty name")
	}
	if !slices.Contains(Names(), name) {
		t.Errorf("Names() = %v, missing %s", Names(), name)
	}

	h, err := New(name, "http://example.org/ns")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if h.NamespaceURI() != "http://example.org/ns" {
		t.Errorf("NamespaceURI() = %s", h.NamespaceURI())
	}
}

// TestMustRegisterPanics tests that duplicate registration panics
func TestMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRegister() should panic for duplicate name")
		}
	}()
	MustRegister(GenericName, newGeneric)
}

// TestNewUnknown tests instantiation of an unregistered handler
func TestNewUnknown(t *testing.T) {
	_, err := New("org.example.Missing", "http://example.org/ns")
	if !errors.Is(err, ErrUnknownHandler) {
		t.Errorf("New() error = %v, want ErrUnknownHandler", err)
	}
}

// TestNewFactoryError tests that factory errors are wrapped
func TestNewFactoryError(t *testing.T) {
	if _, err := New(GenericName, ""); err == nil {
		t.Error("New() should fail for empty namespace")
	}
}

// TestGenericParse tests the built-in handler
func TestGenericParse(t *testing.T) {
	const ns = "http://www.example.org/schema/tx"
	h, err := New(GenericName, ns)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if h.Name() != GenericName {
		t.Errorf("Name() = %s", h.Name())
	}

	tests := []struct {
		name    string
		element string
		wantErr bool
	}{
		{"matching namespace", `<?xml version="1.0"?><tx:advice xmlns:tx="` + ns + `" id="txAdvice"/>`, false},
		{"other namespace", `<aop:config xmlns:aop="http://www.example.org/schema/aop"/>`, true},
		{"no namespace", `<advice/>`, true},
		{"empty", ``, true},
		{"malformed", `<tx:advice xmlns:tx="` + ns + `"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Parse(context.Background(), tt.element)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			el, ok := got.(*Element)
			if !ok {
				t.Fatalf("Parse() returned %T", got)
			}
			if el.Name.Local != "advice" || el.Attributes["id"] != "txAdvice" {
				t.Errorf("Parse() = %+v", el)
			}
			if _, ok := el.Attributes["tx"]; ok {
				t.Error("namespace declarations should not be attributes")
			}
		})
	}
}

// TestGenericParseCanceled tests context cancellation
func TestGenericParseCanceled(t *testing.T) {
	h, _ := New(GenericName, "urn:test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Parse(ctx, `<a xmlns="urn:test"/>`); !errors.Is(err, context.Canceled) {
		t.Errorf("Parse() error = %v, want context.Canceled", err)
	}
}
