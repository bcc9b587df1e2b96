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

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

type sample struct {
	Name    string            `json:"name" yaml:"name"`
	Count   int               `json:"count" yaml:"count"`
	Labels  map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Secret  string            `json:"-" yaml:"-"`
	private string
}

type rows [][]string

func (r rows) TableHeader() []string { return []string{"NAMESPACE", "BUNDLE"} }
func (r rows) TableRows() [][]string { return r }

func TestWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)

	in := sample{Name: "tx", Count: 2}
	if err := w.Serialize(context.Background(), in); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	var out sample
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if out.Name != "tx" || out.Count != 2 {
		t.Errorf("decoded = %+v", out)
	}
	if !strings.Contains(buf.String(), "\n  \"name\"") {
		t.Errorf("expected indented JSON, got:\n%s", buf.String())
	}
}

func TestWriter_YAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatYAML, &buf)

	if err := w.Serialize(context.Background(), sample{Name: "aop", Count: 1}); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	var out sample
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if out.Name != "aop" {
		t.Errorf("Name = %q, want aop", out.Name)
	}
}

func TestWriter_UnknownFormatDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	if w.format != FormatJSON {
		t.Fatalf("format = %q, want json", w.format)
	}
	if err := w.Serialize(context.Background(), map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestWriter_TableTabular(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)

	data := rows{
		{"http://example.org/schema/tx", "org.example.tx"},
		{"http://example.org/schema/aop", "org.example.aop"},
	}
	if err := w.Serialize(context.Background(), data); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "NAMESPACE") || !strings.Contains(lines[0], "BUNDLE") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "org.example.aop") {
		t.Errorf("last row = %q", lines[2])
	}

	buf.Reset()
	if err := w.Serialize(context.Background(), rows{}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "<empty>" {
		t.Errorf("empty table = %q", buf.String())
	}
}

func TestWriter_TableFlattened(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)

	in := &sample{
		Name:    "tx",
		Count:   3,
		Labels:  map[string]string{"tier": "core"},
		Secret:  "hidden",
		private: "x",
	}
	if err := w.Serialize(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"FIELD", "name", "tx", "count", "labels.tier", "core"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"Secret", "hidden", "private"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("table should not contain %q:\n%s", unwanted, out)
		}
	}
}

func TestWriter_TableScalar(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), 42); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), defaultValueKey) || !strings.Contains(buf.String(), "42") {
		t.Errorf("scalar table = %q", buf.String())
	}
}

func TestNewFileWriterOrStdout(t *testing.T) {
	t.Run("empty path is stdout", func(t *testing.T) {
		s := NewFileWriterOrStdout(FormatJSON, "  ")
		w, ok := s.(*Writer)
		if !ok {
			t.Fatalf("got %T, want *Writer", s)
		}
		if w.output != os.Stdout {
			t.Error("expected stdout output")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.yaml")
		s := NewFileWriterOrStdout(FormatYAML, path)
		if err := s.Serialize(context.Background(), sample{Name: "tx"}); err != nil {
			t.Fatal(err)
		}
		if err := Close(s); err != nil {
			t.Fatal(err)
		}
		if err := Close(s); err != nil {
			t.Errorf("second Close() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "name: tx") {
			t.Errorf("file content = %q", data)
		}
	})

	t.Run("uncreatable file falls back to stdout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.json")
		w, ok := NewFileWriterOrStdout(FormatJSON, path).(*Writer)
		if !ok || w.output != os.Stdout {
			t.Error("expected stdout fallback")
		}
	})

	t.Run("configmap uri", func(t *testing.T) {
		cm, ok := NewFileWriterOrStdout(FormatYAML, "cm://nsplugins/catalog").(*ConfigMapWriter)
		if !ok {
			t.Fatal("expected *ConfigMapWriter")
		}
		if cm.namespace != "nsplugins" || cm.name != "catalog" || cm.format != FormatYAML {
			t.Errorf("writer = %+v", cm)
		}
	})

	t.Run("malformed configmap uri falls back to stdout", func(t *testing.T) {
		if _, ok := NewFileWriterOrStdout(FormatYAML, "cm://nsplugins").(*Writer); !ok {
			t.Error("expected stdout fallback")
		}
	})
}

func TestFormat(t *testing.T) {
	if FormatTable.Extension() != "txt" || FormatYAML.Extension() != "yaml" {
		t.Error("unexpected extensions")
	}
	if !Format("csv").IsUnknown() {
		t.Error("csv should be unknown")
	}
	if len(SupportedFormats()) != 3 {
		t.Errorf("SupportedFormats() = %v", SupportedFormats())
	}
}

func TestWriter_TableInlineAndTime(t *testing.T) {
	type Meta struct {
		Kind string `json:"kind"`
	}
	type doc struct {
		Meta    `json:",inline"`
		Created time.Time `json:"created"`
		Items   []string  `json:"items"`
	}

	var buf bytes.Buffer
	in := doc{
		Meta:    Meta{Kind: "Catalog"},
		Created: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Items:   []string{"a", "b"},
	}
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"kind", "Catalog", "created", "2025-01-02T03:04:05Z", "items[0]", "items[1]"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Meta") {
		t.Errorf("inline struct should not add a prefix:\n%s", out)
	}
}
