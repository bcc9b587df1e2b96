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

package registry

import (
	"context"
	"errors"
	"testing"

	"pgregory.net/rapid"
)

var propertyKeys = []string{"k0", "k1", "k2", "k3", "k4"}

// Keys k3 and k4 fail the compatibility condition; k4 also fails activation.
func propertyPass(key string) bool { return key != "k3" && key != "k4" }

type modelEntry struct {
	lazy      bool
	condition bool
	// reached is set once a full pass over the lazy store is guaranteed to
	// have examined the entry.
	reached bool
	// uncertain is set when a short-circuiting query may or may not have
	// examined the entry.
	uncertain bool
}

func (m modelEntry) usable(key string) bool {
	if !m.lazy {
		return true
	}
	if m.condition && !propertyPass(key) {
		return false
	}
	return key != "k4"
}

type registryMachine struct {
	reg         *Registry[string, string]
	model       map[string]*modelEntry
	activations map[string]int
}

func newRegistryMachine() *registryMachine {
	m := &registryMachine{
		model:       make(map[string]*modelEntry),
		activations: make(map[string]int),
	}
	m.reg = New[string, string](func(_ context.Context, key string) (string, error) {
		m.activations[key]++
		if key == "k4" {
			return "", errors.New("activation failed")
		}
		return "v-" + key, nil
	}, WithCondition(func(_ context.Context, key string) (bool, error) {
		return propertyPass(key), nil
	}))
	return m
}

func (m *registryMachine) add(t *rapid.T) {
	key := rapid.SampledFrom(propertyKeys).Draw(t, "key")
	lazy := rapid.Bool().Draw(t, "lazy")
	cond := rapid.Bool().Draw(t, "condition")

	prev := m.activations[key]
	m.activations[key] = 0
	err := m.reg.Add(context.Background(), key, lazy, cond)

	if !lazy && key == "k4" {
		if err == nil {
			t.Fatalf("eager add of %s should fail", key)
		}
		m.activations[key] = prev
		return
	}
	if err != nil {
		t.Fatalf("add %s: %v", key, err)
	}
	m.model[key] = &modelEntry{lazy: lazy, condition: cond}
}

func (m *registryMachine) remove(t *rapid.T) {
	key := rapid.SampledFrom(propertyKeys).Draw(t, "key")
	got := m.reg.Remove(key)

	e, registered := m.model[key]
	switch {
	case !registered:
		if got {
			t.Fatalf("remove of unregistered %s returned true", key)
		}
	case e.usable(key) || (!e.reached && !e.uncertain):
		if !got {
			t.Fatalf("remove of registered %s returned false", key)
		}
	case e.reached:
		if got {
			t.Fatalf("remove of discarded %s returned true", key)
		}
	}
	delete(m.model, key)
}

func (m *registryMachine) find(t *rapid.T) {
	key := rapid.SampledFrom(propertyKeys).Draw(t, "key")
	_, ok, err := Apply(context.Background(), m.reg, matching("v-"+key))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	e, registered := m.model[key]
	want := registered && e.usable(key)
	if ok != want {
		t.Fatalf("find %s = %v, want %v", key, ok, want)
	}

	// A miss walks every store; a hit may stop before some lazy entries.
	for k, other := range m.model {
		switch {
		case !ok:
			other.reached = true
		case other.lazy && !other.usable(k) && !other.reached:
			other.uncertain = true
		}
	}
}

func (m *registryMachine) scan(t *rapid.T) {
	_, ok, err := Apply(context.Background(), m.reg, matching("nothing"))
	if err != nil || ok {
		t.Fatalf("scan = %v, %v", ok, err)
	}
	for _, e := range m.model {
		e.reached = true
	}
}

func (m *registryMachine) clear(_ *rapid.T) {
	m.reg.Clear()
	clear(m.model)
}

func (m *registryMachine) check(t *rapid.T) {
	s := m.reg.Stats()
	if s.InFlight != 0 || s.Promoted != 0 {
		t.Fatalf("idle registry has in-flight state: %+v", s)
	}
	for _, key := range propertyKeys {
		if m.activations[key] > 1 {
			t.Fatalf("%s activated %d times in one registration", key, m.activations[key])
		}
		if m.reg.IsActive(key) && m.reg.IsLazy(key) {
			t.Fatalf("%s is both active and lazy while idle", key)
		}
		e, registered := m.model[key]
		if !registered {
			if m.reg.IsActive(key) || m.reg.IsLazy(key) {
				t.Fatalf("%s is reachable after removal", key)
			}
			continue
		}
		if !e.lazy && !m.reg.IsActive(key) {
			t.Fatalf("eager %s is not active", key)
		}
		if e.reached && !e.usable(key) && (m.reg.IsActive(key) || m.reg.IsLazy(key)) {
			t.Fatalf("discarded %s is still registered", key)
		}
	}
}

func TestRegistryStateMachine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := newRegistryMachine()
		t.Repeat(map[string]func(*rapid.T){
			"add":    m.add,
			"remove": m.remove,
			"find":   m.find,
			"scan":   m.scan,
			"clear":  m.clear,
			"":       m.check,
		})
	})
}
