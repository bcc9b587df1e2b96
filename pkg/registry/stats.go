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

import "sync"

// Stats is a point-in-time view of a Registry. Under concurrent use the
// counts are approximate.
type Stats struct {
	Active   int `json:"active" yaml:"active"`
	Lazy     int `json:"lazy" yaml:"lazy"`
	Promoted int `json:"promoted" yaml:"promoted"`
	InFlight int `json:"inFlight" yaml:"inFlight"`
}

// Stats returns the current store sizes. A key promoted during the current
// wave of Apply calls is counted as both active and lazy until the wave ends.
func (r *Registry[K, V]) Stats() Stats {
	s := Stats{
		Active: count[K, V](&r.active),
		Lazy:   count[K, V](&r.lazy),
	}
	r.mu.Lock()
	s.Promoted = len(r.promoted)
	s.InFlight = r.calls
	r.mu.Unlock()
	return s
}

func count[K comparable, V any](m *sync.Map) int {
	n := 0
	m.Range(func(_, v any) bool {
		if !v.(*entry[K, V]).removed.Load() {
			n++
		}
		return true
	})
	return n
}

// IsActive reports whether key has an activated provider.
func (r *Registry[K, V]) IsActive(key K) bool {
	return live[K, V](&r.active, key)
}

// IsLazy reports whether key is waiting in the lazy store.
func (r *Registry[K, V]) IsLazy(key K) bool {
	return live[K, V](&r.lazy, key)
}

func live[K comparable, V any](m *sync.Map, key K) bool {
	v, ok := m.Load(key)
	return ok && !v.(*entry[K, V]).removed.Load()
}

// Keys returns every registered key once, in unspecified order.
func (r *Registry[K, V]) Keys() []K {
	seen := make(map[K]struct{})
	keys := make([]K, 0)
	collect := func(k, v any) bool {
		if v.(*entry[K, V]).removed.Load() {
			return true
		}
		key := k.(K)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		return true
	}
	r.active.Range(collect)
	r.lazy.Range(collect)
	return keys
}

// Count returns the number of registered keys.
func (r *Registry[K, V]) Count() int {
	return len(r.Keys())
}

// IsEmpty returns true if no keys are registered.
func (r *Registry[K, V]) IsEmpty() bool {
	return r.Count() == 0
}
