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

package catalog

import (
	"sort"
	"sync"

	"github.com/nsplugins/nsplugins/pkg/bundle"
)

// EntryType distinguishes catalog entries.
type EntryType string

const (
	// System entries map a schema location (system id) to a URI.
	System EntryType = "system"
	// Public entries map a namespace URI (public id) to the URI of its
	// default schema.
	Public EntryType = "public"
)

// Entry is a single catalog mapping contributed by a bundle.
type Entry struct {
	Type   EntryType      `json:"type" yaml:"type"`
	Key    string         `json:"key" yaml:"key"`
	URI    string         `json:"uri" yaml:"uri"`
	Bundle *bundle.Bundle `json:"-" yaml:"-"`
}

type indexKey struct {
	typ EntryType
	key string
}

// Catalog is an XML catalog built from bundle contributions. When several
// bundles map the same key, the most recently added one wins until it is
// removed.
type Catalog struct {
	mu       sync.RWMutex
	byBundle map[*bundle.Bundle][]Entry
	index    map[indexKey][]Entry
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{
		byBundle: make(map[*bundle.Bundle][]Entry),
		index:    make(map[indexKey][]Entry),
	}
}

// Add records entries contributed by b.
func (c *Catalog) Add(b *bundle.Bundle, entries ...Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range entries {
		e.Bundle = b
		c.byBundle[b] = append(c.byBundle[b], e)
		k := indexKey{e.Type, e.Key}
		c.index[k] = append(c.index[k], e)
	}
}

// RemoveBundle drops every entry contributed by b and returns how many
// there were.
func (c *Catalog) RemoveBundle(b *bundle.Bundle) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.byBundle[b]
	delete(c.byBundle, b)

	for _, e := range entries {
		k := indexKey{e.Type, e.Key}
		kept := c.index[k][:0]
		for _, other := range c.index[k] {
			if other.Bundle != b {
				kept = append(kept, other)
			}
		}
		if len(kept) == 0 {
			delete(c.index, k)
		} else {
			c.index[k] = kept
		}
	}
	return len(entries)
}

// Resolve returns the URI mapped for key in entries of type t.
func (c *Catalog) Resolve(t EntryType, key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := c.index[indexKey{t, key}]
	if len(list) == 0 {
		return Entry{}, false
	}
	return list[len(list)-1], true
}

// ResolveSystem resolves a system id.
func (c *Catalog) ResolveSystem(systemID string) (string, bool) {
	e, ok := c.Resolve(System, systemID)
	return e.URI, ok
}

// ResolvePublic resolves a public id.
func (c *Catalog) ResolvePublic(publicID string) (string, bool) {
	e, ok := c.Resolve(Public, publicID)
	return e.URI, ok
}

// Entries returns the effective entries, sorted by type and key.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.index))
	for _, list := range c.index {
		out = append(out, list[len(list)-1])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Len returns the number of effective entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index)
}

// Clear removes all entries.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byBundle = make(map[*bundle.Bundle][]Entry)
	c.index = make(map[indexKey][]Entry)
}
