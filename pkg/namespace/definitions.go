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

package namespace

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/magiconair/properties"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/catalog"
	"github.com/nsplugins/nsplugins/pkg/plugin"
)

// Listener is notified when namespace definitions come and go.
type Listener interface {
	OnRegistered(d Definition)
	OnUnregistered(d Definition)
}

// ListenerFuncs adapts functions to a Listener. Register it by pointer so
// it can be removed again.
type ListenerFuncs struct {
	Registered   func(d Definition)
	Unregistered func(d Definition)
}

// OnRegistered implements Listener.
func (l *ListenerFuncs) OnRegistered(d Definition) {
	if l.Registered != nil {
		l.Registered(d)
	}
}

// OnUnregistered implements Listener.
func (l *ListenerFuncs) OnUnregistered(d Definition) {
	if l.Unregistered != nil {
		l.Unregistered(d)
	}
}

// contribution is a schema mapping a bundle added to a definition.
type contribution struct {
	def      *Definition
	location string
	uri      string
}

// Definitions tracks the namespace definitions of installed bundles and
// keeps the XML catalog in step with them.
type Definitions struct {
	mu        sync.RWMutex
	byURI     map[string]*Definition
	byBundle  map[*bundle.Bundle][]contribution
	listeners []Listener
	catalog   *catalog.Catalog
}

// NewDefinitions creates an empty set of definitions feeding c.
// A nil catalog gets a private one.
func NewDefinitions(c *catalog.Catalog) *Definitions {
	if c == nil {
		c = catalog.New()
	}
	return &Definitions{
		byURI:    make(map[string]*Definition),
		byBundle: make(map[*bundle.Bundle][]contribution),
		catalog:  c,
	}
}

// Catalog returns the catalog the definitions feed.
func (d *Definitions) Catalog() *catalog.Catalog {
	return d.catalog
}

// AddListener registers l.
func (d *Definitions) AddListener(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// RemoveListener unregisters l.
func (d *Definitions) RemoveListener(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.listeners {
		if existing == l {
			d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
			return
		}
	}
}

// AddBundle reads the schema and tooling mappings of b and registers the
// namespaces it publishes. Schemas from several bundles for the same
// namespace are merged into one definition owned by the first bundle.
// It returns the definitions b created.
func (d *Definitions) AddBundle(b *bundle.Bundle) ([]Definition, error) {
	schemas, err := b.ReadProperties(plugin.SchemasPath)
	if bundle.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tooling, err := b.ReadProperties(plugin.ToolingPath)
	if err != nil && !bundle.IsNotExist(err) {
		slog.Warn("ignoring unreadable tooling mappings", "bundle", b.String(), "error", err)
	}
	if tooling == nil {
		tooling = properties.NewProperties()
	}

	var (
		systemEntries []catalog.Entry
		contributions []contribution
		created       []*Definition
		namespaces    = make(map[string]string)
	)

	d.mu.Lock()
	if _, dup := d.byBundle[b]; dup {
		d.mu.Unlock()
		return nil, fmt.Errorf("bundle %s already added", b)
	}

	for _, location := range schemas.Keys() {
		path, _ := schemas.Get(location)
		path = strings.TrimPrefix(strings.TrimSpace(path), "/")
		systemEntries = append(systemEntries, catalog.Entry{
			Type: catalog.System, Key: location, URI: plugin.URI(b, path),
		})

		ns, seen := namespaces[path]
		if !seen {
			ns, err = plugin.ReadTargetNamespace(b, path)
			if err != nil {
				slog.Warn("skipping schema without readable target namespace",
					"bundle", b.String(), "path", path, "error", err)
			}
			namespaces[path] = ns
		}
		if ns == "" {
			continue
		}

		def, exists := d.byURI[ns]
		if !exists {
			def = &Definition{
				NamespaceURI: ns,
				Name:         tooling.GetString(ns+"@name", ""),
				Prefix:       tooling.GetString(ns+"@prefix", ""),
				IconPath:     tooling.GetString(ns+"@icon", ""),
				Bundle:       b,
			}
			d.byURI[ns] = def
			created = append(created, def)
		}
		def.SchemaLocations = appendUnique(def.SchemaLocations, location)
		def.URIs = appendUnique(def.URIs, path)
		contributions = append(contributions, contribution{def: def, location: location, uri: path})
	}
	d.byBundle[b] = contributions

	publicEntries := make([]catalog.Entry, 0, len(created))
	snapshot := make([]Definition, 0, len(created))
	for _, def := range created {
		publicEntries = append(publicEntries, catalog.Entry{
			Type: catalog.Public, Key: def.NamespaceURI, URI: plugin.URI(b, def.DefaultURI()),
		})
		snapshot = append(snapshot, def.clone())
	}
	listeners := append([]Listener(nil), d.listeners...)
	d.mu.Unlock()

	d.catalog.Add(b, append(systemEntries, publicEntries...)...)
	for _, def := range snapshot {
		notify(listeners, def, true)
	}
	return snapshot, nil
}

// RemoveBundle withdraws everything b contributed. A definition is
// unregistered once no bundle contributes to it; otherwise its ownership
// passes to a remaining contributor. It returns the unregistered
// definitions.
func (d *Definitions) RemoveBundle(b *bundle.Bundle) []Definition {
	d.catalog.RemoveBundle(b)

	d.mu.Lock()
	contributions, ok := d.byBundle[b]
	delete(d.byBundle, b)
	if !ok {
		d.mu.Unlock()
		return nil
	}

	touched := make(map[*Definition]struct{})
	for _, c := range contributions {
		if !d.contributedElsewhere(c.def, c.location, func(o contribution) string { return o.location }) {
			c.def.SchemaLocations = removeValue(c.def.SchemaLocations, c.location)
		}
		if !d.contributedElsewhere(c.def, c.uri, func(o contribution) string { return o.uri }) {
			c.def.URIs = removeValue(c.def.URIs, c.uri)
		}
		touched[c.def] = struct{}{}
	}

	var removed []Definition
	for def := range touched {
		if owner := d.contributor(def); owner != nil {
			def.Bundle = owner
			continue
		}
		delete(d.byURI, def.NamespaceURI)
		removed = append(removed, def.clone())
	}
	listeners := append([]Listener(nil), d.listeners...)
	d.mu.Unlock()

	sort.Slice(removed, func(i, j int) bool { return removed[i].NamespaceURI < removed[j].NamespaceURI })
	for _, def := range removed {
		notify(listeners, def, false)
	}
	return removed
}

// contributedElsewhere reports whether a remaining bundle still contributes
// value to def. The caller holds mu.
func (d *Definitions) contributedElsewhere(def *Definition, value string, field func(contribution) string) bool {
	for _, list := range d.byBundle {
		for _, o := range list {
			if o.def == def && field(o) == value {
				return true
			}
		}
	}
	return false
}

// contributor returns a remaining bundle contributing to def, preferring
// the current owner. The caller holds mu.
func (d *Definitions) contributor(def *Definition) *bundle.Bundle {
	var found *bundle.Bundle
	for b, list := range d.byBundle {
		for _, o := range list {
			if o.def != def {
				continue
			}
			if b == def.Bundle {
				return b
			}
			if found == nil || b.ID < found.ID {
				found = b
			}
		}
	}
	return found
}

// Resolve returns the definition of namespaceURI.
func (d *Definitions) Resolve(namespaceURI string) (Definition, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.byURI[namespaceURI]
	if !ok {
		return Definition{}, false
	}
	return def.clone(), true
}

// List returns all definitions sorted by namespace URI.
func (d *Definitions) List() []Definition {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Definition, 0, len(d.byURI))
	for _, def := range d.byURI {
		out = append(out, def.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NamespaceURI < out[j].NamespaceURI })
	return out
}

// Clear unregisters every definition without notifying listeners.
func (d *Definitions) Clear() {
	d.mu.Lock()
	d.byURI = make(map[string]*Definition)
	d.byBundle = make(map[*bundle.Bundle][]contribution)
	d.mu.Unlock()
	d.catalog.Clear()
}

// notify calls every listener, recovering and logging listener panics.
func notify(listeners []Listener, def Definition, registered bool) {
	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("namespace definition listener panicked",
						"namespace", def.NamespaceURI, "panic", r)
				}
			}()
			if registered {
				l.OnRegistered(def)
			} else {
				l.OnUnregistered(def)
			}
		}()
	}
}
