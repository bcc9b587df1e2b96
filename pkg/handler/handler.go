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
	"fmt"
	"sort"
	"sync"
)

// Handler interprets elements of one XML namespace.
type Handler interface {
	// NamespaceURI returns the namespace the handler was created for.
	NamespaceURI() string
	// Name returns the factory name the handler was created from.
	Name() string
	// Parse interprets a single element written in the handler's namespace.
	Parse(ctx context.Context, element string) (any, error)
}

// Factory creates a Handler for a namespace URI.
// Used for dynamic handler registration via init() functions.
type Factory func(namespaceURI string) (Handler, error)

// Global registry for handler factories.
// Handler implementations register themselves via init() functions.
var (
	globalFactories = make(map[string]Factory)
	globalMu        sync.RWMutex
)

// Register registers a handler factory under name.
// Returns an error if a factory with the same name is already registered.
func Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("handler name and factory are required")
	}

	globalMu.Lock()
	defer globalMu.Unlock()

	if _, exists := globalFactories[name]; exists {
		return fmt.Errorf("handler %s already registered", name)
	}

	globalFactories[name] = factory
	return nil
}

// MustRegister is a convenience function that panics on registration error.
// Use this in init() functions where registration must succeed.
func MustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// New instantiates the handler registered under name for namespaceURI.
func New(name, namespaceURI string) (Handler, error) {
	globalMu.RLock()
	factory, ok := globalFactories[name]
	globalMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandler, name)
	}

	h, err := factory(namespaceURI)
	if err != nil {
		return nil, fmt.Errorf("failed to create handler %s for %s: %w", name, namespaceURI, err)
	}
	return h, nil
}

// Names returns all registered handler names, sorted.
func Names() []string {
	globalMu.RLock()
	defer globalMu.RUnlock()

	names := make([]string, 0, len(globalFactories))
	for n := range globalFactories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
