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

package extender

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/plugin"
)

var bundleEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nsplugins_bundle_events_total",
		Help: "Total number of bundle lifecycle events handled",
	},
	[]string{"type", "result"},
)

// Target receives the plugins of installed bundles.
type Target interface {
	AddPlugin(ctx context.Context, b *bundle.Bundle, lazy, applyCondition bool) error
	RemovePlugin(b *bundle.Bundle) bool
}

// Extender tracks which bundles were handed to the target.
type Extender struct {
	target Target

	mu      sync.Mutex
	tracked map[*bundle.Bundle]struct{}
}

// New creates an extender feeding target.
func New(target Target) *Extender {
	return &Extender{
		target:  target,
		tracked: make(map[*bundle.Bundle]struct{}),
	}
}

// IsNamespaceBundle reports whether b publishes handler or schema mappings.
func IsNamespaceBundle(b *bundle.Bundle) bool {
	return b.HasEntry(plugin.HandlersPath) || b.HasEntry(plugin.SchemasPath)
}

// Start adds the bundles that were installed before watching began.
func (e *Extender) Start(ctx context.Context, bundles []*bundle.Bundle) {
	for _, b := range bundles {
		e.Handle(ctx, bundle.Event{Type: bundle.Installed, Bundle: b})
	}
}

// Run handles events until the channel is closed or ctx is done.
func (e *Extender) Run(ctx context.Context, events <-chan bundle.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			e.Handle(ctx, ev)
		}
	}
}

// Handle applies a single lifecycle event.
func (e *Extender) Handle(ctx context.Context, ev bundle.Event) {
	switch ev.Type {
	case bundle.Installed:
		e.install(ctx, ev.Bundle)
	case bundle.Uninstalled:
		e.uninstall(ev.Bundle)
	default:
		slog.Warn("ignoring unknown bundle event", "type", ev.Type)
	}
}

func (e *Extender) install(ctx context.Context, b *bundle.Bundle) {
	if !IsNamespaceBundle(b) {
		slog.Debug("bundle publishes no namespaces", "bundle", b.String())
		bundleEventsTotal.WithLabelValues(string(bundle.Installed), "ignored").Inc()
		return
	}

	lazy := b.IsLazy()
	applyCondition := plugin.RequiresCompatibilityCheck(b)
	if err := e.target.AddPlugin(ctx, b, lazy, applyCondition); err != nil {
		slog.Error("failed to add namespace plugin", "bundle", b.String(), "error", err)
		bundleEventsTotal.WithLabelValues(string(bundle.Installed), "error").Inc()
		return
	}

	e.mu.Lock()
	e.tracked[b] = struct{}{}
	e.mu.Unlock()
	bundleEventsTotal.WithLabelValues(string(bundle.Installed), "added").Inc()
}

func (e *Extender) uninstall(b *bundle.Bundle) {
	e.mu.Lock()
	_, ok := e.tracked[b]
	delete(e.tracked, b)
	e.mu.Unlock()

	if ok {
		e.target.RemovePlugin(b)
		bundleEventsTotal.WithLabelValues(string(bundle.Uninstalled), "removed").Inc()
	} else {
		bundleEventsTotal.WithLabelValues(string(bundle.Uninstalled), "ignored").Inc()
	}

	if err := b.Close(); err != nil {
		slog.Warn("failed to close bundle", "bundle", b.String(), "error", err)
	}
}

// Tracked returns the number of bundles handed to the target.
func (e *Extender) Tracked() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tracked)
}

// Stop removes and closes every tracked bundle.
func (e *Extender) Stop() {
	e.mu.Lock()
	bundles := make([]*bundle.Bundle, 0, len(e.tracked))
	for b := range e.tracked {
		bundles = append(bundles, b)
	}
	e.mu.Unlock()

	for _, b := range bundles {
		e.uninstall(b)
	}
}
