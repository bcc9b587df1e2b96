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
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/catalog"
	"github.com/nsplugins/nsplugins/pkg/errors"
	"github.com/nsplugins/nsplugins/pkg/handler"
	"github.com/nsplugins/nsplugins/pkg/plugin"
	"github.com/nsplugins/nsplugins/pkg/registry"
	"github.com/nsplugins/nsplugins/pkg/version"
)

// RegistryName labels the plugin registry in logs and metrics.
const RegistryName = "namespace-plugins"

// Plugins resolves namespace handlers and schemas across installed
// bundles. Bundles are activated into plugins on first use unless they are
// added eagerly.
type Plugins struct {
	reg         *registry.Registry[*bundle.Bundle, *plugin.Plugin]
	definitions *Definitions
	executor    Executor
	preResolved func(systemID string) bool
	logger      *slog.Logger
}

type pluginsOptions struct {
	executor    Executor
	preResolved func(string) bool
	host        version.Version
	activator   registry.Activator[*bundle.Bundle, *plugin.Plugin]
	catalog     *catalog.Catalog
	logger      *slog.Logger
}

// Option configures Plugins.
type Option func(*pluginsOptions)

// WithExecutor runs every resolve call through e.
func WithExecutor(e Executor) Option {
	return func(o *pluginsOptions) {
		if e != nil {
			o.executor = e
		}
	}
}

// WithPreResolved sets the predicate flagging system ids that are already
// resolved by the caller. Entity lookups for such ids never fall back to the
// public id.
func WithPreResolved(fn func(systemID string) bool) Option {
	return func(o *pluginsOptions) {
		o.preResolved = fn
	}
}

// WithHostVersion sets the handler API version bundles are checked against.
func WithHostVersion(v version.Version) Option {
	return func(o *pluginsOptions) {
		o.host = v
	}
}

// WithActivator replaces plugin.Activate.
func WithActivator(a registry.Activator[*bundle.Bundle, *plugin.Plugin]) Option {
	return func(o *pluginsOptions) {
		if a != nil {
			o.activator = a
		}
	}
}

// WithCatalog shares c instead of a private catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *pluginsOptions) {
		o.catalog = c
	}
}

// WithLogger sets the logger of the plugin set and its registry.
func WithLogger(l *slog.Logger) Option {
	return func(o *pluginsOptions) {
		o.logger = l
	}
}

// IsSchemaLocation is the default pre-resolved predicate. An .xsd system id
// names the exact schema wanted, so a namespace-wide public id match must
// not stand in for it.
func IsSchemaLocation(systemID string) bool {
	return strings.HasSuffix(strings.ToLower(systemID), ".xsd")
}

// NewPlugins creates an empty resolver.
func NewPlugins(opts ...Option) *Plugins {
	o := pluginsOptions{
		executor:    DirectExecutor{},
		preResolved: IsSchemaLocation,
		host:        plugin.APIVersion,
		activator:   plugin.Activate,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.preResolved == nil {
		o.preResolved = func(string) bool { return false }
	}

	regOpts := []registry.Option[*bundle.Bundle]{
		registry.WithName[*bundle.Bundle](RegistryName),
		registry.WithCondition(plugin.Compatibility(o.host)),
	}
	if o.logger != nil {
		regOpts = append(regOpts, registry.WithLogger[*bundle.Bundle](o.logger))
	}

	return &Plugins{
		reg:         registry.New(o.activator, regOpts...),
		definitions: NewDefinitions(o.catalog),
		executor:    o.executor,
		preResolved: o.preResolved,
		logger:      o.logger,
	}
}

func (p *Plugins) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

// Definitions returns the namespace definitions of the added bundles.
func (p *Plugins) Definitions() *Definitions {
	return p.definitions
}

// Catalog returns the XML catalog of the added bundles.
func (p *Plugins) Catalog() *catalog.Catalog {
	return p.definitions.Catalog()
}

// AddPlugin registers b. Its namespace definitions are published right
// away; its handlers are created now, or on first use when lazy is set.
// applyCondition requires the compatibility check before lazy activation.
func (p *Plugins) AddPlugin(ctx context.Context, b *bundle.Bundle, lazy, applyCondition bool) error {
	if _, err := p.definitions.AddBundle(b); err != nil {
		p.log().Warn("failed to read namespace definitions", "bundle", b.String(), "error", err)
	}

	if err := p.reg.Add(ctx, b, lazy, applyCondition); err != nil {
		p.definitions.RemoveBundle(b)
		return err
	}

	p.log().Info("namespace plugin added", "bundle", b.String(), "lazy", lazy, "applyCondition", applyCondition)
	return nil
}

// RemovePlugin unregisters b and reports whether it was registered.
func (p *Plugins) RemovePlugin(b *bundle.Bundle) bool {
	p.definitions.RemoveBundle(b)
	removed := p.reg.Remove(b)
	if removed {
		p.log().Info("namespace plugin removed", "bundle", b.String())
	}
	return removed
}

// Clear unregisters every bundle.
func (p *Plugins) Clear() {
	p.reg.Clear()
	p.definitions.Clear()
}

// ResolveHandler returns the handler of the first plugin that declares
// namespaceURI.
func (p *Plugins) ResolveHandler(ctx context.Context, namespaceURI string) (handler.Handler, error) {
	if namespaceURI == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "namespace URI is required")
	}

	var h handler.Handler
	err := p.executor.Execute(ctx, func(ctx context.Context) error {
		found, ok, err := registry.Apply(ctx, p.reg,
			func(_ context.Context, pl *plugin.Plugin) (handler.Handler, bool, error) {
				hd, ok := pl.ResolveHandler(namespaceURI)
				return hd, ok, nil
			})
		if err != nil {
			return err
		}
		if !ok {
			return errors.NewWithContext(errors.ErrCodeNotFound, "no handler for namespace",
				map[string]any{"namespace": namespaceURI})
		}
		h = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ResolveEntity returns the schema for a public/system id pair. Each plugin
// is asked by system id first; its public id mapping is consulted only when
// the system id is not one the caller resolves itself.
func (p *Plugins) ResolveEntity(ctx context.Context, publicID, systemID string) (*plugin.InputSource, error) {
	if publicID == "" && systemID == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "public or system id is required")
	}
	skipPublic := systemID != "" && p.preResolved(systemID)

	var src *plugin.InputSource
	err := p.executor.Execute(ctx, func(ctx context.Context) error {
		found, ok, err := registry.Apply(ctx, p.reg,
			func(_ context.Context, pl *plugin.Plugin) (*plugin.InputSource, bool, error) {
				s, ok, err := pl.ResolveSystemID(publicID, systemID)
				if ok || err != nil || skipPublic {
					return s, ok, err
				}
				return pl.ResolvePublicID(publicID, systemID)
			})
		if err != nil {
			return err
		}
		if !ok {
			return errors.NewWithContext(errors.ErrCodeNotFound, "no schema for entity",
				map[string]any{"publicId": publicID, "systemId": systemID})
		}
		src = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return src, nil
}

// BundleState is the registration state of a bundle.
type BundleState struct {
	ID           int64  `json:"id" yaml:"id"`
	SymbolicName string `json:"symbolicName" yaml:"symbolicName"`
	Version      string `json:"version" yaml:"version"`
	Location     string `json:"location" yaml:"location"`
	Active       bool   `json:"active" yaml:"active"`
}

// Bundles returns the registered bundles ordered by id.
func (p *Plugins) Bundles() []BundleState {
	keys := p.reg.Keys()
	out := make([]BundleState, 0, len(keys))
	for _, b := range keys {
		out = append(out, BundleState{
			ID:           b.ID,
			SymbolicName: b.SymbolicName,
			Version:      b.Version.String(),
			Location:     b.Location,
			Active:       p.reg.IsActive(b),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stats returns the registry statistics.
func (p *Plugins) Stats() registry.Stats {
	return p.reg.Stats()
}
