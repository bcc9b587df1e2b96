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

package plugin

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/errors"
	"github.com/nsplugins/nsplugins/pkg/handler"
	"github.com/nsplugins/nsplugins/pkg/schema"
)

// Bundle entries read during activation.
const (
	HandlersPath = "META-INF/spring.handlers"
	SchemasPath  = "META-INF/spring.schemas"
	ToolingPath  = "META-INF/spring.tooling"
)

// InputSource locates a schema inside a bundle.
type InputSource struct {
	PublicID string `json:"publicId,omitempty" yaml:"publicId,omitempty"`
	SystemID string `json:"systemId,omitempty" yaml:"systemId,omitempty"`
	// Path is the schema location inside the bundle.
	Path   string         `json:"path" yaml:"path"`
	Bundle *bundle.Bundle `json:"-" yaml:"-"`
}

// URI returns the catalog URI of the schema.
func (s *InputSource) URI() string {
	return URI(s.Bundle, s.Path)
}

// Open opens the schema for reading.
func (s *InputSource) Open() (io.ReadCloser, error) {
	return s.Bundle.FS().Open(s.Path)
}

// URI builds the catalog URI of an entry of b.
func URI(b *bundle.Bundle, path string) string {
	return "bundle://" + b.SymbolicName + "/" + strings.TrimPrefix(path, "/")
}

// Plugin is an activated bundle: the namespace handlers it declares and
// the schemas it publishes.
type Plugin struct {
	bundle *bundle.Bundle

	handlers map[string]handler.Handler
	// schemas maps system ids to bundle paths.
	schemas map[string]string
	// publicIDs maps namespace URIs to the bundle path of their default schema.
	publicIDs map[string]string
}

// Activate builds the plugin for b. Every handler named in
// META-INF/spring.handlers is instantiated; an unknown handler fails the
// activation. Schemas whose target namespace cannot be read are skipped.
func Activate(ctx context.Context, b *bundle.Bundle) (*Plugin, error) {
	p := &Plugin{
		bundle:    b,
		handlers:  make(map[string]handler.Handler),
		schemas:   make(map[string]string),
		publicIDs: make(map[string]string),
	}

	if err := p.loadHandlers(ctx); err != nil {
		return nil, err
	}
	if err := p.loadSchemas(ctx); err != nil {
		return nil, err
	}

	slog.Debug("plugin activated",
		"bundle", b.String(), "handlers", len(p.handlers), "schemas", len(p.schemas))
	return p, nil
}

func (p *Plugin) loadHandlers(ctx context.Context) error {
	props, err := p.bundle.ReadProperties(HandlersPath)
	if bundle.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeActivationFailed, "failed to read handler mappings", err)
	}

	for _, uri := range props.Keys() {
		if err := ctx.Err(); err != nil {
			return err
		}
		name, _ := props.Get(uri)
		h, err := handler.New(strings.TrimSpace(name), uri)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeActivationFailed, "failed to create namespace handler", err,
				map[string]any{"bundle": p.bundle.String(), "namespace": uri, "handler": name})
		}
		p.handlers[uri] = h
	}
	return nil
}

func (p *Plugin) loadSchemas(ctx context.Context) error {
	props, err := p.bundle.ReadProperties(SchemasPath)
	if bundle.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeActivationFailed, "failed to read schema mappings", err)
	}

	uris := make(map[string][]string)
	namespaces := make(map[string]string)
	for _, systemID := range props.Keys() {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, _ := props.Get(systemID)
		path = strings.TrimPrefix(strings.TrimSpace(path), "/")
		p.schemas[systemID] = path

		ns, seen := namespaces[path]
		if !seen {
			ns, err = ReadTargetNamespace(p.bundle, path)
			if err != nil {
				slog.Warn("skipping schema", "bundle", p.bundle.String(), "path", path, "error", err)
			}
			namespaces[path] = ns
		}
		if ns != "" && !contains(uris[ns], path) {
			uris[ns] = append(uris[ns], path)
		}
	}

	for ns, paths := range uris {
		p.publicIDs[ns] = schema.DefaultURI(paths)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ReadTargetNamespace reads the target namespace of the schema at path in b.
func ReadTargetNamespace(b *bundle.Bundle, path string) (string, error) {
	f, err := b.FS().Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return schema.TargetNamespace(f)
}

// Bundle returns the bundle the plugin was activated from.
func (p *Plugin) Bundle() *bundle.Bundle {
	return p.bundle
}

// NamespaceURIs returns the namespaces the plugin has handlers for, sorted.
func (p *Plugin) NamespaceURIs() []string {
	uris := make([]string, 0, len(p.handlers))
	for u := range p.handlers {
		uris = append(uris, u)
	}
	sort.Strings(uris)
	return uris
}

// ResolveHandler returns the handler declared for namespaceURI.
func (p *Plugin) ResolveHandler(namespaceURI string) (handler.Handler, bool) {
	h, ok := p.handlers[namespaceURI]
	return h, ok
}

// ResolveEntity maps a public/system id pair to a schema of the bundle.
// The system id is tried first, then an https system id is retried as
// http, then the public id is looked up as a namespace URI. found is false
// when the bundle publishes no matching schema. An error is returned when a
// mapping points at a file the bundle does not contain.
func (p *Plugin) ResolveEntity(publicID, systemID string) (*InputSource, bool, error) {
	if src, ok, err := p.ResolveSystemID(publicID, systemID); ok || err != nil {
		return src, ok, err
	}
	return p.ResolvePublicID(publicID, systemID)
}

// ResolveSystemID resolves only through the system id mappings.
func (p *Plugin) ResolveSystemID(publicID, systemID string) (*InputSource, bool, error) {
	if systemID == "" {
		return nil, false, nil
	}
	path, ok := p.schemas[systemID]
	if !ok && strings.HasPrefix(systemID, "https:") {
		path, ok = p.schemas["http:"+strings.TrimPrefix(systemID, "https:")]
	}
	if !ok {
		return nil, false, nil
	}
	return p.source(publicID, systemID, path)
}

// ResolvePublicID resolves only through the namespace URI mappings.
func (p *Plugin) ResolvePublicID(publicID, systemID string) (*InputSource, bool, error) {
	if publicID == "" {
		return nil, false, nil
	}
	path, ok := p.publicIDs[publicID]
	if !ok {
		return nil, false, nil
	}
	return p.source(publicID, systemID, path)
}

func (p *Plugin) source(publicID, systemID, path string) (*InputSource, bool, error) {
	if _, err := fs.Stat(p.bundle.FS(), path); err != nil {
		return nil, false, errors.WrapWithContext(errors.ErrCodeNotFound, "schema mapping points at a missing entry", err,
			map[string]any{"bundle": p.bundle.String(), "path": path})
	}
	return &InputSource{
		PublicID: publicID,
		SystemID: systemID,
		Path:     path,
		Bundle:   p.bundle,
	}, true, nil
}
