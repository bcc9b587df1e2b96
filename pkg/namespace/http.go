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
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/nsplugins/nsplugins/pkg/defaults"
	"github.com/nsplugins/nsplugins/pkg/errors"
	"github.com/nsplugins/nsplugins/pkg/serializer"
	"github.com/nsplugins/nsplugins/pkg/server"
)

// Handlers serves a Plugins instance over HTTP.
type Handlers struct {
	plugins *Plugins
	version string
}

// NewHandlers creates HTTP handlers for p. toolVersion stamps the emitted
// documents.
func NewHandlers(p *Plugins, toolVersion string) *Handlers {
	return &Handlers{plugins: p, version: toolVersion}
}

// Routes returns the API routes for server.WithHandler.
func (h *Handlers) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/namespaces":      h.HandleNamespaces,
		"/v1/bundles":         h.HandleBundles,
		"/v1/catalog":         h.HandleCatalog,
		"/v1/resolve/handler": h.HandleResolveHandler,
		"/v1/resolve/entity":  h.HandleResolveEntity,
	}
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
		"Method not allowed", false, map[string]any{
			"method":  r.Method,
			"allowed": []string{http.MethodGet},
		})
	return false
}

// HandleNamespaces handles GET /v1/namespaces.
func (h *Handlers) HandleNamespaces(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	serializer.RespondJSON(w, http.StatusOK, NewNamespaceList(h.plugins.Definitions().List(), h.version))
}

// HandleBundles handles GET /v1/bundles.
func (h *Handlers) HandleBundles(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	serializer.RespondJSON(w, http.StatusOK, NewBundleList(h.plugins, h.version))
}

// HandleCatalog handles GET /v1/catalog.
func (h *Handlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	serializer.RespondJSON(w, http.StatusOK, NewCatalogDocument(h.plugins.Catalog(), h.version))
}

// HandleResolveHandler handles GET /v1/resolve/handler?uri=.
func (h *Handlers) HandleResolveHandler(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.ResolveHandlerTimeout)
	defer cancel()

	uri := r.URL.Query().Get("uri")
	hd, err := h.plugins.ResolveHandler(ctx, uri)
	if err != nil {
		server.WriteErrorFromErr(w, r, timeoutError(err), "Failed to resolve handler", map[string]any{"uri": uri})
		return
	}

	serializer.RespondJSON(w, http.StatusOK, NewHandlerResolution(hd, h.version))
}

// HandleResolveEntity handles GET /v1/resolve/entity?publicId=&systemId=.
// With raw=true the schema itself is returned as application/xml.
func (h *Handlers) HandleResolveEntity(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.ResolveHandlerTimeout)
	defer cancel()

	q := r.URL.Query()
	publicID, systemID := q.Get("publicId"), q.Get("systemId")
	src, err := h.plugins.ResolveEntity(ctx, publicID, systemID)
	if err != nil {
		server.WriteErrorFromErr(w, r, timeoutError(err), "Failed to resolve entity", map[string]any{
			"publicId": publicID,
			"systemId": systemID,
		})
		return
	}

	if q.Get("raw") == "true" {
		writeSchema(w, r, src.Open)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, NewEntityResolution(src, h.version))
}

func writeSchema(w http.ResponseWriter, r *http.Request, open func() (io.ReadCloser, error)) {
	rc, err := open()
	if err != nil {
		server.WriteErrorFromErr(w, r, errors.Wrap(errors.ErrCodeInternal, "failed to open schema", err),
			"Failed to open schema", nil)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("schema write failed", "error", err)
	}
}

func timeoutError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, "resolve timed out", err)
	}
	return err
}
