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

package server

import (
	"net/http"
	"time"

	"github.com/nsplugins/nsplugins/pkg/serializer"
)

// Probe statuses.
const (
	statusHealthy  = "healthy"
	statusReady    = "ready"
	statusNotReady = "not_ready"
)

// handleHealth handles GET /health. The process is healthy while it serves.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.probe(w, r, http.StatusOK, statusHealthy, "")
}

// handleReady handles GET /ready. The server is ready between binding its
// listener and the start of shutdown.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		s.probe(w, r, http.StatusServiceUnavailable, statusNotReady, "server is starting or shutting down")
		return
	}
	s.probe(w, r, http.StatusOK, statusReady, "")
}

func (s *Server) probe(w http.ResponseWriter, r *http.Request, code int, status, reason string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	serializer.RespondJSON(w, code, HealthResponse{
		Status:    status,
		Name:      s.config.Name,
		Version:   s.config.Version,
		Uptime:    time.Since(s.started).Truncate(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	})
}
