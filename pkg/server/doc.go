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

// Package server provides the HTTP server that exposes the namespace plugin
// registry.
//
// The server is a thin shell around a route map: callers supply handlers
// and the server adds system endpoints, middleware and lifecycle handling.
//
// # Architecture
//
//   - Rate limiting with a token bucket (golang.org/x/time/rate)
//   - Request ID tracking via the X-Request-Id header
//   - Panic recovery
//   - Prometheus metrics on /metrics
//   - Graceful shutdown on SIGINT/SIGTERM
//   - systemd readiness notification when NOTIFY_SOCKET is set
//
// # Usage
//
//	s := server.New(
//	    server.WithName("nspluginsd"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/v1/namespaces": plugins.HandleNamespaces,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// # System Endpoints
//
// GET /health - liveness, always 200 with {"status": "healthy"}
//
// GET /ready - readiness, 200 while serving and 503 otherwise
//
// GET /metrics - Prometheus metrics
//
// GET / - server name, version and the registered routes
//
// # Observability
//
// Every API request carries an X-Request-Id (generated when missing or not
// a UUID) which is echoed in the response and in error bodies. Responses
// report rate limit state in X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; rejected requests get 429 with Retry-After.
//
// The API version is negotiated from an Accept header of the form
// application/vnd.nsplugins.v1+json and returned in X-API-Version.
//
// # Error Handling
//
// Errors share one JSON shape:
//
//	{
//	  "code": "NOT_FOUND",
//	  "message": "no handler for namespace",
//	  "details": {"uri": "http://example.org/schema/tx"},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2025-12-22T12:00:00Z",
//	  "retryable": false
//	}
//
// WriteErrorFromErr derives the status and retryability from the code of a
// pkg/errors StructuredError.
//
// # Configuration
//
// Environment variables:
//   - PORT: listen port (default 8080)
//   - SHUTDOWN_TIMEOUT_SECONDS: graceful shutdown budget (default 30)
package server
