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

package defaults

import "time"

// Bundle lifecycle timings.
const (
	// BundleLoadTimeout bounds loading a single bundle directory from disk.
	BundleLoadTimeout = 10 * time.Second

	// BundleLoadConcurrency is the number of bundle directories read in parallel.
	BundleLoadConcurrency = 8

	// WatcherDebounce is how long the bundle watcher waits for a directory to
	// settle before reporting it installed.
	WatcherDebounce = 250 * time.Millisecond
)

// Handler timeouts for HTTP request processing.
const (
	// ResolveHandlerTimeout is the timeout for resolve requests. Lazy
	// activation may parse schemas, so this is generous.
	ResolveHandlerTimeout = 15 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Registry timeouts.
const (
	// OCIPullTimeout bounds pulling a bundle artifact from a registry.
	OCIPullTimeout = 2 * time.Minute

	// OCIPushTimeout bounds pushing a bundle artifact to a registry.
	OCIPushTimeout = 5 * time.Minute
)

// ConfigMap timeouts for Kubernetes ConfigMap operations.
const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second

	// ConfigMapReadTimeout is the timeout for reading documents from ConfigMaps.
	ConfigMapReadTimeout = 10 * time.Second
)
