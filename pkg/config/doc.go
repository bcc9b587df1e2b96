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

// Package config loads the nspluginsd configuration.
//
// Configuration is layered: built-in defaults, then an optional JSON or
// YAML file (or a ConfigMap addressed as cm://namespace/name), then
// environment variables. nspluginsd reads the file path from
// NSPLUGINS_CONFIG.
//
// Environment overrides:
//
//   - NSPLUGINS_BUNDLE_ROOT: directory holding bundles
//   - NSPLUGINS_ADDRESS: listen address
//   - PORT: listen port
//   - NSPLUGINS_HOST_VERSION: plugin API version offered to bundles
//   - NSPLUGINS_PRINCIPAL: run resolution as this principal
//   - NSPLUGINS_DISABLE_WATCH: do not watch the bundle root
//   - LOG_LEVEL: debug, info, warn or error
//
// Example file:
//
//	bundleRoot: /var/lib/nsplugins/bundles
//	port: 8080
//	principal: nsplugins
//	pull:
//	  - oci://ghcr.io/example/tx-bundle:2.5.0
package config
