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

// Package extender connects bundle lifecycle events to the namespace
// plugin registry.
//
// Installed bundles that publish handler or schema mappings are added as
// plugins; lazy activation and the compatibility check follow from the
// bundle manifest. Uninstalled bundles are removed and closed.
//
// Usage:
//
//	ext := extender.New(plugins)
//	ext.Start(ctx, initial)
//	err := ext.Run(ctx, watcher.Events())
package extender
