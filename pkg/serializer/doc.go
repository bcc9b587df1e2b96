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

// Package serializer writes and reads nsplugins documents.
//
// Three output formats are supported:
//   - JSON: machine-readable, indented
//   - YAML: human-readable
//   - Table: aligned columns for values implementing Tabular, flattened
//     field/value pairs for everything else
//
// Output goes to stdout, a file, or a Kubernetes ConfigMap addressed as
// cm://namespace/name:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, "cm://nsplugins/catalog")
//	defer serializer.Close(w)
//	if err := w.Serialize(ctx, doc); err != nil {
//	    return err
//	}
//
// FromFile reads JSON or YAML back from a file or ConfigMap:
//
//	cfg, err := serializer.FromFile[config.Config]("/etc/nsplugins/config.yaml")
//
// For HTTP handlers, RespondJSON buffers the encoding so an error never
// produces a partial response.
package serializer
