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

// Package header provides the common header of documents nsplugins emits.
//
// Every document written by the CLI, the API server, or the ConfigMap
// writer starts with a header in Kubernetes resource style:
//
//	apiVersion: nsplugins.io/v1
//	kind: NamespaceList
//	metadata:
//	  timestamp: "2026-01-12T10:30:00Z"
//	  version: v0.4.0
//
// Types embed Header and call Init to stamp it. The embedding type then
// satisfies Document, which writers use to label stored output:
//
//	type BundleList struct {
//		header.Header `json:",inline" yaml:",inline"`
//		Bundles []BundleState `json:"bundles" yaml:"bundles"`
//	}
//
//	l := &BundleList{}
//	l.Init(header.KindBundleList, version)
package header
