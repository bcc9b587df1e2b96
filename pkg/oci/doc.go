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

// Package oci distributes bundles as OCI artifacts.
//
// A bundle directory or archive is pushed as a single-layer artifact with
// the artifact type "application/vnd.nsplugins.bundle". The layer title is
// the bundle's file name, and the manifest carries the bundle symbolic name
// and version as annotations.
//
// # Usage
//
// Push a bundle:
//
//	ref, err := oci.ParseReference("oci://ghcr.io/example/tx-bundle:2.5.0")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Push(ctx, oci.PushOptions{
//	    Path:      "/var/lib/nsplugins/bundles/org.example.tx",
//	    Reference: ref,
//	})
//
// Pull it into a bundle root, where the bundle watcher installs it:
//
//	res, err := oci.Pull(ctx, oci.PullOptions{
//	    Reference:  ref,
//	    BundleRoot: "/var/lib/nsplugins/bundles",
//	})
//
// Pulled content is staged in a hidden directory under the bundle root and
// renamed into place once complete, so the watcher never sees a partial
// bundle.
//
// # Authentication
//
// Credentials are loaded from the Docker configuration (~/.docker/config.json)
// through the ORAS credentials package.
package oci
