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
	"strings"
)

// DefaultAPIVersion is used when the client does not negotiate one.
const DefaultAPIVersion = "v1"

const vendorMediaTypePrefix = "application/vnd.nsplugins."

var validAPIVersions = map[string]bool{
	"v1": true,
}

// negotiateAPIVersion reads the version from an Accept header such as
// application/vnd.nsplugins.v1+json, falling back to DefaultAPIVersion.
func negotiateAPIVersion(r *http.Request) string {
	for _, accept := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType := strings.TrimSpace(strings.SplitN(accept, ";", 2)[0])
		if !strings.HasPrefix(mediaType, vendorMediaTypePrefix) {
			continue
		}
		version := strings.SplitN(strings.TrimPrefix(mediaType, vendorMediaTypePrefix), "+", 2)[0]
		if isValidAPIVersion(version) {
			return version
		}
	}
	return DefaultAPIVersion
}

func isValidAPIVersion(version string) bool {
	return validAPIVersions[version]
}

// SetAPIVersionHeader sets the X-API-Version response header.
func SetAPIVersionHeader(w http.ResponseWriter, version string) {
	w.Header().Set("X-API-Version", version)
}
