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

package header

import (
	"fmt"
	"time"
)

// APIVersion is the API version of emitted documents.
const APIVersion = "nsplugins.io/v1"

// Metadata keys set by Init.
const (
	MetadataTimestamp = "timestamp"
	MetadataVersion   = "version"
)

// Kind represents the type of an emitted document.
type Kind string

// Document kinds.
const (
	KindNamespaceList Kind = "NamespaceList"
	KindBundleList    Kind = "BundleList"
	KindCatalog       Kind = "Catalog"
	KindResolution    Kind = "Resolution"
)

var kinds = []Kind{KindNamespaceList, KindBundleList, KindCatalog, KindResolution}

func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown document kind %q", s)
	}
	return k, nil
}

// Document is implemented by every type embedding a Header.
type Document interface {
	DocumentHeader() *Header
}

// Header identifies a document and when it was produced.
type Header struct {
	Kind       Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// DocumentHeader returns h itself so embedding types satisfy Document.
func (h *Header) DocumentHeader() *Header {
	return h
}

// Init stamps the header with kind, APIVersion, the current time and the
// producing tool version.
func (h *Header) Init(kind Kind, version string) {
	h.Kind = kind
	h.APIVersion = APIVersion
	h.Metadata = map[string]string{
		MetadataTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if version != "" {
		h.Metadata[MetadataVersion] = version
	}
}

// Version returns the version of the tool that produced the document.
func (h *Header) Version() string {
	return h.Metadata[MetadataVersion]
}

// Timestamp returns when the document was produced. The zero time is
// returned for headers that were never initialized.
func (h *Header) Timestamp() time.Time {
	ts, err := time.Parse(time.RFC3339, h.Metadata[MetadataTimestamp])
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Validate checks a header read back from storage.
func (h *Header) Validate() error {
	if h.APIVersion != APIVersion {
		return fmt.Errorf("unsupported apiVersion %q, want %q", h.APIVersion, APIVersion)
	}
	if !h.Kind.IsValid() {
		return fmt.Errorf("unknown document kind %q", h.Kind)
	}
	return nil
}
