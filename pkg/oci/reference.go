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

package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/nsplugins/nsplugins/pkg/errors"
)

// URIScheme is the URI scheme of bundle artifact references
// (e.g., "oci://ghcr.io/org/repo:tag").
const URIScheme = "oci://"

// DefaultTag is used when a reference names no tag.
const DefaultTag = "latest"

// Reference is a parsed bundle artifact reference.
type Reference struct {
	// Registry is the OCI registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the repository path (e.g., "example/tx-bundle").
	Repository string
	// Tag is the artifact tag. Empty means no tag was given.
	Tag string
}

// IsReference reports whether s uses the oci:// scheme.
func IsReference(s string) bool {
	return strings.HasPrefix(s, URIScheme)
}

// ParseReference parses an oci:// reference.
func ParseReference(s string) (*Reference, error) {
	if !IsReference(s) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"reference must start with "+URIScheme, map[string]any{"reference": s})
	}

	named, err := reference.ParseNormalizedNamed(strings.TrimPrefix(s, URIScheme))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}
	if _, digested := named.(reference.Digested); digested {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"digest references are not supported", map[string]any{"reference": s})
	}

	ref := &Reference{
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
	}
	if tagged, ok := named.(reference.Tagged); ok {
		ref.Tag = tagged.Tag()
	}
	return ref, nil
}

// TagOrDefault returns the tag, or DefaultTag when none was given.
func (r *Reference) TagOrDefault() string {
	if r.Tag == "" {
		return DefaultTag
	}
	return r.Tag
}

// String returns the reference with its oci:// scheme.
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// ImageReference returns the Docker-style reference without the scheme.
func (r *Reference) ImageReference() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy of the reference with tag.
func (r *Reference) WithTag(tag string) *Reference {
	c := *r
	c.Tag = tag
	return &c
}
