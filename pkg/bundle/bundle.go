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

package bundle

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/magiconair/properties"

	"github.com/nsplugins/nsplugins/pkg/errors"
	"github.com/nsplugins/nsplugins/pkg/version"
)

var nextID atomic.Int64

// Bundle is an installed module. Bundles are compared by pointer: two loads
// of the same directory are distinct bundles.
type Bundle struct {
	ID           int64
	SymbolicName string
	Version      version.Version
	// Location is where the bundle was loaded from.
	Location string
	Headers  Headers

	fsys   fs.FS
	closer io.Closer
}

// New creates a bundle backed by fsys, reading its manifest.
func New(location string, fsys fs.FS) (*Bundle, error) {
	f, err := fsys.Open(ManifestPath)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "bundle has no manifest", err,
			map[string]any{"location": location})
	}
	defer f.Close()

	headers, err := ParseManifest(f)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid bundle manifest", err,
			map[string]any{"location": location})
	}

	b := &Bundle{
		ID:       nextID.Add(1),
		Location: location,
		Headers:  headers,
		fsys:     fsys,
	}

	b.SymbolicName = firstPath(headers.Get(HeaderSymbolicName))
	if b.SymbolicName == "" {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"manifest is missing "+HeaderSymbolicName, map[string]any{"location": location})
	}

	if raw := headers.Get(HeaderVersion); raw != "" {
		v, err := version.ParseVersion(raw)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid "+HeaderVersion, err,
				map[string]any{"location": location, "value": raw})
		}
		b.Version = v
	}

	return b, nil
}

func firstPath(header string) string {
	name, _, _ := strings.Cut(header, ";")
	return strings.TrimSpace(name)
}

// String returns "symbolic-name_version [id]".
func (b *Bundle) String() string {
	return fmt.Sprintf("%s_%s [%d]", b.SymbolicName, b.Version, b.ID)
}

// Name returns the human readable bundle name, falling back to the
// symbolic name.
func (b *Bundle) Name() string {
	if n := b.Headers.Get(HeaderName); n != "" {
		return n
	}
	return b.SymbolicName
}

// FS returns the bundle contents.
func (b *Bundle) FS() fs.FS {
	return b.fsys
}

// IsLazy reports whether the bundle declares the lazy activation policy.
func (b *Bundle) IsLazy() bool {
	return firstPath(b.Headers.Get(HeaderActivationPolicy)) == "lazy"
}

// ImportedPackageRange returns the version range the bundle declares for an
// imported package. ok is false when the package is not imported or is
// imported without a version.
func (b *Bundle) ImportedPackageRange(pkg string) (version.Range, bool, error) {
	raw := b.Headers.Get(HeaderImportPackage)
	if raw == "" {
		return version.Range{}, false, nil
	}

	clauses, err := ParseClauses(raw)
	if err != nil {
		return version.Range{}, false, fmt.Errorf("invalid %s header: %w", HeaderImportPackage, err)
	}

	for _, c := range clauses {
		for _, p := range c.Paths {
			if p != pkg {
				continue
			}
			v, declared := c.Attributes["version"]
			if !declared {
				return version.Range{}, false, nil
			}
			rng, err := version.ParseRange(v)
			if err != nil {
				return version.Range{}, false, fmt.Errorf("import of %s: %w", pkg, err)
			}
			return rng, true, nil
		}
	}
	return version.Range{}, false, nil
}

// ReadFile reads a file from the bundle.
func (b *Bundle) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(b.fsys, name)
}

// HasEntry reports whether the bundle contains name.
func (b *Bundle) HasEntry(name string) bool {
	_, err := fs.Stat(b.fsys, name)
	return err == nil
}

// ReadProperties reads a Java properties file from the bundle. A missing
// file yields an error matching fs.ErrNotExist.
func (b *Bundle) ReadProperties(name string) (*properties.Properties, error) {
	buf, err := b.ReadFile(name)
	if err != nil {
		return nil, err
	}

	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s in %s: %w", name, b, err)
	}
	return p, nil
}

// IsNotExist reports whether err is a missing-file error from the bundle.
func IsNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}

// Close releases the archive backing the bundle, if any.
func (b *Bundle) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
