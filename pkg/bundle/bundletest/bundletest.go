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

// Package bundletest builds in-memory bundles for tests.
package bundletest

import (
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/nsplugins/nsplugins/pkg/bundle"
)

// Spec describes an in-memory bundle.
type Spec struct {
	SymbolicName string
	Version      string
	Lazy         bool
	// ImportPackage is the raw Import-Package header value.
	ImportPackage string
	// Files maps bundle paths to contents.
	Files map[string]string
}

// New builds the bundle described by s, failing the test on error.
func New(t testing.TB, s Spec) *bundle.Bundle {
	t.Helper()

	var mf strings.Builder
	fmt.Fprintf(&mf, "Manifest-Version: 1.0\n%s: %s\n", bundle.HeaderSymbolicName, s.SymbolicName)
	if s.Version != "" {
		fmt.Fprintf(&mf, "%s: %s\n", bundle.HeaderVersion, s.Version)
	}
	if s.Lazy {
		fmt.Fprintf(&mf, "%s: lazy\n", bundle.HeaderActivationPolicy)
	}
	if s.ImportPackage != "" {
		fmt.Fprintf(&mf, "%s: %s\n", bundle.HeaderImportPackage, s.ImportPackage)
	}

	fsys := fstest.MapFS{bundle.ManifestPath: {Data: []byte(mf.String())}}
	for name, data := range s.Files {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}

	b, err := bundle.New("mem:"+s.SymbolicName, fsys)
	if err != nil {
		t.Fatalf("bundletest: %v", err)
	}
	return b
}

// Schema returns a minimal XSD document for targetNamespace.
func Schema(targetNamespace string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema" targetNamespace="` + targetNamespace + `"/>
`
}

// Namespace returns the files of a bundle that handles namespaceURI with
// the generic handler and publishes one unversioned and one versioned
// schema for it under dir.
func Namespace(namespaceURI, dir, name string) map[string]string {
	escaped := strings.ReplaceAll(namespaceURI, ":", "\\:")
	return map[string]string{
		"META-INF/spring.handlers": escaped + "=generic\n",
		"META-INF/spring.schemas": escaped + "/" + name + ".xsd=" + dir + "/" + name + "-2.5.xsd\n" +
			escaped + "/" + name + "-2.5.xsd=" + dir + "/" + name + "-2.5.xsd\n" +
			escaped + "/" + name + "-2.0.xsd=" + dir + "/" + name + "-2.0.xsd\n",
		dir + "/" + name + "-2.5.xsd": Schema(namespaceURI),
		dir + "/" + name + "-2.0.xsd": Schema(namespaceURI),
	}
}
