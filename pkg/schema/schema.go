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

package schema

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/nsplugins/nsplugins/pkg/version"
)

// versionPattern matches schema names with a version suffix, such as
// spring-tx-2.5.xsd.
var versionPattern = regexp.MustCompile(`.*-([0-9,.]*)\.xsd$`)

// ErrNoRootElement is returned for documents without any element.
var ErrNoRootElement = errors.New("document has no root element")

// TargetNamespace returns the targetNamespace attribute of the root element
// of an XSD document. The attribute is matched by local name, so any prefix
// is accepted. A root without the attribute yields "".
func TargetNamespace(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", ErrNoRootElement
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse schema: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, a := range start.Attr {
			if a.Name.Local == "targetNamespace" {
				return strings.TrimSpace(a.Value), nil
			}
		}
		return "", nil
	}
}

// IsVersioned reports whether name carries a -<version>.xsd suffix.
func IsVersioned(name string) bool {
	return versionPattern.MatchString(name)
}

// VersionOf returns the version encoded in a schema name, or
// version.Minimum when the name is unversioned or the suffix does not parse.
func VersionOf(name string) version.Version {
	m := versionPattern.FindStringSubmatch(name)
	if m == nil {
		return version.Minimum
	}
	return version.ParseOrMinimum(m[1])
}

// DefaultLocation picks the default schema location of a namespace: the
// version-less location when there is one, otherwise the lexically first.
func DefaultLocation(locations []string) string {
	sorted := sortedCopy(locations)
	for _, l := range sorted {
		if !IsVersioned(l) {
			return l
		}
	}
	if len(sorted) == 0 {
		return ""
	}
	return sorted[0]
}

// DefaultURI picks the schema with the highest version. Unversioned names
// count as the minimum version. Among equal versions the lexically last
// name wins.
func DefaultURI(uris []string) string {
	best := ""
	bestVersion := version.Minimum
	for _, u := range sortedCopy(uris) {
		v := VersionOf(u)
		if v.Compare(bestVersion) >= 0 {
			best, bestVersion = u, v
		}
	}
	return best
}

// Prefix derives a namespace prefix from the last path segment of a
// namespace URI. It returns "" when the URI has no usable segment.
func Prefix(namespaceURI string) string {
	i := strings.LastIndex(namespaceURI, "/")
	if i <= 0 {
		return ""
	}
	return namespaceURI[i+1:]
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
