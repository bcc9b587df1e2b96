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
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Well-known manifest headers.
const (
	HeaderSymbolicName     = "Bundle-SymbolicName"
	HeaderVersion          = "Bundle-Version"
	HeaderName             = "Bundle-Name"
	HeaderActivationPolicy = "Bundle-ActivationPolicy"
	HeaderImportPackage    = "Import-Package"
)

// ManifestPath is the location of the manifest inside a bundle.
const ManifestPath = "META-INF/MANIFEST.MF"

// Headers holds the main section of a bundle manifest.
type Headers map[string]string

// Get returns the value of the named header. Header names are matched
// case-insensitively.
func (h Headers) Get(name string) string {
	if v, ok := h[name]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// ParseManifest reads the main section of a JAR-style manifest. Lines that
// start with a single space continue the previous header. Parsing stops at
// the first blank line, which ends the main section.
func ParseManifest(r io.Reader) (Headers, error) {
	headers := make(Headers)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var name string
	var value strings.Builder
	flush := func() {
		if name != "" {
			headers[name] = value.String()
		}
		name = ""
		value.Reset()
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "" {
			if len(headers) > 0 || name != "" {
				break
			}
			continue
		}

		if strings.HasPrefix(line, " ") {
			if name == "" {
				return nil, fmt.Errorf("manifest line %d: continuation without header", lineNo)
			}
			value.WriteString(line[1:])
			continue
		}

		flush()
		k, v, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("manifest line %d: missing header name", lineNo)
		}
		name = strings.TrimSpace(k)
		value.WriteString(strings.TrimSpace(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	flush()

	return headers, nil
}

// Clause is one comma-separated element of a header such as Import-Package:
// one or more paths followed by attributes (a=b) and directives (a:=b).
type Clause struct {
	Paths      []string
	Attributes map[string]string
	Directives map[string]string
}

// ParseClauses splits a header value into clauses. Commas and semicolons
// inside double quotes do not separate anything.
func ParseClauses(value string) ([]Clause, error) {
	var clauses []Clause
	for _, raw := range splitQuoted(value, ',') {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		c := Clause{
			Attributes: make(map[string]string),
			Directives: make(map[string]string),
		}
		for _, part := range splitQuoted(raw, ';') {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if k, v, ok := strings.Cut(part, ":="); ok {
				c.Directives[strings.TrimSpace(k)] = unquote(v)
				continue
			}
			if k, v, ok := strings.Cut(part, "="); ok {
				c.Attributes[strings.TrimSpace(k)] = unquote(v)
				continue
			}
			if len(c.Attributes) > 0 || len(c.Directives) > 0 {
				return nil, fmt.Errorf("path %q follows parameters in clause %q", part, raw)
			}
			c.Paths = append(c.Paths, part)
		}
		if len(c.Paths) == 0 {
			return nil, fmt.Errorf("clause %q has no path", raw)
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

func splitQuoted(s string, sep rune) []string {
	var parts []string
	var cur strings.Builder
	quoted := false
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			cur.WriteRune(r)
		case r == sep && !quoted:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(parts, cur.String())
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
