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

package namespace

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/schema"
)

// Definition describes an XML namespace published by a bundle.
type Definition struct {
	NamespaceURI    string         `json:"namespaceUri" yaml:"namespaceUri"`
	Prefix          string         `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Name            string         `json:"name,omitempty" yaml:"name,omitempty"`
	IconPath        string         `json:"iconPath,omitempty" yaml:"iconPath,omitempty"`
	SchemaLocations []string       `json:"schemaLocations" yaml:"schemaLocations"`
	URIs            []string       `json:"uris" yaml:"uris"`
	Bundle          *bundle.Bundle `json:"-" yaml:"-"`
}

// DefaultSchemaLocation returns the schema location documents should
// reference: the version-less one when published.
func (d *Definition) DefaultSchemaLocation() string {
	return schema.DefaultLocation(d.SchemaLocations)
}

// DefaultURI returns the bundle path of the newest schema.
func (d *Definition) DefaultURI() string {
	return schema.DefaultURI(d.URIs)
}

// EffectivePrefix returns the declared prefix or one derived from the
// namespace URI.
func (d *Definition) EffectivePrefix() string {
	if d.Prefix != "" {
		return d.Prefix
	}
	return schema.Prefix(d.NamespaceURI)
}

// DisplayName returns the declared name or a title-cased prefix.
func (d *Definition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return cases.Title(language.English).String(d.EffectivePrefix())
}

func (d *Definition) clone() Definition {
	c := *d
	c.SchemaLocations = append([]string(nil), d.SchemaLocations...)
	c.URIs = append([]string(nil), d.URIs...)
	return c
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func removeValue(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
