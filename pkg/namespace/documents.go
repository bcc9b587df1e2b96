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
	"strconv"

	"github.com/nsplugins/nsplugins/pkg/catalog"
	"github.com/nsplugins/nsplugins/pkg/handler"
	"github.com/nsplugins/nsplugins/pkg/header"
	"github.com/nsplugins/nsplugins/pkg/plugin"
	"github.com/nsplugins/nsplugins/pkg/registry"
)

// NamespaceInfo is the published view of a Definition.
type NamespaceInfo struct {
	NamespaceURI          string   `json:"namespaceUri" yaml:"namespaceUri"`
	Prefix                string   `json:"prefix" yaml:"prefix"`
	Name                  string   `json:"name" yaml:"name"`
	IconPath              string   `json:"iconPath,omitempty" yaml:"iconPath,omitempty"`
	DefaultSchemaLocation string   `json:"defaultSchemaLocation,omitempty" yaml:"defaultSchemaLocation,omitempty"`
	DefaultURI            string   `json:"defaultUri,omitempty" yaml:"defaultUri,omitempty"`
	SchemaLocations       []string `json:"schemaLocations" yaml:"schemaLocations"`
	Bundle                string   `json:"bundle,omitempty" yaml:"bundle,omitempty"`
}

// NamespaceList lists the registered namespace definitions.
type NamespaceList struct {
	header.Header `json:",inline" yaml:",inline"`

	Namespaces []NamespaceInfo `json:"namespaces" yaml:"namespaces"`
}

// TableHeader implements serializer.Tabular.
func (l *NamespaceList) TableHeader() []string {
	return []string{"NAMESPACE", "PREFIX", "NAME", "BUNDLE", "DEFAULT SCHEMA"}
}

// TableRows implements serializer.Tabular.
func (l *NamespaceList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Namespaces))
	for _, n := range l.Namespaces {
		rows = append(rows, []string{n.NamespaceURI, n.Prefix, n.Name, n.Bundle, n.DefaultSchemaLocation})
	}
	return rows
}

// NewNamespaceList builds a NamespaceList stamped with the producing tool
// version.
func NewNamespaceList(defs []Definition, toolVersion string) *NamespaceList {
	l := &NamespaceList{Namespaces: make([]NamespaceInfo, 0, len(defs))}
	l.Init(header.KindNamespaceList, toolVersion)
	for i := range defs {
		d := &defs[i]
		info := NamespaceInfo{
			NamespaceURI:          d.NamespaceURI,
			Prefix:                d.EffectivePrefix(),
			Name:                  d.DisplayName(),
			IconPath:              d.IconPath,
			DefaultSchemaLocation: d.DefaultSchemaLocation(),
			DefaultURI:            d.DefaultURI(),
			SchemaLocations:       d.SchemaLocations,
		}
		if d.Bundle != nil {
			info.Bundle = d.Bundle.SymbolicName
		}
		l.Namespaces = append(l.Namespaces, info)
	}
	return l
}

// BundleList lists the registered bundles with registry statistics.
type BundleList struct {
	header.Header `json:",inline" yaml:",inline"`

	Stats   registry.Stats `json:"stats" yaml:"stats"`
	Bundles []BundleState  `json:"bundles" yaml:"bundles"`
}

// TableHeader implements serializer.Tabular.
func (l *BundleList) TableHeader() []string {
	return []string{"ID", "SYMBOLIC NAME", "VERSION", "STATE", "LOCATION"}
}

// TableRows implements serializer.Tabular.
func (l *BundleList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Bundles))
	for _, b := range l.Bundles {
		state := "lazy"
		if b.Active {
			state = "active"
		}
		rows = append(rows, []string{strconv.FormatInt(b.ID, 10), b.SymbolicName, b.Version, state, b.Location})
	}
	return rows
}

// NewBundleList builds a BundleList from p.
func NewBundleList(p *Plugins, toolVersion string) *BundleList {
	l := &BundleList{
		Stats:   p.Stats(),
		Bundles: p.Bundles(),
	}
	l.Init(header.KindBundleList, toolVersion)
	return l
}

// CatalogDocument is the XML catalog contributed by all bundles.
type CatalogDocument struct {
	header.Header `json:",inline" yaml:",inline"`

	Entries []catalog.Entry `json:"entries" yaml:"entries"`
}

// TableHeader implements serializer.Tabular.
func (c *CatalogDocument) TableHeader() []string {
	return []string{"TYPE", "KEY", "URI"}
}

// TableRows implements serializer.Tabular.
func (c *CatalogDocument) TableRows() [][]string {
	rows := make([][]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		rows = append(rows, []string{string(e.Type), e.Key, e.URI})
	}
	return rows
}

// NewCatalogDocument builds a CatalogDocument from c.
func NewCatalogDocument(c *catalog.Catalog, toolVersion string) *CatalogDocument {
	d := &CatalogDocument{Entries: c.Entries()}
	d.Init(header.KindCatalog, toolVersion)
	return d
}

// Resolution is the outcome of a handler or entity lookup.
type Resolution struct {
	header.Header `json:",inline" yaml:",inline"`

	NamespaceURI string `json:"namespaceUri,omitempty" yaml:"namespaceUri,omitempty"`
	Handler      string `json:"handler,omitempty" yaml:"handler,omitempty"`
	PublicID     string `json:"publicId,omitempty" yaml:"publicId,omitempty"`
	SystemID     string `json:"systemId,omitempty" yaml:"systemId,omitempty"`
	Path         string `json:"path,omitempty" yaml:"path,omitempty"`
	URI          string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Bundle       string `json:"bundle,omitempty" yaml:"bundle,omitempty"`
}

// NewHandlerResolution describes a resolved namespace handler.
func NewHandlerResolution(hd handler.Handler, toolVersion string) *Resolution {
	r := &Resolution{NamespaceURI: hd.NamespaceURI(), Handler: hd.Name()}
	r.Init(header.KindResolution, toolVersion)
	return r
}

// NewEntityResolution describes a resolved schema.
func NewEntityResolution(src *plugin.InputSource, toolVersion string) *Resolution {
	r := &Resolution{
		PublicID: src.PublicID,
		SystemID: src.SystemID,
		Path:     src.Path,
		URI:      src.URI(),
		Bundle:   src.Bundle.SymbolicName,
	}
	r.Init(header.KindResolution, toolVersion)
	return r
}
