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

package handler

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// GenericName is the name of the built-in handler.
const GenericName = "generic"

// ErrUnknownHandler is returned by New for names nobody registered.
var ErrUnknownHandler = errors.New("unknown handler")

func init() {
	MustRegister(GenericName, newGeneric)
}

// Element is the result of the generic handler: the element name and its
// attributes keyed by local name.
type Element struct {
	Name       xml.Name          `json:"name" yaml:"name"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type generic struct {
	namespaceURI string
}

func newGeneric(namespaceURI string) (Handler, error) {
	if namespaceURI == "" {
		return nil, errors.New("namespace URI is required")
	}
	return &generic{namespaceURI: namespaceURI}, nil
}

func (g *generic) NamespaceURI() string { return g.namespaceURI }

func (g *generic) Name() string { return GenericName }

// Parse decodes the first start element of element and checks that it
// belongs to the handler's namespace.
func (g *generic) Parse(ctx context.Context, element string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(strings.NewReader(element))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("no element found")
		}
		if err != nil {
			return nil, fmt.Errorf("invalid element: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Space != g.namespaceURI {
			return nil, fmt.Errorf("element %s is not in namespace %s", start.Name.Local, g.namespaceURI)
		}

		el := &Element{Name: start.Name, Attributes: make(map[string]string, len(start.Attr))}
		for _, a := range start.Attr {
			if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
				continue
			}
			el.Attributes[a.Name.Local] = a.Value
		}
		return el, nil
	}
}
