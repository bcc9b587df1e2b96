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

package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nsplugins/nsplugins/pkg/defaults"
	"github.com/nsplugins/nsplugins/pkg/header"
)

// FormatFromPath determines the format from a file extension:
// .json, .yaml/.yml and .table/.txt. Unknown extensions mean JSON.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lower, ".table"), strings.HasSuffix(lower, ".txt"):
		return FormatTable
	default:
		slog.Warn("unknown file extension, defaulting to JSON", "path", path)
		return FormatJSON
	}
}

// Reader decodes JSON or YAML from an io.Reader.
type Reader struct {
	format Format
	input  io.Reader
	closer io.Closer
}

// NewReader creates a Reader for input. The table format cannot be read.
func NewReader(format Format, input io.Reader) (*Reader, error) {
	if format.IsUnknown() {
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	if format == FormatTable {
		return nil, fmt.Errorf("table format does not support deserialization")
	}

	r := &Reader{format: format, input: input}
	if c, ok := input.(io.Closer); ok {
		r.closer = c
	}
	return r, nil
}

// NewFileReader opens path for reading in format.
func NewFileReader(format Format, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	r, err := NewReader(format, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Deserialize decodes the input into v.
func (r *Reader) Deserialize(v any) error {
	if r == nil || r.input == nil {
		return fmt.Errorf("input source is nil")
	}

	switch r.format {
	case FormatJSON:
		if err := json.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format for deserialization: %s", r.format)
	}
	return nil
}

// Close releases the input. It is safe to call more than once.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// FromFile reads a T from a JSON or YAML file, or from a ConfigMap written
// by ConfigMapWriter when path is cm://namespace/name.
func FromFile[T any](path string) (*T, error) {
	if strings.HasPrefix(path, ConfigMapURIScheme) {
		namespace, name, err := parseConfigMapURI(path)
		if err != nil {
			return nil, err
		}
		return fromConfigMap[T](namespace, name)
	}

	r, err := NewFileReader(FormatFromPath(path), path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil {
			slog.Warn("failed to close reader", "error", closeErr)
		}
	}()

	var v T
	if err := r.Deserialize(&v); err != nil {
		return nil, fmt.Errorf("failed to deserialize %q: %w", path, err)
	}
	if err := checkHeader(&v); err != nil {
		return nil, fmt.Errorf("invalid document %q: %w", path, err)
	}
	return &v, nil
}

// checkHeader validates the header of documents that carry one. Documents
// without a kind are accepted as plain data.
func checkHeader(v any) error {
	d, ok := v.(header.Document)
	if !ok || d.DocumentHeader().Kind == "" {
		return nil
	}
	return d.DocumentHeader().Validate()
}

func fromConfigMap[T any](namespace, name string) (*T, error) {
	k8s, _, err := getKubeClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaults.ConfigMapReadTimeout)
	defer cancel()

	cm, err := k8s.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	format := FormatYAML
	if f, ok := cm.Data[FormatKey]; ok {
		format = Format(f)
	}
	content, ok := cm.Data[DocumentKey+"."+format.Extension()]
	if !ok {
		for _, f := range []Format{FormatYAML, FormatJSON} {
			if content, ok = cm.Data[DocumentKey+"."+f.Extension()]; ok {
				format = f
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("ConfigMap %s/%s has no document", namespace, name)
	}

	r, err := NewReader(format, strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to read ConfigMap %s/%s: %w", namespace, name, err)
	}
	var v T
	if err := r.Deserialize(&v); err != nil {
		return nil, fmt.Errorf("failed to deserialize ConfigMap %s/%s: %w", namespace, name, err)
	}
	if err := checkHeader(&v); err != nil {
		return nil, fmt.Errorf("invalid document in ConfigMap %s/%s: %w", namespace, name, err)
	}
	return &v, nil
}
