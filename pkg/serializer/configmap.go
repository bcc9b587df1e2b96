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
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/nsplugins/nsplugins/pkg/defaults"
	"github.com/nsplugins/nsplugins/pkg/header"
	"github.com/nsplugins/nsplugins/pkg/k8s/client"
)

// ConfigMapURIScheme addresses a ConfigMap as cm://namespace/name.
const ConfigMapURIScheme = "cm://"

// ConfigMap data keys.
const (
	// DocumentKey prefixes the key holding the document, e.g. document.yaml.
	DocumentKey  = "document"
	FormatKey    = "format"
	TimestampKey = "timestamp"
)

// FieldManager is the server-side apply field manager.
const FieldManager = "nsplugins"

// getKubeClient is replaced in tests.
var getKubeClient = client.GetKubeClient

// ConfigMapWriter writes serialized documents to a Kubernetes ConfigMap,
// creating or updating it with server-side apply.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
}

// NewConfigMapWriter creates a writer for the ConfigMap namespace/name.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    normalize(format),
	}
}

// Serialize writes v to the ConfigMap. The ConfigMap holds:
//   - document.{json|yaml|txt}: the serialized document
//   - format: the format used
//   - timestamp: when the document was produced
//
// Documents embedding a header.Header label the ConfigMap with their kind
// and version.
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	k8s, config, err := getKubeClient()
	if err != nil {
		return fmt.Errorf("failed to get kubernetes client: %w", err)
	}

	content, err := Marshal(w.format, v)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	kind, docVersion, timestamp := "document", "unknown", time.Now().UTC().Format(time.RFC3339)
	if d, ok := v.(header.Document); ok {
		h := d.DocumentHeader()
		if h.Kind != "" {
			kind = strings.ToLower(h.Kind.String())
		}
		if ver := h.Version(); ver != "" {
			docVersion = ver
		}
		if ts := h.Timestamp(); !ts.IsZero() {
			timestamp = ts.Format(time.RFC3339)
		}
	}

	slog.Info("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"auth_method", client.AuthMethod(config),
		"format", w.format)

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      "nsplugins",
			"app.kubernetes.io/component": kind,
			"app.kubernetes.io/version":   docVersion,
		}).
		WithData(map[string]string{
			DocumentKey + "." + w.format.Extension(): string(content),
			FormatKey:    string(w.format),
			TimestampKey: timestamp,
		})

	_, err = k8s.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, cm, metav1.ApplyOptions{
		FieldManager: FieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

// Close is a no-op; ConfigMapWriter holds no resources.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// parseConfigMapURI splits cm://namespace/name.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, ConfigMapURIScheme), "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])
	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}
	return namespace, name, nil
}
