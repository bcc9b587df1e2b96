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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/bundle/bundletest"
	"github.com/nsplugins/nsplugins/pkg/config"
	"github.com/nsplugins/nsplugins/pkg/namespace"
)

const txNS = "http://www.example.org/schema/tx"

// writeNamespaceBundle lays out a lazy namespace bundle directory under root.
func writeNamespaceBundle(t *testing.T, root, dir, symbolicName, namespaceURI, name string) {
	t.Helper()
	base := filepath.Join(root, dir)
	files := bundletest.Namespace(namespaceURI, "schema", name)
	files[bundle.ManifestPath] = "Manifest-Version: 1.0\n" +
		bundle.HeaderSymbolicName + ": " + symbolicName + "\n" +
		bundle.HeaderVersion + ": 1.0.0\n" +
		bundle.HeaderActivationPolicy + ": lazy\n"
	for p, data := range files {
		path := filepath.Join(base, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BundleRoot = t.TempDir()
	cfg.Address = "127.0.0.1"
	cfg.Port = 0
	return cfg
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)
	writeNamespaceBundle(t, cfg.BundleRoot, "tx", "org.example.tx", txNS, "tx")

	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(d.extender.Stop)

	assert.Equal(t, 1, d.extender.Tracked())
	defs := d.Plugins().Definitions().List()
	require.Len(t, defs, 1)
	assert.Equal(t, txNS, defs[0].NamespaceURI)
	assert.Equal(t, 1, d.Plugins().Stats().Lazy)
}

func TestNewCreatesBundleRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.BundleRoot = filepath.Join(cfg.BundleRoot, "nested", "bundles")

	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(d.extender.Stop)

	info, err := os.Stat(cfg.BundleRoot)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Empty(t, d.Plugins().Definitions().List())
}

func TestNewSkipsFailedPull(t *testing.T) {
	cfg := testConfig(t)
	cfg.PlainHTTP = true
	// nothing listens on port 1
	cfg.Pull = []string{"oci://127.0.0.1:1/bundles/tx:1.0.0", "not a reference"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(d.extender.Stop)
	assert.Equal(t, 0, d.extender.Tracked())
}

func TestNewWithPrincipal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Principal = "nsplugins"
	writeNamespaceBundle(t, cfg.BundleRoot, "tx", "org.example.tx", txNS, "tx")

	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(d.extender.Stop)

	h, err := d.Plugins().ResolveHandler(context.Background(), txNS)
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestDaemonHandler(t *testing.T) {
	cfg := testConfig(t)
	writeNamespaceBundle(t, cfg.BundleRoot, "tx", "org.example.tx", txNS, "tx")

	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(d.extender.Stop)

	w := httptest.NewRecorder()
	d.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/namespaces", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list namespace.NamespaceList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Namespaces, 1)
	assert.Equal(t, "org.example.tx", list.Namespaces[0].Bundle)

	w = httptest.NewRecorder()
	target := "/v1/resolve/entity?systemId=" + url.QueryEscape(txNS+"/tx.xsd")
	d.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res namespace.Resolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "schema/tx-2.5.xsd", res.Path)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name         string
		disableWatch bool
	}{
		{"watching", false},
		{"static", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.DisableWatch = tt.disableWatch
			writeNamespaceBundle(t, cfg.BundleRoot, "tx", "org.example.tx", txNS, "tx")

			d, err := New(context.Background(), cfg)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- d.Run(ctx)
			}()

			require.Eventually(t, func() bool {
				return d.Addr() != nil
			}, 5*time.Second, 10*time.Millisecond)

			resp, err := http.Get("http://" + d.Addr().String() + "/health")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			cancel()
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(10 * time.Second):
				t.Fatal("daemon did not stop")
			}
			assert.Equal(t, 0, d.extender.Tracked())
		})
	}
}

func TestRunPicksUpNewBundles(t *testing.T) {
	cfg := testConfig(t)

	d, err := New(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return d.Addr() != nil
	}, 5*time.Second, 10*time.Millisecond)

	// stage outside the root so the watcher sees one complete directory
	staging := t.TempDir()
	writeNamespaceBundle(t, staging, "tx", "org.example.tx", txNS, "tx")
	require.NoError(t, os.Rename(filepath.Join(staging, "tx"), filepath.Join(cfg.BundleRoot, "tx")))

	require.Eventually(t, func() bool {
		_, ok := d.Plugins().Definitions().Resolve(txNS)
		return ok
	}, 10*time.Second, 25*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
