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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsplugins/nsplugins/pkg/handler"
	"github.com/nsplugins/nsplugins/pkg/header"
	"github.com/nsplugins/nsplugins/pkg/server"
)

func testHandlers(t *testing.T) (*Handlers, http.Handler) {
	t.Helper()
	p := NewPlugins()
	require.NoError(t, p.AddPlugin(context.Background(), namespaceBundle(t, "tx", txNS, ""), true, false))
	h := NewHandlers(p, "v0.0.0-test")
	return h, server.New(server.WithHandler(h.Routes())).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandleNamespaces(t *testing.T) {
	_, h := testHandlers(t)

	w := get(t, h, "/v1/namespaces")
	require.Equal(t, http.StatusOK, w.Code)

	var list NamespaceList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, header.KindNamespaceList, list.Kind)
	assert.Equal(t, "v0.0.0-test", list.Metadata["version"])
	require.Len(t, list.Namespaces, 1)
	assert.Equal(t, txNS, list.Namespaces[0].NamespaceURI)
	assert.Equal(t, "org.example.tx", list.Namespaces[0].Bundle)
	assert.Equal(t, txNS+"/tx.xsd", list.Namespaces[0].DefaultSchemaLocation)
	assert.Equal(t, "tx", list.Namespaces[0].Prefix)
}

func TestHandleBundles(t *testing.T) {
	_, h := testHandlers(t)

	w := get(t, h, "/v1/bundles")
	require.Equal(t, http.StatusOK, w.Code)

	var list BundleList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Bundles, 1)
	assert.False(t, list.Bundles[0].Active)
	assert.Equal(t, 1, list.Stats.Lazy)

	get(t, h, "/v1/resolve/handler?uri="+url.QueryEscape(txNS))

	require.NoError(t, json.Unmarshal(get(t, h, "/v1/bundles").Body.Bytes(), &list))
	assert.True(t, list.Bundles[0].Active, "resolving promotes the bundle")
	assert.Equal(t, []string{"org.example.tx", "2.5.0", "active"}, list.TableRows()[0][1:4])
}

func TestHandleCatalog(t *testing.T) {
	_, h := testHandlers(t)

	w := get(t, h, "/v1/catalog")
	require.Equal(t, http.StatusOK, w.Code)

	var doc CatalogDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc.Entries, 4)
	assert.Equal(t, []string{"TYPE", "KEY", "URI"}, doc.TableHeader())
}

func TestHandleResolveHandler(t *testing.T) {
	_, h := testHandlers(t)

	w := get(t, h, "/v1/resolve/handler?uri="+url.QueryEscape(txNS))
	require.Equal(t, http.StatusOK, w.Code)

	var res Resolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, txNS, res.NamespaceURI)
	assert.Equal(t, handler.GenericName, res.Handler)
	assert.Equal(t, header.KindResolution, res.Kind)

	w = get(t, h, "/v1/resolve/handler?uri=urn:unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var errResp server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)
	assert.Equal(t, "urn:unknown", errResp.Details["uri"])

	w = get(t, h, "/v1/resolve/handler")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleResolveEntity(t *testing.T) {
	_, h := testHandlers(t)

	w := get(t, h, "/v1/resolve/entity?systemId="+url.QueryEscape(txNS+"/tx-2.0.xsd"))
	require.Equal(t, http.StatusOK, w.Code)

	var res Resolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "org/example/tx/tx-2.0.xsd", res.Path)
	assert.Equal(t, "bundle://org.example.tx/org/example/tx/tx-2.0.xsd", res.URI)
	assert.Equal(t, "org.example.tx", res.Bundle)

	w = get(t, h, "/v1/resolve/entity?raw=true&publicId="+url.QueryEscape(txNS))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(w.Body.String(), `targetNamespace="`+txNS+`"`))

	w = get(t, h, "/v1/resolve/entity")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, h, "/v1/resolve/entity?systemId="+url.QueryEscape("http://elsewhere/beans.xsd"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlersRejectNonGet(t *testing.T) {
	hs, _ := testHandlers(t)

	for path, fn := range hs.Routes() {
		w := httptest.NewRecorder()
		fn(w, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, path)
		assert.Equal(t, http.MethodGet, w.Header().Get("Allow"), path)
	}
}

func TestNamespaceListTable(t *testing.T) {
	p := NewPlugins()
	require.NoError(t, p.AddPlugin(context.Background(), namespaceBundle(t, "aop", aopNS, ""), true, false))

	l := NewNamespaceList(p.Definitions().List(), "dev")
	require.Len(t, l.TableRows(), 1)
	assert.Equal(t, []string{aopNS, "aop", "Aop", "org.example.aop", aopNS + "/aop.xsd"}, l.TableRows()[0])
	assert.Len(t, l.TableHeader(), 5)
}
