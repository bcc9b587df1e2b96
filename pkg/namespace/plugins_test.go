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
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/bundle/bundletest"
	"github.com/nsplugins/nsplugins/pkg/errors"
	"github.com/nsplugins/nsplugins/pkg/plugin"
)

const (
	txNS  = "http://www.example.org/schema/tx"
	aopNS = "http://www.example.org/schema/aop"
)

func namespaceBundle(t *testing.T, name, ns, imports string) *bundle.Bundle {
	t.Helper()
	return bundletest.New(t, bundletest.Spec{
		SymbolicName:  "org.example." + name,
		Version:       "2.5.0",
		Lazy:          true,
		ImportPackage: imports,
		Files:         bundletest.Namespace(ns, "org/example/"+name, name),
	})
}

// countingActivator wraps plugin.Activate and counts activations per bundle.
type countingActivator struct {
	mu    sync.Mutex
	calls map[*bundle.Bundle]int
}

func (c *countingActivator) activate(ctx context.Context, b *bundle.Bundle) (*plugin.Plugin, error) {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[*bundle.Bundle]int)
	}
	c.calls[b]++
	c.mu.Unlock()
	return plugin.Activate(ctx, b)
}

func (c *countingActivator) count(b *bundle.Bundle) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[b]
}

func TestResolveHandlerLazy(t *testing.T) {
	ctx := context.Background()
	act := &countingActivator{}
	p := NewPlugins(WithActivator(act.activate))

	tx := namespaceBundle(t, "tx", txNS, "")
	aop := namespaceBundle(t, "aop", aopNS, "")
	require.NoError(t, p.AddPlugin(ctx, tx, true, false))
	require.NoError(t, p.AddPlugin(ctx, aop, true, false))
	assert.Zero(t, act.count(tx), "lazy bundles are not activated on add")

	h, err := p.ResolveHandler(ctx, txNS)
	require.NoError(t, err)
	assert.Equal(t, txNS, h.NamespaceURI())

	h, err = p.ResolveHandler(ctx, txNS)
	require.NoError(t, err)
	assert.Equal(t, txNS, h.NamespaceURI())
	assert.Equal(t, 1, act.count(tx))

	_, err = p.ResolveHandler(ctx, "urn:unknown")
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	_, err = p.ResolveHandler(ctx, "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestResolveHandlerEager(t *testing.T) {
	ctx := context.Background()
	p := NewPlugins()
	tx := namespaceBundle(t, "tx", txNS, "")
	require.NoError(t, p.AddPlugin(ctx, tx, false, false))

	states := p.Bundles()
	require.Len(t, states, 1)
	assert.True(t, states[0].Active)
	assert.Equal(t, "org.example.tx", states[0].SymbolicName)
	assert.Equal(t, "2.5.0", states[0].Version)

	h, err := p.ResolveHandler(ctx, txNS)
	require.NoError(t, err)
	assert.Equal(t, txNS, h.NamespaceURI())
}

func TestAddPluginEagerActivationFailure(t *testing.T) {
	ctx := context.Background()
	broken := bundletest.New(t, bundletest.Spec{
		SymbolicName: "org.example.broken",
		Files: map[string]string{
			plugin.HandlersPath: "urn\\:broken=org.example.Missing\n",
			plugin.SchemasPath:  "urn\\:broken.xsd=broken.xsd\n",
			"broken.xsd":        bundletest.Schema("urn:broken"),
		},
	})

	p := NewPlugins()
	err := p.AddPlugin(ctx, broken, false, false)
	assert.True(t, errors.IsCode(err, errors.ErrCodeActivationFailed))
	assert.Empty(t, p.Bundles())
	assert.Empty(t, p.Definitions().List(), "definitions of a failed bundle are withdrawn")
	assert.Zero(t, p.Catalog().Len())
}

func TestIncompatibleBundleIsDiscarded(t *testing.T) {
	ctx := context.Background()
	act := &countingActivator{}
	p := NewPlugins(WithActivator(act.activate))

	future := namespaceBundle(t, "tx", txNS, plugin.APIPackage+`;version="[9.0,10.0)"`)
	require.True(t, plugin.RequiresCompatibilityCheck(future))
	require.NoError(t, p.AddPlugin(ctx, future, true, true))

	_, err := p.ResolveHandler(ctx, txNS)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.Zero(t, act.count(future))
	assert.Empty(t, p.Bundles())
}

func TestRemovePlugin(t *testing.T) {
	ctx := context.Background()
	p := NewPlugins()
	tx := namespaceBundle(t, "tx", txNS, "")
	require.NoError(t, p.AddPlugin(ctx, tx, true, false))

	_, err := p.ResolveHandler(ctx, txNS)
	require.NoError(t, err)

	assert.True(t, p.RemovePlugin(tx))
	assert.False(t, p.RemovePlugin(tx))

	_, err = p.ResolveHandler(ctx, txNS)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	_, ok := p.Definitions().Resolve(txNS)
	assert.False(t, ok)
}

func TestPluginsUseConfiguredLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	p := NewPlugins(WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	tx := namespaceBundle(t, "tx", txNS, "")

	require.NoError(t, p.AddPlugin(ctx, tx, true, false))
	require.True(t, p.RemovePlugin(tx))

	out := buf.String()
	assert.Contains(t, out, `"msg":"namespace plugin added"`)
	assert.Contains(t, out, `"msg":"namespace plugin removed"`)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	p := NewPlugins()
	require.NoError(t, p.AddPlugin(ctx, namespaceBundle(t, "tx", txNS, ""), false, false))
	require.NoError(t, p.AddPlugin(ctx, namespaceBundle(t, "aop", aopNS, ""), true, false))

	p.Clear()

	_, err := p.ResolveHandler(ctx, txNS)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	_, err = p.ResolveHandler(ctx, aopNS)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.Empty(t, p.Definitions().List())
}

func TestResolveEntity(t *testing.T) {
	ctx := context.Background()
	p := NewPlugins()
	require.NoError(t, p.AddPlugin(ctx, namespaceBundle(t, "tx", txNS, ""), true, false))

	src, err := p.ResolveEntity(ctx, "", txNS+"/tx-2.0.xsd")
	require.NoError(t, err)
	assert.Equal(t, "org/example/tx/tx-2.0.xsd", src.Path)

	src, err = p.ResolveEntity(ctx, txNS, "")
	require.NoError(t, err)
	assert.Equal(t, "org/example/tx/tx-2.5.xsd", src.Path, "public id resolves to the newest schema")

	src, err = p.ResolveEntity(ctx, txNS, "http://elsewhere/tx.dtd")
	require.NoError(t, err)
	assert.Equal(t, "org/example/tx/tx-2.5.xsd", src.Path, "unknown system id falls back to public id")

	_, err = p.ResolveEntity(ctx, txNS, "http://elsewhere/tx.xsd")
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound), "schema locations skip the public id")

	_, err = p.ResolveEntity(ctx, "", "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestResolveEntityCustomPreResolved(t *testing.T) {
	ctx := context.Background()
	p := NewPlugins(WithPreResolved(nil))
	require.NoError(t, p.AddPlugin(ctx, namespaceBundle(t, "tx", txNS, ""), true, false))

	src, err := p.ResolveEntity(ctx, txNS, "http://elsewhere/tx.xsd")
	require.NoError(t, err)
	assert.Equal(t, "org/example/tx/tx-2.5.xsd", src.Path)
}

func TestPrivilegedResolve(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{Name: "editor"})

	var seen []Principal
	var mu sync.Mutex
	act := func(ctx context.Context, b *bundle.Bundle) (*plugin.Plugin, error) {
		p, _ := PrincipalFrom(ctx)
		c, _ := CallerFrom(ctx)
		mu.Lock()
		seen = append(seen, p, c)
		mu.Unlock()
		return plugin.Activate(ctx, b)
	}

	p := NewPlugins(WithExecutor(NewPrivilegedExecutor("registry")), WithActivator(act))
	require.NoError(t, p.AddPlugin(ctx, namespaceBundle(t, "tx", txNS, ""), true, false))

	_, err := p.ResolveHandler(ctx, txNS)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, Principal{Name: "registry", Privileged: true}, seen[0])
	assert.Equal(t, Principal{Name: "editor"}, seen[1])
}

func TestConcurrentResolveAndLifecycle(t *testing.T) {
	ctx := context.Background()
	act := &countingActivator{}
	p := NewPlugins(WithActivator(act.activate))

	const n = 6
	bundles := make([]*bundle.Bundle, n)
	for i := range bundles {
		ns := fmt.Sprintf("http://www.example.org/schema/ns%d", i)
		bundles[i] = namespaceBundle(t, fmt.Sprintf("ns%d", i), ns, "")
		require.NoError(t, p.AddPlugin(ctx, bundles[i], true, false))
	}

	var hits atomic.Int32
	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				ns := fmt.Sprintf("http://www.example.org/schema/ns%d", (w+i)%n)
				if _, err := p.ResolveHandler(ctx, ns); err == nil {
					hits.Add(1)
				}
			}
		}(w)
	}

	// remove the last bundle while lookups run
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.RemovePlugin(bundles[n-1])
	}()
	wg.Wait()

	assert.Positive(t, hits.Load())
	for _, b := range bundles {
		assert.LessOrEqual(t, act.count(b), 1, "bundle %s activated more than once", b)
	}

	_, err := p.ResolveHandler(ctx, fmt.Sprintf("http://www.example.org/schema/ns%d", n-1))
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.Equal(t, 0, p.Stats().InFlight)
}
