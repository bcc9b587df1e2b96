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

package extender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/bundle/bundletest"
	"github.com/nsplugins/nsplugins/pkg/namespace"
	"github.com/nsplugins/nsplugins/pkg/plugin"
)

type addCall struct {
	bundle         *bundle.Bundle
	lazy           bool
	applyCondition bool
}

type fakeTarget struct {
	mu      sync.Mutex
	added   []addCall
	removed []*bundle.Bundle
	err     error
}

func (f *fakeTarget) AddPlugin(_ context.Context, b *bundle.Bundle, lazy, applyCondition bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, addCall{b, lazy, applyCondition})
	return nil
}

func (f *fakeTarget) RemovePlugin(b *bundle.Bundle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, b)
	return true
}

const txNS = "http://www.example.org/schema/tx"

func TestInstallFlags(t *testing.T) {
	tests := []struct {
		name          string
		spec          bundletest.Spec
		wantLazy      bool
		wantCondition bool
	}{
		{
			name:     "lazy without import",
			spec:     bundletest.Spec{SymbolicName: "a", Lazy: true},
			wantLazy: true,
		},
		{
			name: "eager",
			spec: bundletest.Spec{SymbolicName: "b"},
		},
		{
			name:          "lazy with api import",
			spec:          bundletest.Spec{SymbolicName: "c", Lazy: true, ImportPackage: plugin.APIPackage + `;version="[1.0,2.0)"`},
			wantLazy:      true,
			wantCondition: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.spec.Files = bundletest.Namespace(txNS, "tx", "tx")
			b := bundletest.New(t, tt.spec)

			target := &fakeTarget{}
			e := New(target)
			e.Handle(context.Background(), bundle.Event{Type: bundle.Installed, Bundle: b})

			require.Len(t, target.added, 1)
			assert.Same(t, b, target.added[0].bundle)
			assert.Equal(t, tt.wantLazy, target.added[0].lazy)
			assert.Equal(t, tt.wantCondition, target.added[0].applyCondition)
			assert.Equal(t, 1, e.Tracked())
		})
	}
}

func TestIgnoresPlainBundles(t *testing.T) {
	target := &fakeTarget{}
	e := New(target)
	b := bundletest.New(t, bundletest.Spec{SymbolicName: "org.example.plain"})

	e.Handle(context.Background(), bundle.Event{Type: bundle.Installed, Bundle: b})
	e.Handle(context.Background(), bundle.Event{Type: bundle.Uninstalled, Bundle: b})

	assert.Empty(t, target.added)
	assert.Empty(t, target.removed, "untracked bundles are not removed")
}

func TestAddFailureIsNotTracked(t *testing.T) {
	target := &fakeTarget{err: errors.New("activation failed")}
	e := New(target)
	b := bundletest.New(t, bundletest.Spec{SymbolicName: "x", Files: bundletest.Namespace(txNS, "tx", "tx")})

	e.Handle(context.Background(), bundle.Event{Type: bundle.Installed, Bundle: b})
	assert.Zero(t, e.Tracked())
}

func TestRunUntilClosed(t *testing.T) {
	target := &fakeTarget{}
	e := New(target)
	b := bundletest.New(t, bundletest.Spec{SymbolicName: "x", Files: bundletest.Namespace(txNS, "tx", "tx")})

	events := make(chan bundle.Event, 2)
	events <- bundle.Event{Type: bundle.Installed, Bundle: b}
	events <- bundle.Event{Type: bundle.Uninstalled, Bundle: b}
	close(events)

	require.NoError(t, e.Run(context.Background(), events))
	assert.Len(t, target.added, 1)
	assert.Equal(t, []*bundle.Bundle{b}, target.removed)
	assert.Zero(t, e.Tracked())
}

func TestRunStopsOnCancel(t *testing.T) {
	e := New(&fakeTarget{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, make(chan bundle.Event)) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStartAndStopWithPlugins(t *testing.T) {
	ctx := context.Background()
	plugins := namespace.NewPlugins()
	e := New(plugins)

	tx := bundletest.New(t, bundletest.Spec{
		SymbolicName: "org.example.tx",
		Lazy:         true,
		Files:        bundletest.Namespace(txNS, "tx", "tx"),
	})
	e.Start(ctx, []*bundle.Bundle{tx})

	h, err := plugins.ResolveHandler(ctx, txNS)
	require.NoError(t, err)
	assert.Equal(t, txNS, h.NamespaceURI())

	e.Stop()
	assert.Zero(t, e.Tracked())
	_, err = plugins.ResolveHandler(ctx, txNS)
	assert.Error(t, err)
}
