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

package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nsplugins/nsplugins/pkg/errors"
)

// Activator turns a registered key into a usable provider value.
// It is invoked at most once per registration of a key.
type Activator[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Condition decides whether a lazy key may be activated at all.
// An error or a panic counts as "not satisfied".
type Condition[K comparable] func(ctx context.Context, key K) (bool, error)

// Operation queries a single provider. ok reports whether the provider
// produced a result; a false ok moves the query on to the next provider.
type Operation[V, R any] func(ctx context.Context, provider V) (result R, ok bool, err error)

type state uint8

const (
	statePending state = iota
	stateReady
	stateRejected
	stateFailed
)

// entry is one registration of a key. A re-added key gets a new entry, so
// stale promotions and cleanups can be told apart by pointer identity.
type entry[K comparable, V any] struct {
	key            K
	checkCondition bool
	removed        atomic.Bool

	once  sync.Once
	state state
	value V
}

// Registry holds providers keyed by K in two stores: active entries that
// are ready for use, and lazy entries that are activated on first need.
//
// Apply never takes a registry-wide lock. Promotions performed while Apply
// calls overlap are recorded in a queue and reconciled by the last call to
// leave.
type Registry[K comparable, V any] struct {
	name      string
	activator Activator[K, V]
	condition Condition[K]
	logger    *slog.Logger

	active sync.Map // K -> *entry[K, V]
	lazy   sync.Map // K -> *entry[K, V]

	// mu guards calls and promoted.
	mu       sync.Mutex
	calls    int
	promoted []*entry[K, V]

	// writeMu serializes Add, Remove and Clear against each other.
	writeMu sync.Mutex
}

// New creates an empty Registry that activates keys with activator.
// It panics if activator is nil.
func New[K comparable, V any](activator Activator[K, V], opts ...Option[K]) *Registry[K, V] {
	if activator == nil {
		panic("registry: nil activator")
	}

	cfg := options[K]{name: "default"}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Registry[K, V]{
		name:      cfg.name,
		activator: activator,
		condition: cfg.condition,
		logger:    cfg.logger,
	}
}

// Name returns the registry name used in logs and metrics.
func (r *Registry[K, V]) Name() string {
	return r.name
}

func (r *Registry[K, V]) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Add registers key. A non-lazy key is activated immediately and the
// activation error, if any, is returned. A lazy key is only recorded;
// applyCondition selects whether the registry condition must pass before
// it is activated. Adding a key that is already registered replaces the
// previous registration.
func (r *Registry[K, V]) Add(ctx context.Context, key K, lazy, applyCondition bool) error {
	e := &entry[K, V]{key: key, checkCondition: applyCondition}

	if !lazy {
		var err error
		e.once.Do(func() {
			e.state, err = r.activate(ctx, e, "eager")
		})
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeActivationFailed,
				fmt.Sprintf("failed to activate %v", key), err,
				map[string]any{"registry": r.name, "key": fmt.Sprint(key)})
		}
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.retire(key)
	if lazy {
		r.lazy.Store(key, e)
	} else {
		r.active.Store(key, e)
	}

	r.log().Debug("provider registered",
		"registry", r.name, "key", fmt.Sprint(key), "lazy", lazy, "applyCondition", applyCondition)
	return nil
}

// Remove unregisters key and reports whether it was registered. Once
// Remove returns, no Apply call that starts afterwards can reach the key.
// Calls already in flight may finish using it.
func (r *Registry[K, V]) Remove(key K) bool {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	found := r.retire(key)
	if found {
		r.log().Debug("provider removed", "registry", r.name, "key", fmt.Sprint(key))
	}
	return found
}

// retire marks every record of key removed and drops it from all stores.
// The caller holds writeMu.
func (r *Registry[K, V]) retire(key K) bool {
	found := false
	if v, ok := r.active.LoadAndDelete(key); ok {
		v.(*entry[K, V]).removed.Store(true)
		found = true
	}
	if v, ok := r.lazy.LoadAndDelete(key); ok {
		v.(*entry[K, V]).removed.Store(true)
		found = true
	}

	r.mu.Lock()
	kept := r.promoted[:0]
	for _, e := range r.promoted {
		if e.key == key {
			e.removed.Store(true)
			found = true
			continue
		}
		kept = append(kept, e)
	}
	clear(r.promoted[len(kept):])
	r.promoted = kept
	r.mu.Unlock()

	return found
}

// Clear removes every registration.
func (r *Registry[K, V]) Clear() {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	drain := func(m *sync.Map) {
		m.Range(func(k, v any) bool {
			v.(*entry[K, V]).removed.Store(true)
			m.CompareAndDelete(k, v)
			return true
		})
	}
	drain(&r.active)
	drain(&r.lazy)

	r.mu.Lock()
	for _, e := range r.promoted {
		e.removed.Store(true)
	}
	r.promoted = nil
	r.mu.Unlock()

	r.log().Debug("registry cleared", "registry", r.name)
}

// Apply runs op against the providers of r and returns the first result
// with ok set. Active providers are queried first, then lazy ones, which
// are activated as they are reached. An error returned by op stops the
// query and is returned unchanged.
func Apply[K comparable, V, R any](ctx context.Context, r *Registry[K, V], op Operation[V, R]) (result R, ok bool, err error) {
	r.enter()
	defer func() {
		r.exit()
		observeApply(r.name, ok, err)
	}()

	r.active.Range(func(k, v any) bool {
		e := v.(*entry[K, V])
		if e.removed.Load() {
			r.active.CompareAndDelete(k, e)
			return true
		}
		result, ok, err = op(ctx, e.value)
		return !ok && err == nil
	})
	if ok || err != nil {
		return result, ok, err
	}

	r.lazy.Range(func(_, v any) bool {
		target := r.promote(ctx, v.(*entry[K, V]))
		if target == nil {
			return true
		}
		result, ok, err = op(ctx, target.value)
		return !ok && err == nil
	})
	if ok || err != nil {
		return result, ok, err
	}

	var zero R
	return zero, false, nil
}

// promote activates a lazy entry and publishes it in the active store.
// It returns the entry to query, or nil when the key is unusable.
func (r *Registry[K, V]) promote(ctx context.Context, e *entry[K, V]) *entry[K, V] {
	if e.removed.Load() {
		return nil
	}

	e.once.Do(func() {
		e.state = r.materialize(ctx, e)
	})
	if e.state != stateReady {
		// rejected and failed entries are never reconsidered
		r.lazy.CompareAndDelete(e.key, e)
		return nil
	}

	// A removed entry from an earlier registration of the key may still
	// hold the active slot; drop it and publish e once more.
	for range 2 {
		actual, loaded := r.active.LoadOrStore(e.key, e)
		if !loaded {
			r.mu.Lock()
			r.promoted = append(r.promoted, e)
			r.mu.Unlock()
			promotionsTotal.WithLabelValues(r.name).Inc()
		}

		target := actual.(*entry[K, V])
		if !target.removed.Load() {
			return target
		}
		r.active.CompareAndDelete(e.key, target)
		if target == e || e.removed.Load() {
			return nil
		}
	}
	return nil
}

// materialize checks the condition when required and activates the key.
func (r *Registry[K, V]) materialize(ctx context.Context, e *entry[K, V]) state {
	if e.checkCondition && r.condition != nil && !r.pass(ctx, e.key) {
		conditionRejections.WithLabelValues(r.name).Inc()
		r.log().Info("provider rejected by compatibility condition",
			"registry", r.name, "key", fmt.Sprint(e.key))
		return stateRejected
	}
	st, _ := r.activate(ctx, e, "lazy")
	return st
}

// pass evaluates the condition, treating errors and panics as failure.
func (r *Registry[K, V]) pass(ctx context.Context, key K) (passed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log().Error("compatibility condition panicked",
				"registry", r.name, "key", fmt.Sprint(key), "panic", rec)
			passed = false
		}
	}()

	ok, err := r.condition(ctx, key)
	if err != nil {
		r.log().Warn("compatibility condition failed",
			"registry", r.name, "key", fmt.Sprint(key), "error", err)
		return false
	}
	return ok
}

// activate runs the activator and stores the value in e. The caller's
// cancellation is not propagated since the result is shared with every
// other caller of the entry.
func (r *Registry[K, V]) activate(ctx context.Context, e *entry[K, V], mode string) (st state, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("activator panicked: %v", rec)
			st = stateFailed
		}
		result := "success"
		if st != stateReady {
			result = "failure"
			r.log().Warn("provider activation failed",
				"registry", r.name, "key", fmt.Sprint(e.key), "mode", mode, "error", err)
		}
		activationsTotal.WithLabelValues(r.name, mode, result).Inc()
	}()

	value, err := r.activator(context.WithoutCancel(ctx), e.key)
	if err != nil {
		return stateFailed, err
	}
	e.value = value
	return stateReady, nil
}
