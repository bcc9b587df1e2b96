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
	"log/slog"
)

// Executor runs a resolve call. It changes the context a call runs under,
// never the way providers are queried.
type Executor interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// DirectExecutor runs calls on the caller's context unchanged.
type DirectExecutor struct{}

// Execute calls fn with ctx.
func (DirectExecutor) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Principal identifies who a call runs as.
type Principal struct {
	Name       string `json:"name" yaml:"name"`
	Privileged bool   `json:"privileged" yaml:"privileged"`
}

type principalKey struct{}

type callerKey struct{}

// WithPrincipal returns a context that runs as p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal ctx runs as.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// CallerFrom returns the principal that was in effect before a
// PrivilegedExecutor elevated the call.
func CallerFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(callerKey{}).(Principal)
	return p, ok
}

// PrivilegedExecutor runs calls as the registry owner on behalf of a
// possibly restricted caller. The caller stays available via CallerFrom.
type PrivilegedExecutor struct {
	Owner Principal
}

// NewPrivilegedExecutor returns an executor that elevates calls to owner.
func NewPrivilegedExecutor(owner string) *PrivilegedExecutor {
	return &PrivilegedExecutor{Owner: Principal{Name: owner, Privileged: true}}
}

// Execute calls fn as the owner.
func (e *PrivilegedExecutor) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	caller, ok := PrincipalFrom(ctx)
	if !ok {
		caller = Principal{Name: "anonymous"}
	}
	ctx = context.WithValue(ctx, callerKey{}, caller)
	ctx = WithPrincipal(ctx, e.Owner)

	slog.Debug("running privileged resolve", "owner", e.Owner.Name, "caller", caller.Name)
	return fn(ctx)
}
