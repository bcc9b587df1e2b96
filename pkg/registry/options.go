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

import "log/slog"

type options[K comparable] struct {
	name      string
	condition Condition[K]
	logger    *slog.Logger
}

// Option configures a Registry.
type Option[K comparable] func(*options[K])

// WithName sets the name reported in logs and metrics.
func WithName[K comparable](name string) Option[K] {
	return func(o *options[K]) {
		if name != "" {
			o.name = name
		}
	}
}

// WithCondition sets the compatibility condition checked before activating
// lazy keys registered with applyCondition set. Without a condition those
// keys are activated unconditionally.
func WithCondition[K comparable](c Condition[K]) Option[K] {
	return func(o *options[K]) {
		o.condition = c
	}
}

// WithLogger sets the logger. The slog default is used otherwise.
func WithLogger[K comparable](l *slog.Logger) Option[K] {
	return func(o *options[K]) {
		o.logger = l
	}
}
