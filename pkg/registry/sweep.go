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

// enter records a running Apply call.
func (r *Registry[K, V]) enter() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	applyInFlight.WithLabelValues(r.name).Inc()
}

// exit records the end of an Apply call. The last call to leave reconciles
// the promotions made while calls overlapped: a promoted entry is dropped
// from the lazy store, or from the active store too when a concurrent
// removal already took it out of the lazy one.
func (r *Registry[K, V]) exit() {
	applyInFlight.WithLabelValues(r.name).Dec()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls--
	if r.calls > 0 || len(r.promoted) == 0 {
		return
	}

	for _, e := range r.promoted {
		if !r.lazy.CompareAndDelete(e.key, e) {
			r.active.CompareAndDelete(e.key, e)
		}
	}
	clear(r.promoted)
	r.promoted = r.promoted[:0]
	cleanupSweeps.WithLabelValues(r.name).Inc()
}
