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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"BundleLoadTimeout", BundleLoadTimeout, time.Second, time.Minute},
		{"WatcherDebounce", WatcherDebounce, 10 * time.Millisecond, 5 * time.Second},
		{"ResolveHandlerTimeout", ResolveHandlerTimeout, 5 * time.Second, time.Minute},
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 60 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},
		{"OCIPullTimeout", OCIPullTimeout, 30 * time.Second, 10 * time.Minute},
		{"ConfigMapWriteTimeout", ConfigMapWriteTimeout, 10 * time.Second, time.Minute},
		{"ConfigMapReadTimeout", ConfigMapReadTimeout, time.Second, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s = %v, below minimum %v", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s = %v, above maximum %v", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestTimeoutRelationships(t *testing.T) {
	if ServerReadHeaderTimeout >= ServerReadTimeout {
		t.Errorf("ServerReadHeaderTimeout (%v) should be less than ServerReadTimeout (%v)",
			ServerReadHeaderTimeout, ServerReadTimeout)
	}
	if ResolveHandlerTimeout >= ServerWriteTimeout {
		t.Errorf("ResolveHandlerTimeout (%v) should be less than ServerWriteTimeout (%v)",
			ResolveHandlerTimeout, ServerWriteTimeout)
	}
	if BundleLoadConcurrency < 1 {
		t.Error("BundleLoadConcurrency must be positive")
	}
}
