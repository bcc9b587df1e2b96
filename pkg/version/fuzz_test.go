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

package version

import (
	"testing"
)

// FuzzParseVersion checks that ParseVersion never panics and round-trips.
func FuzzParseVersion(f *testing.F) {
	for _, seed := range []string{
		"1", "v1", "1.2", "1.2.3", "v1.2.3", "1.2.3.RELEASE", "2.5.0.v20240101-1200",
		"0", "0.0.0", "999.999.999", "", ".", "..", "1.", ".1", "1..2",
		"v", "vv1", "-1", "1.-2", "a.b.c", "1.2.3.4.5", "1.2.3.", "1.2.3.a b",
		"   1.2.3", "1.2.3   ", "1. 2.3",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		v, err := ParseVersion(input)
		if err != nil {
			return
		}

		if !v.IsValid() {
			t.Errorf("ParseVersion(%q) returned invalid version: %+v", input, v)
		}

		s := v.String()
		v2, err := ParseVersion(s)
		if err != nil {
			t.Fatalf("re-parsing %q (from %q) failed: %v", s, input, err)
		}
		if !v.Equals(v2) {
			t.Errorf("round-trip mismatch for %q: %+v != %+v", input, v, v2)
		}
	})
}

// FuzzParseRange checks that ParseRange never panics and that a parsed
// non-empty range includes its inclusive endpoints.
func FuzzParseRange(f *testing.F) {
	for _, seed := range []string{
		"1.5", "[1.5,2)", "(1.5,2]", "[1,1]", "\"[2.5,4)\"", "[", "[]", "[1,2", "[2,1)", "(,)",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		r, err := ParseRange(input)
		if err != nil || r.IsEmpty() {
			return
		}
		if r.MinInclusive && !r.Includes(r.Min) {
			t.Errorf("range %s excludes its inclusive minimum", r)
		}
		if !r.Unbounded && r.MaxInclusive && !r.Includes(r.Max) {
			t.Errorf("range %s excludes its inclusive maximum", r)
		}
	})
}
