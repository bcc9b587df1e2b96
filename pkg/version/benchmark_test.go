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

func BenchmarkParseVersion(b *testing.B) {
	tests := []string{
		"1",
		"v2",
		"1.2",
		"1.2.3",
		"1.2.3.RELEASE",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseVersion(tests[i%len(tests)])
	}
}

func BenchmarkParseRange(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseRange("[2.5,4)")
	}
}

func BenchmarkRangeIncludes(b *testing.B) {
	r := Range{Min: NewVersion(2, 5, 0), Max: NewVersion(4, 0, 0), MinInclusive: true}
	v := NewVersion(3, 1, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Includes(v)
	}
}

func BenchmarkCompareQualifier(b *testing.B) {
	v1 := MustParseVersion("1.2.3.RELEASE")
	v2 := MustParseVersion("1.2.3.M1")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = v1.Compare(v2)
	}
}

func BenchmarkVersionString(b *testing.B) {
	v := Version{Major: 1, Minor: 2, Micro: 3, Qualifier: "RELEASE"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = v.String()
	}
}
