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
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRange is returned when a version range cannot be parsed.
var ErrInvalidRange = errors.New("invalid version range")

// Range is a version interval as written in bundle manifests.
//
//	"1.5"        -> [1.5, infinity)
//	"[1.5,2.0)"  -> 1.5 <= v < 2.0
//	"(1.5,2.0]"  -> 1.5 <  v <= 2.0
type Range struct {
	Min          Version
	Max          Version
	MinInclusive bool
	MaxInclusive bool
	// Unbounded is true for the single-version form, which has no upper limit.
	Unbounded bool
}

// ParseRange parses a manifest version range. Surrounding quotes are ignored.
func ParseRange(s string) (Range, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" {
		return Range{}, fmt.Errorf("%w: empty", ErrInvalidRange)
	}

	first := s[0]
	if first != '[' && first != '(' {
		v, err := ParseVersion(s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
		return Range{Min: v, MinInclusive: true, Unbounded: true}, nil
	}

	last := s[len(s)-1]
	if last != ']' && last != ')' {
		return Range{}, fmt.Errorf("%w: missing closing bracket in %q", ErrInvalidRange, s)
	}

	bounds := strings.Split(s[1:len(s)-1], ",")
	if len(bounds) != 2 {
		return Range{}, fmt.Errorf("%w: expected two bounds in %q", ErrInvalidRange, s)
	}

	lo, err := ParseVersion(bounds[0])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	hi, err := ParseVersion(bounds[1])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if lo.Compare(hi) > 0 {
		return Range{}, fmt.Errorf("%w: lower bound %s above upper bound %s", ErrInvalidRange, lo, hi)
	}

	return Range{
		Min:          lo,
		Max:          hi,
		MinInclusive: first == '[',
		MaxInclusive: last == ']',
	}, nil
}

// Includes reports whether v lies within the range.
func (r Range) Includes(v Version) bool {
	c := v.Compare(r.Min)
	if c < 0 || (c == 0 && !r.MinInclusive) {
		return false
	}
	if r.Unbounded {
		return true
	}
	c = v.Compare(r.Max)
	return c < 0 || (c == 0 && r.MaxInclusive)
}

// String renders the range in manifest syntax.
func (r Range) String() string {
	if r.Unbounded {
		return r.Min.String()
	}
	open, closing := "(", ")"
	if r.MinInclusive {
		open = "["
	}
	if r.MaxInclusive {
		closing = "]"
	}
	return fmt.Sprintf("%s%s,%s%s", open, r.Min, r.Max, closing)
}

// IsEmpty reports whether no version can satisfy the range, as in "[1,1)".
func (r Range) IsEmpty() bool {
	if r.Unbounded {
		return false
	}
	c := r.Min.Compare(r.Max)
	return c > 0 || (c == 0 && !(r.MinInclusive && r.MaxInclusive))
}
