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
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 4 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNegativeComponent = errors.New("version component cannot be negative")
	ErrInvalidQualifier  = errors.New("version qualifier contains invalid characters")
)

// Minimum is the lowest possible version, "0.0.0".
var Minimum = Version{}

// Version is a bundle or schema version in major.minor.micro.qualifier form.
// Missing numeric components are zero, so "2.5" equals "2.5.0".
// The qualifier is compared lexically after the numeric components.
type Version struct {
	Major     int    `json:"major" yaml:"major"`
	Minor     int    `json:"minor" yaml:"minor"`
	Micro     int    `json:"micro" yaml:"micro"`
	Qualifier string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
}

// NewVersion creates a new Version with the specified numeric components.
func NewVersion(major, minor, micro int) Version {
	return Version{
		Major: major,
		Minor: minor,
		Micro: micro,
	}
}

// String returns "major.minor.micro" with ".qualifier" appended when set.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
	if v.Qualifier != "" {
		s += "." + v.Qualifier
	}
	return s
}

// ParseVersion parses a version string into a Version.
// Supported formats: "1", "1.2", "1.2.3", "1.2.3.qualifier", each with an
// optional "v" prefix. Surrounding whitespace is ignored.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	parts := strings.SplitN(s, ".", 4)
	if len(parts) == 4 && strings.Contains(parts[3], ".") {
		// qualifiers may not contain dots
		return Version{}, ErrTooManyComponents
	}

	var v Version
	for i, part := range parts {
		if i == 3 {
			if !validQualifier(part) {
				return Version{}, fmt.Errorf("%w: %q", ErrInvalidQualifier, part)
			}
			v.Qualifier = part
			break
		}

		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if num < 0 {
			return Version{}, fmt.Errorf("%w: %d", ErrNegativeComponent, num)
		}

		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Micro = num
		}
	}

	return v, nil
}

func validQualifier(q string) bool {
	if q == "" {
		return false
	}
	for _, r := range q {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// MustParseVersion parses a version string and panics if parsing fails.
// Only use this for hardcoded strings or in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// ParseOrMinimum parses s, returning Minimum when s is not a valid version.
// Schema file names carry free-form version suffixes; an unparsable one must
// not break default selection.
func ParseOrMinimum(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		return Minimum
	}
	return v
}

// Compare returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmpInt(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpInt(v.Minor, other.Minor)
	case v.Micro != other.Micro:
		return cmpInt(v.Micro, other.Micro)
	default:
		return strings.Compare(v.Qualifier, other.Qualifier)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

// Equals returns true if v and other are identical.
func (v Version) Equals(other Version) bool {
	return v.Compare(other) == 0
}

// EqualsOrNewer returns true if v is equal to or newer than other.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.Compare(other) >= 0
}

// IsNewer returns true if v is strictly newer than other.
func (v Version) IsNewer(other Version) bool {
	return v.Compare(other) > 0
}

// IsValid returns true if all numeric components are non-negative.
func (v Version) IsValid() bool {
	return v.Major >= 0 && v.Minor >= 0 && v.Micro >= 0 &&
		(v.Qualifier == "" || validQualifier(v.Qualifier))
}
