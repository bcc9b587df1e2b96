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

package plugin

import (
	"context"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/registry"
	"github.com/nsplugins/nsplugins/pkg/version"
)

// APIPackage is the package bundles import to declare which handler API
// version they were built against.
const APIPackage = "nsplugins.xml"

// APIVersion is the handler API version this host provides.
var APIVersion = version.NewVersion(1, 2, 0)

// RequiresCompatibilityCheck reports whether b declares a version range
// for APIPackage, which is when its compatibility must be checked before
// activation.
func RequiresCompatibilityCheck(b *bundle.Bundle) bool {
	_, declared, err := b.ImportedPackageRange(APIPackage)
	return declared || err != nil
}

// Compatibility returns a condition that passes bundles whose imported
// APIPackage range includes host. Bundles without a range pass.
func Compatibility(host version.Version) registry.Condition[*bundle.Bundle] {
	return func(_ context.Context, b *bundle.Bundle) (bool, error) {
		r, declared, err := b.ImportedPackageRange(APIPackage)
		if err != nil {
			return false, err
		}
		if !declared {
			return true, nil
		}
		return r.Includes(host), nil
	}
}
