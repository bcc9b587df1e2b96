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

package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsplugins/nsplugins/pkg/version"
)

func TestTargetNamespace(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    string
		wantErr bool
	}{
		{
			name: "prefixed schema",
			doc: `<?xml version="1.0" encoding="UTF-8"?>
<!-- tx -->
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema"
            targetNamespace=" http://www.example.org/schema/tx ">
  <xsd:element name="advice"/>
</xsd:schema>`,
			want: "http://www.example.org/schema/tx",
		},
		{name: "no target namespace", doc: `<schema/>`, want: ""},
		{name: "empty document", doc: `<?xml version="1.0"?>`, wantErr: true},
		{name: "garbage", doc: `<schema targetNamespace="x`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TargetNamespace(strings.NewReader(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, version.NewVersion(2, 5, 0), VersionOf("org/example/spring-tx-2.5.xsd"))
	assert.Equal(t, version.Minimum, VersionOf("org/example/spring-tx.xsd"))
	assert.Equal(t, version.Minimum, VersionOf("org/example/spring-tx-2,5.xsd"), "unparsable suffix")
	assert.True(t, IsVersioned("tx-3.0.xsd"))
	assert.False(t, IsVersioned("tx.xsd"))
}

func TestDefaultLocation(t *testing.T) {
	assert.Equal(t, "http://x/tx.xsd", DefaultLocation([]string{
		"http://x/tx-2.5.xsd", "http://x/tx.xsd", "http://x/tx-2.0.xsd",
	}))
	assert.Equal(t, "http://x/tx-2.0.xsd", DefaultLocation([]string{
		"http://x/tx-2.5.xsd", "http://x/tx-2.0.xsd",
	}))
	assert.Empty(t, DefaultLocation(nil))
}

func TestDefaultURI(t *testing.T) {
	assert.Equal(t, "a/tx-10.0.xsd", DefaultURI([]string{"a/tx-2.5.xsd", "a/tx-10.0.xsd", "a/tx.xsd"}))
	assert.Equal(t, "a/tx.xsd", DefaultURI([]string{"a/tx.xsd"}))
	assert.Empty(t, DefaultURI(nil))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "tx", Prefix("http://www.example.org/schema/tx"))
	assert.Empty(t, Prefix("urn:example"))
	assert.Empty(t, Prefix("/"))
}
