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

package oci

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthClientStaticCredential(t *testing.T) {
	client := newAuthClient("ghcr.io", RemoteOptions{Username: "bot", Password: "s3cret"})
	require.NotNil(t, client.Credential)

	cred, err := client.Credential(context.Background(), "ghcr.io")
	require.NoError(t, err)
	assert.Equal(t, "bot", cred.Username)
	assert.Equal(t, "s3cret", cred.Password)

	other, err := client.Credential(context.Background(), "quay.io")
	require.NoError(t, err)
	assert.Empty(t, other.Username)
}

func TestNewAuthClientUserAgent(t *testing.T) {
	assert.Equal(t, DefaultUserAgent, newAuthClient("ghcr.io", RemoteOptions{}).Header.Get("User-Agent"))
	assert.Equal(t, "nsplugins/v1.0.0",
		newAuthClient("ghcr.io", RemoteOptions{UserAgent: "nsplugins/v1.0.0"}).Header.Get("User-Agent"))
}

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name         string
		opts         RemoteOptions
		wantInsecure bool
	}{
		{"default", RemoteOptions{}, false},
		{"insecure TLS", RemoteOptions{InsecureTLS: true}, true},
		{"plain HTTP ignores TLS", RemoteOptions{PlainHTTP: true, InsecureTLS: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTransport(tt.opts)
			insecure := tr.TLSClientConfig != nil && tr.TLSClientConfig.InsecureSkipVerify
			assert.Equal(t, tt.wantInsecure, insecure)
		})
	}
}

func TestNewRepository(t *testing.T) {
	ref, err := ParseReference("oci://localhost:5000/bundles/tx:2.5.0")
	require.NoError(t, err)

	repo, err := newRepository(ref, RemoteOptions{PlainHTTP: true})
	require.NoError(t, err)
	assert.True(t, repo.PlainHTTP)
	assert.Equal(t, "localhost:5000", repo.Reference.Registry)
	assert.Equal(t, "bundles/tx", repo.Reference.Repository)
}
