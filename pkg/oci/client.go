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
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// DefaultUserAgent is sent to registries when RemoteOptions sets none.
const DefaultUserAgent = "nsplugins"

// RemoteOptions configures the registry connection.
type RemoteOptions struct {
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
	// Username and Password, when set, take precedence over the Docker
	// credential store.
	Username string
	Password string
	// UserAgent overrides DefaultUserAgent.
	UserAgent string
}

func (o RemoteOptions) userAgent() string {
	if o.UserAgent == "" {
		return DefaultUserAgent
	}
	return o.UserAgent
}

func newRepository(ref *Reference, opts RemoteOptions) (*remote.Repository, error) {
	host := stripProtocol(ref.Registry)
	repo, err := remote.NewRepository(host + "/" + ref.Repository)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote repository: %w", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = newAuthClient(host, opts)
	return repo, nil
}

// stripProtocol removes an http:// or https:// prefix from a registry host.
func stripProtocol(registry string) string {
	for _, scheme := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(registry, scheme); ok {
			return rest
		}
	}
	return registry
}

func newTransport(opts RemoteOptions) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.PlainHTTP || !opts.InsecureTLS {
		return transport
	}
	cfg := transport.TLSClientConfig
	if cfg == nil {
		cfg = &tls.Config{}
	}
	cfg.InsecureSkipVerify = true //nolint:gosec
	transport.TLSClientConfig = cfg
	return transport
}

// newAuthClient resolves credentials for host from opts first and the
// Docker credential store second. Anonymous access is used when neither
// has any.
func newAuthClient(host string, opts RemoteOptions) *auth.Client {
	client := &auth.Client{
		Client: &http.Client{Transport: newTransport(opts)},
		Cache:  auth.NewCache(),
		Header: http.Header{"User-Agent": {opts.userAgent()}},
	}

	switch {
	case opts.Username != "" || opts.Password != "":
		client.Credential = auth.StaticCredential(host, auth.Credential{
			Username: opts.Username,
			Password: opts.Password,
		})
	default:
		if store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{}); err == nil {
			client.Credential = credentials.Credential(store)
		}
	}
	return client
}
