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

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/nsplugins/nsplugins/pkg/errors"
	"github.com/nsplugins/nsplugins/pkg/logging"
	"github.com/nsplugins/nsplugins/pkg/oci"
	"github.com/nsplugins/nsplugins/pkg/plugin"
	"github.com/nsplugins/nsplugins/pkg/serializer"
	"github.com/nsplugins/nsplugins/pkg/server"
	"github.com/nsplugins/nsplugins/pkg/version"
)

// Defaults.
const (
	DefaultBundleRoot     = "/var/lib/nsplugins/bundles"
	DefaultPort           = 8080
	DefaultRateLimit      = 100
	DefaultRateLimitBurst = 200
	DefaultLogLevel       = "info"
)

// PathEnv names the environment variable holding the configuration path
// read by nspluginsd.
const PathEnv = "NSPLUGINS_CONFIG"

// Config is the nspluginsd configuration.
type Config struct {
	// BundleRoot is the directory scanned and watched for bundles.
	BundleRoot string `json:"bundleRoot,omitempty" yaml:"bundleRoot,omitempty"`

	// DisableWatch loads bundles once at startup without watching for changes.
	DisableWatch bool `json:"disableWatch,omitempty" yaml:"disableWatch,omitempty"`

	// HostVersion is the plugin API version bundles are checked against.
	// Empty means plugin.APIVersion.
	HostVersion string `json:"hostVersion,omitempty" yaml:"hostVersion,omitempty"`

	// Principal, when set, runs resolution through a privileged executor
	// owned by this principal.
	Principal string `json:"principal,omitempty" yaml:"principal,omitempty"`

	Address        string  `json:"address,omitempty" yaml:"address,omitempty"`
	Port           int     `json:"port,omitempty" yaml:"port,omitempty"`
	RateLimit      float64 `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	RateLimitBurst int     `json:"rateLimitBurst,omitempty" yaml:"rateLimitBurst,omitempty"`

	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// Pull lists oci:// bundle references fetched into BundleRoot at startup.
	Pull []string `json:"pull,omitempty" yaml:"pull,omitempty"`

	// PlainHTTP and InsecureTLS relax registry transport for Pull.
	PlainHTTP   bool `json:"plainHTTP,omitempty" yaml:"plainHTTP,omitempty"`
	InsecureTLS bool `json:"insecureTLS,omitempty" yaml:"insecureTLS,omitempty"`

	// RegistryUsername and RegistryPassword are read from the environment only.
	RegistryUsername string `json:"-" yaml:"-"`
	RegistryPassword string `json:"-" yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BundleRoot:     DefaultBundleRoot,
		Port:           DefaultPort,
		RateLimit:      DefaultRateLimit,
		RateLimitBurst: DefaultRateLimitBurst,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads path (if not empty), fills unset fields with defaults,
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := serializer.FromFile[Config](path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to load configuration", err)
		}
		cfg = loaded
		cfg.applyDefaults()
		slog.Debug("configuration loaded", "path", path)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.BundleRoot == "" {
		c.BundleRoot = d.BundleRoot
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.RateLimit == 0 {
		c.RateLimit = d.RateLimit
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = d.RateLimitBurst
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("NSPLUGINS_BUNDLE_ROOT"); v != "" {
		c.BundleRoot = v
	}
	if v := os.Getenv("NSPLUGINS_ADDRESS"); v != "" {
		c.Address = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid PORT", err,
				map[string]any{"value": v})
		}
		c.Port = port
	}
	if v := os.Getenv("NSPLUGINS_HOST_VERSION"); v != "" {
		c.HostVersion = v
	}
	if v := os.Getenv("NSPLUGINS_PRINCIPAL"); v != "" {
		c.Principal = v
	}
	if v := os.Getenv("NSPLUGINS_DISABLE_WATCH"); v != "" {
		disable, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid NSPLUGINS_DISABLE_WATCH", err,
				map[string]any{"value": v})
		}
		c.DisableWatch = disable
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	c.RegistryUsername = os.Getenv("NSPLUGINS_REGISTRY_USERNAME")
	c.RegistryPassword = os.Getenv("NSPLUGINS_REGISTRY_PASSWORD")
	return nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BundleRoot) == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "bundle root is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "port out of range",
			map[string]any{"port": c.Port})
	}
	if c.RateLimit < 0 || c.RateLimitBurst < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "rate limits cannot be negative")
	}
	if c.HostVersion != "" {
		if _, err := version.ParseVersion(c.HostVersion); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid host version", err,
				map[string]any{"hostVersion": c.HostVersion})
		}
	}
	if !logging.IsValidLevel(c.LogLevel) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "invalid log level",
			map[string]any{"logLevel": c.LogLevel})
	}
	for _, ref := range c.Pull {
		if _, err := oci.ParseReference(ref); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid pull reference", err,
				map[string]any{"reference": ref})
		}
	}
	return nil
}

// Host returns the plugin API version offered to bundles.
func (c *Config) Host() version.Version {
	if c.HostVersion == "" {
		return plugin.APIVersion
	}
	return version.MustParseVersion(c.HostVersion)
}

// ServerConfig returns the HTTP server configuration.
func (c *Config) ServerConfig() *server.Config {
	sc := server.NewConfig()
	sc.Address = c.Address
	sc.Port = c.Port
	sc.RateLimit = rate.Limit(c.RateLimit)
	sc.RateLimitBurst = c.RateLimitBurst
	return sc
}

// RemoteOptions returns the registry transport options for Pull.
func (c *Config) RemoteOptions() oci.RemoteOptions {
	return oci.RemoteOptions{
		PlainHTTP:   c.PlainHTTP,
		InsecureTLS: c.InsecureTLS,
		Username:    c.RegistryUsername,
		Password:    c.RegistryPassword,
	}
}

// String renders the configuration for logs.
func (c *Config) String() string {
	return fmt.Sprintf("bundleRoot=%s watch=%t address=%s port=%d principal=%q logLevel=%s pull=%d",
		c.BundleRoot, !c.DisableWatch, c.Address, c.Port, c.Principal, c.LogLevel, len(c.Pull))
}
