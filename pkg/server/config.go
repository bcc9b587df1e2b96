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

package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/nsplugins/nsplugins/pkg/defaults"
)

// Defaults used by NewConfig.
const (
	DefaultName                      = "server"
	DefaultPort                      = 8080
	DefaultRateLimit      rate.Limit = 100
	DefaultRateLimitBurst            = 200
)

// Environment variables read by NewConfig.
const (
	EnvPort = "PORT"
	// EnvShutdownTimeout should match the pod's termination grace period.
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT_SECONDS"
)

// Config holds server configuration
type Config struct {
	Name    string
	Version string

	// Handlers are the API routes, wrapped with middleware.
	Handlers map[string]http.HandlerFunc

	Address string
	Port    int

	// RateLimit is in requests per second; rate.Inf disables limiting.
	RateLimit      rate.Limit
	RateLimitBurst int

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// NewConfig returns a Config with defaults and environment overrides.
// Malformed or non-positive environment values are ignored.
func NewConfig() *Config {
	cfg := &Config{
		Name:              DefaultName,
		Version:           "undefined",
		Port:              DefaultPort,
		RateLimit:         DefaultRateLimit,
		RateLimitBurst:    DefaultRateLimitBurst,
		ReadTimeout:       defaults.ServerReadTimeout,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		WriteTimeout:      defaults.ServerWriteTimeout,
		IdleTimeout:       defaults.ServerIdleTimeout,
		ShutdownTimeout:   defaults.ServerShutdownTimeout,
	}
	if port, ok := positiveEnv(EnvPort); ok {
		cfg.Port = port
	}
	if seconds, ok := positiveEnv(EnvShutdownTimeout); ok {
		cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
	}
	return cfg
}

func positiveEnv(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid environment value", "key", key, "value", raw)
		return 0, false
	}
	return n, true
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit %v is negative", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateLimit != rate.Inf && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("rate limit burst %d must be positive", c.RateLimitBurst))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout %v must be positive", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}
