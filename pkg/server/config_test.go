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
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Name != DefaultName {
		t.Errorf("Name = %q, want %q", cfg.Name, DefaultName)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.RateLimit != DefaultRateLimit || cfg.RateLimitBurst != DefaultRateLimitBurst {
		t.Errorf("rate limit = %v/%d", cfg.RateLimit, cfg.RateLimitBurst)
	}
	if cfg.ReadTimeout != 10*time.Second || cfg.WriteTimeout != 30*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNewConfigEnvironment(t *testing.T) {
	tests := []struct {
		name         string
		port         string
		shutdown     string
		wantPort     int
		wantShutdown time.Duration
	}{
		{"overrides", "9090", "45", 9090, 45 * time.Second},
		{"malformed ignored", "invalid", "soon", DefaultPort, 30 * time.Second},
		{"non-positive ignored", "-1", "0", DefaultPort, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPort, tt.port)
			t.Setenv(EnvShutdownTimeout, tt.shutdown)

			cfg := NewConfig()
			if cfg.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", cfg.Port, tt.wantPort)
			}
			if cfg.ShutdownTimeout != tt.wantShutdown {
				t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, tt.wantShutdown)
			}
		})
	}
}

func TestConfigAddr(t *testing.T) {
	tests := []struct {
		address string
		port    int
		want    string
	}{
		{"", 8080, ":8080"},
		{"127.0.0.1", 9191, "127.0.0.1:9191"},
		{"::1", 0, "[::1]:0"},
	}
	for _, tt := range tests {
		cfg := &Config{Address: tt.address, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"ephemeral port", func(c *Config) { c.Port = 0 }, false},
		{"port too large", func(c *Config) { c.Port = 70000 }, true},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, true},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }, true},
		{"unlimited without burst", func(c *Config) { c.RateLimit, c.RateLimitBurst = rate.Inf, 0 }, false},
		{"no shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
