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

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/config"
	"github.com/nsplugins/nsplugins/pkg/defaults"
	"github.com/nsplugins/nsplugins/pkg/extender"
	"github.com/nsplugins/nsplugins/pkg/logging"
	"github.com/nsplugins/nsplugins/pkg/namespace"
	"github.com/nsplugins/nsplugins/pkg/oci"
	"github.com/nsplugins/nsplugins/pkg/server"
)

const (
	name           = "nspluginsd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags, e.g.
	// -X "github.com/nsplugins/nsplugins/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Daemon is a wired nspluginsd instance.
type Daemon struct {
	cfg      *config.Config
	plugins  *namespace.Plugins
	extender *extender.Extender
	bundles  []*bundle.Bundle
	server   *server.Server
}

// New pulls the configured artifacts, loads the bundle root and registers
// its namespace bundles. The server is created but not started.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if err := os.MkdirAll(cfg.BundleRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bundle root %s: %w", cfg.BundleRoot, err)
	}

	pullBundles(ctx, cfg)

	opts := []namespace.Option{namespace.WithHostVersion(cfg.Host())}
	if cfg.Principal != "" {
		opts = append(opts, namespace.WithExecutor(namespace.NewPrivilegedExecutor(cfg.Principal)))
	}
	plugins := namespace.NewPlugins(opts...)

	bundles, err := bundle.LoadDir(ctx, cfg.BundleRoot)
	if err != nil {
		return nil, err
	}

	ext := extender.New(plugins)
	ext.Start(ctx, bundles)

	s := server.New(
		server.WithConfig(cfg.ServerConfig()),
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(namespace.NewHandlers(plugins, version).Routes()),
	)

	slog.Info("daemon initialized",
		"bundles", len(bundles),
		"namespaceBundles", ext.Tracked(),
		"namespaces", len(plugins.Definitions().List()))

	return &Daemon{
		cfg:      cfg,
		plugins:  plugins,
		extender: ext,
		bundles:  bundles,
		server:   s,
	}, nil
}

// pullBundles fetches cfg.Pull into the bundle root. A failed pull is
// logged; bundles already on disk are still served.
func pullBundles(ctx context.Context, cfg *config.Config) {
	for _, raw := range cfg.Pull {
		ref, err := oci.ParseReference(raw)
		if err != nil {
			slog.Warn("skipping invalid bundle reference", "reference", raw, "error", err)
			continue
		}
		res, err := oci.Pull(ctx, oci.PullOptions{
			Reference:     ref,
			BundleRoot:    cfg.BundleRoot,
			Replace:       true,
			RemoteOptions: cfg.RemoteOptions(),
		})
		if err != nil {
			slog.Warn("failed to pull bundle", "reference", raw, "error", err)
			continue
		}
		slog.Info("pulled bundle",
			"reference", res.Reference,
			"digest", res.Digest,
			"symbolicName", res.SymbolicName,
			"path", res.Path)
	}
}

// Plugins returns the namespace resolver.
func (d *Daemon) Plugins() *namespace.Plugins {
	return d.plugins
}

// Handler returns the HTTP handler of the daemon's server.
func (d *Daemon) Handler() http.Handler {
	return d.server.Handler()
}

// Addr returns the bound listen address, or nil before the server starts.
func (d *Daemon) Addr() net.Addr {
	return d.server.Addr()
}

// Run serves until ctx is canceled or a signal arrives. Unless watching is
// disabled, bundles added to or removed from the bundle root are
// registered and unregistered while running.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer d.extender.Stop()

	g, gctx := errgroup.WithContext(ctx)

	if !d.cfg.DisableWatch {
		w, err := bundle.NewWatcher(d.cfg.BundleRoot, defaults.WatcherDebounce)
		if err != nil {
			return err
		}
		w.Seed(d.bundles)
		g.Go(func() error {
			return w.Run(gctx)
		})
		g.Go(func() error {
			return d.extender.Run(gctx, w.Events())
		})
	}

	g.Go(func() error {
		// the server exits on signals; take the watcher down with it
		defer cancel()
		return d.server.Run(gctx)
	})

	return g.Wait()
}

// Serve configures logging, wires the daemon from cfg and blocks until
// shutdown.
func Serve(ctx context.Context, cfg *config.Config) error {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, cfg.LogLevel)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"config", cfg.String(),
	)

	d, err := New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize daemon", "error", err)
		return err
	}

	if err := d.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}
