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

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/config"
	"github.com/nsplugins/nsplugins/pkg/extender"
	"github.com/nsplugins/nsplugins/pkg/namespace"
	"github.com/nsplugins/nsplugins/pkg/plugin"
	ver "github.com/nsplugins/nsplugins/pkg/version"
)

func bundlesFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "bundles",
		Aliases: []string{"b"},
		Value:   config.DefaultBundleRoot,
		Usage:   "Bundle root directory holding bundle directories and archives",
		Sources: cli.EnvVars("NSPLUGINS_BUNDLE_ROOT"),
	}
}

func hostVersionFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "host-version",
		Value: plugin.APIVersion.String(),
		Usage: "Plugin API version bundles are checked against",
	}
}

// loadPlugins registers the namespace bundles under --bundles. The returned
// func releases them.
func loadPlugins(ctx context.Context, cmd *cli.Command) (*namespace.Plugins, func(), error) {
	host, err := ver.ParseVersion(cmd.String("host-version"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --host-version: %w", err)
	}

	root := cmd.String("bundles")
	bundles, err := bundle.LoadDir(ctx, root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bundles from %q: %w", root, err)
	}

	p := namespace.NewPlugins(namespace.WithHostVersion(host))
	ext := extender.New(p)
	ext.Start(ctx, bundles)

	slog.Debug("bundles loaded",
		"root", root,
		"bundles", len(bundles),
		"namespaceBundles", ext.Tracked())

	return p, ext.Stop, nil
}
