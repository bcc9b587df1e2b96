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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/nsplugins/nsplugins/pkg/namespace"
)

func namespacesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "namespaces",
		EnableShellCompletion: true,
		Usage:                 "List the XML namespaces registered by the bundles",
		Description: `Loads every bundle under the bundle root and lists the namespace
definitions contributed through META-INF/spring.handlers and
META-INF/spring.schemas, with their default schema locations.`,
		Flags: []cli.Flag{
			bundlesFlag(),
			hostVersionFlag(),
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, release, err := loadPlugins(ctx, cmd)
			if err != nil {
				return err
			}
			defer release()

			return writeOutput(ctx, cmd, namespace.NewNamespaceList(p.Definitions().List(), version))
		},
	}
}

func bundlesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "bundles",
		EnableShellCompletion: true,
		Usage:                 "List registered bundles and their activation state",
		Description: `Lists the namespace bundles under the bundle root. Lazy bundles stay
inactive until first used; --activate resolves every registered namespace
first, which surfaces activation failures.`,
		Flags: []cli.Flag{
			bundlesFlag(),
			hostVersionFlag(),
			&cli.BoolFlag{
				Name:  "activate",
				Usage: "Resolve every registered namespace before listing",
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, release, err := loadPlugins(ctx, cmd)
			if err != nil {
				return err
			}
			defer release()

			if cmd.Bool("activate") {
				activateAll(ctx, p)
			}

			return writeOutput(ctx, cmd, namespace.NewBundleList(p, version))
		},
	}
}

// activateAll resolves the handler of every registered namespace. Failures
// are logged; the bundle stays listed as lazy.
func activateAll(ctx context.Context, p *namespace.Plugins) {
	for _, def := range p.Definitions().List() {
		if _, err := p.ResolveHandler(ctx, def.NamespaceURI); err != nil {
			slog.Warn("failed to activate namespace", "namespace", def.NamespaceURI, "error", err)
		}
	}
}

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:                  "catalog",
		EnableShellCompletion: true,
		Usage:                 "Print the XML catalog published by the bundles",
		Description: `Prints the system and public catalog entries mapping schema locations
to bundle:// URIs.`,
		Flags: []cli.Flag{
			bundlesFlag(),
			hostVersionFlag(),
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, release, err := loadPlugins(ctx, cmd)
			if err != nil {
				return err
			}
			defer release()

			return writeOutput(ctx, cmd, namespace.NewCatalogDocument(p.Catalog(), version))
		},
	}
}
