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
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nsplugins/nsplugins/pkg/namespace"
	"github.com/nsplugins/nsplugins/pkg/plugin"
)

func resolveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "resolve",
		EnableShellCompletion: true,
		Usage:                 "Resolve a namespace handler or a schema entity",
		Commands: []*cli.Command{
			resolveHandlerCmd(),
			resolveEntityCmd(),
		},
	}
}

func resolveHandlerCmd() *cli.Command {
	return &cli.Command{
		Name:  "handler",
		Usage: "Resolve the handler registered for a namespace URI",
		Description: `Activates the bundle owning the namespace if needed and reports the
handler bound to it.

# Examples

  nsplugins resolve handler --uri http://www.example.org/schema/tx`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "uri",
				Aliases:  []string{"u"},
				Required: true,
				Usage:    "Namespace URI",
			},
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

			uri := cmd.String("uri")
			h, err := p.ResolveHandler(ctx, uri)
			if err != nil {
				return fmt.Errorf("failed to resolve handler for %q: %w", uri, err)
			}

			return writeOutput(ctx, cmd, namespace.NewHandlerResolution(h, version))
		},
	}
}

func resolveEntityCmd() *cli.Command {
	return &cli.Command{
		Name:  "entity",
		Usage: "Resolve a schema by system id or public id",
		Description: `Looks up the schema published for a system id, falling back to the
public id. With --raw the schema document itself is written instead of the
resolution.

# Examples

  nsplugins resolve entity --system-id http://www.example.org/schema/tx/tx.xsd
  nsplugins resolve entity --system-id http://www.example.org/schema/tx/tx.xsd --raw -o tx.xsd`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "system-id",
				Usage: "System id (schema location)",
			},
			&cli.StringFlag{
				Name:  "public-id",
				Usage: "Public id",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Write the schema document instead of the resolution",
			},
			bundlesFlag(),
			hostVersionFlag(),
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			publicID, systemID := cmd.String("public-id"), cmd.String("system-id")
			if publicID == "" && systemID == "" {
				return fmt.Errorf("--system-id or --public-id is required")
			}

			p, release, err := loadPlugins(ctx, cmd)
			if err != nil {
				return err
			}
			defer release()

			src, err := p.ResolveEntity(ctx, publicID, systemID)
			if err != nil {
				return fmt.Errorf("failed to resolve entity: %w", err)
			}

			if cmd.Bool("raw") {
				return writeSchema(src, cmd.String("output"))
			}
			return writeOutput(ctx, cmd, namespace.NewEntityResolution(src, version))
		},
	}
}

// writeSchema copies the schema to path, or stdout when path is empty.
func writeSchema(src *plugin.InputSource, path string) error {
	rc, err := src.Open()
	if err != nil {
		return fmt.Errorf("failed to open schema %s: %w", src.Path, err)
	}
	defer rc.Close()

	var out io.Writer = os.Stdout
	if path = strings.TrimSpace(path); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("failed to close output file", "path", path, "error", err)
			}
		}()
		out = f
	}

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return nil
}
