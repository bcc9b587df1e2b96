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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nsplugins/nsplugins/pkg/oci"
)

func plainHTTPFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "plain-http",
		Usage: "Use HTTP instead of HTTPS for the OCI registry (for local development)",
	}
}

func insecureTLSFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "insecure-tls",
		Usage: "Skip TLS certificate verification for the OCI registry",
	}
}

func usernameFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "username",
		Usage:   "Registry user name; the Docker credential store is used when unset",
		Sources: cli.EnvVars("NSPLUGINS_REGISTRY_USERNAME"),
	}
}

func passwordFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "password",
		Usage:   "Registry password or token",
		Sources: cli.EnvVars("NSPLUGINS_REGISTRY_PASSWORD"),
	}
}

func remoteOptions(cmd *cli.Command) oci.RemoteOptions {
	return oci.RemoteOptions{
		PlainHTTP:   cmd.Bool("plain-http"),
		InsecureTLS: cmd.Bool("insecure-tls"),
		Username:    cmd.String("username"),
		Password:    cmd.String("password"),
		UserAgent:   name + "/" + version,
	}
}

func pullCmd() *cli.Command {
	return &cli.Command{
		Name:                  "pull",
		EnableShellCompletion: true,
		Usage:                 "Install a bundle artifact from an OCI registry",
		ArgsUsage:             "oci://REGISTRY/REPOSITORY[:TAG]",
		Description: fmt.Sprintf(`Pulls a bundle artifact and installs it under the bundle root. A missing
tag means %q. A running nspluginsd watching the same root registers the
bundle as soon as it lands.

# Examples

  nsplugins pull oci://ghcr.io/example/bundles/tx:1.0.0 --bundles ./bundles
  nsplugins pull oci://localhost:5000/bundles/tx --plain-http --replace`, oci.DefaultTag),
		Flags: []cli.Flag{
			bundlesFlag(),
			&cli.BoolFlag{
				Name:  "replace",
				Usage: "Overwrite an installed bundle with the same name",
			},
			plainHTTPFlag(),
			insecureTLSFlag(),
			usernameFlag(),
			passwordFlag(),
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ref, err := referenceArg(cmd, 0)
			if err != nil {
				return err
			}

			res, err := oci.Pull(ctx, oci.PullOptions{
				Reference:     ref,
				BundleRoot:    cmd.String("bundles"),
				Replace:       cmd.Bool("replace"),
				RemoteOptions: remoteOptions(cmd),
			})
			if err != nil {
				return fmt.Errorf("failed to pull %s: %w", ref, err)
			}
			return writeOutput(ctx, cmd, res)
		},
	}
}

func pushCmd() *cli.Command {
	return &cli.Command{
		Name:                  "push",
		EnableShellCompletion: true,
		Usage:                 "Publish a bundle directory or archive to an OCI registry",
		ArgsUsage:             "PATH oci://REGISTRY/REPOSITORY:TAG",
		Description: `Packs a bundle directory or .jar/.zip archive as a single-layer OCI
artifact and pushes it. The bundle symbolic name and version are recorded
as manifest annotations.

# Examples

  nsplugins push ./tx oci://ghcr.io/example/bundles/tx:1.0.0
  nsplugins push ./tx.jar oci://localhost:5000/bundles/tx:dev --plain-http \
    --annotation org.opencontainers.image.source=https://github.com/example/tx`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "annotation",
				Usage: "Manifest annotation (format: key=value, can be repeated)",
			},
			&cli.StringFlag{
				Name:  "reproducible-timestamp",
				Usage: "Fixed RFC 3339 creation time for reproducible artifacts",
			},
			plainHTTPFlag(),
			insecureTLSFlag(),
			usernameFlag(),
			passwordFlag(),
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().Get(0)
			if path == "" {
				return fmt.Errorf("bundle path is required")
			}
			ref, err := referenceArg(cmd, 1)
			if err != nil {
				return err
			}
			annotations, err := parseAnnotations(cmd.StringSlice("annotation"))
			if err != nil {
				return err
			}

			res, err := oci.Push(ctx, oci.PushOptions{
				Path:                  path,
				Reference:             ref,
				Annotations:           annotations,
				ReproducibleTimestamp: cmd.String("reproducible-timestamp"),
				RemoteOptions:         remoteOptions(cmd),
			})
			if err != nil {
				return fmt.Errorf("failed to push %s: %w", path, err)
			}
			return writeOutput(ctx, cmd, res)
		},
	}
}

// referenceArg parses the positional argument at i as an oci:// reference.
func referenceArg(cmd *cli.Command, i int) (*oci.Reference, error) {
	raw := cmd.Args().Get(i)
	if raw == "" {
		return nil, fmt.Errorf("OCI reference is required (format: %sREGISTRY/REPOSITORY[:TAG])", oci.URIScheme)
	}
	ref, err := oci.ParseReference(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid OCI reference %q: %w", raw, err)
	}
	return ref, nil
}

// parseAnnotations parses key=value pairs.
func parseAnnotations(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid annotation %q (format: key=value)", v)
		}
		out[key] = value
	}
	return out, nil
}
