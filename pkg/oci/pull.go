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
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"

	"github.com/nsplugins/nsplugins/pkg/bundle"
	"github.com/nsplugins/nsplugins/pkg/defaults"
	apperrors "github.com/nsplugins/nsplugins/pkg/errors"
)

// PullOptions configures pulling a bundle.
type PullOptions struct {
	// Reference is the artifact to pull. A missing tag means DefaultTag.
	Reference *Reference
	// BundleRoot is the directory the bundle is installed into.
	BundleRoot string
	// Replace overwrites an installed bundle with the same file name.
	Replace bool

	RemoteOptions
}

// PullResult describes an installed bundle.
type PullResult struct {
	Digest       string `json:"digest" yaml:"digest"`
	Reference    string `json:"reference" yaml:"reference"`
	Path         string `json:"path" yaml:"path"`
	SymbolicName string `json:"symbolicName" yaml:"symbolicName"`
	Version      string `json:"version" yaml:"version"`
}

// Pull fetches a bundle artifact and installs it under opts.BundleRoot.
func Pull(ctx context.Context, opts PullOptions) (*PullResult, error) {
	if opts.Reference == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	if opts.BundleRoot == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "bundle root is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.OCIPullTimeout)
	defer cancel()

	repo, err := newRepository(opts.Reference, opts.RemoteOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to connect to registry", err)
	}

	tag := opts.Reference.TagOrDefault()
	slog.Info("pulling bundle", "reference", opts.Reference.WithTag(tag).String(), "root", opts.BundleRoot)

	res, err := pull(ctx, repo, tag, opts.BundleRoot, opts.Replace)
	if err != nil {
		return nil, err
	}
	res.Reference = opts.Reference.WithTag(tag).String()

	slog.Info("bundle installed", "bundle", res.SymbolicName, "version", res.Version, "path", res.Path)
	return res, nil
}

// pull copies the artifact tagged tag from src into a staging directory
// under root, checks that it holds a bundle, and renames it into place.
func pull(ctx context.Context, src oras.ReadOnlyTarget, tag, root string, replace bool) (*PullResult, error) {
	desc, raw, err := oras.FetchBytes(ctx, src, tag, oras.DefaultFetchBytesOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNotFound, "failed to fetch bundle manifest", err)
	}

	var manifest ociv1.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid manifest", err)
	}
	if manifest.ArtifactType != ArtifactType {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "artifact is not a bundle",
			map[string]any{"artifactType": manifest.ArtifactType})
	}
	if len(manifest.Layers) != 1 {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "bundle artifact must have one layer",
			map[string]any{"layers": len(manifest.Layers)})
	}

	name := manifest.Layers[0].Annotations[ociv1.AnnotationTitle]
	if name == "" || name != filepath.Base(name) || name[0] == '.' {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "invalid bundle layer name",
			map[string]any{"name": name})
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create bundle root", err)
	}
	stage, err := os.MkdirTemp(root, ".pull-*")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create staging directory", err)
	}
	defer os.RemoveAll(stage)

	store, err := file.New(stage)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = store.Close() }()

	if err := oras.CopyGraph(ctx, src, store, desc, oras.DefaultCopyGraphOptions); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnavailable, "failed to pull bundle", err)
	}

	staged := filepath.Join(stage, name)
	b, err := bundle.Load(ctx, staged)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "pulled artifact is not a valid bundle", err)
	}
	res := &PullResult{
		Digest:       desc.Digest.String(),
		SymbolicName: b.SymbolicName,
		Version:      b.Version.String(),
	}
	_ = b.Close()

	dest := filepath.Join(root, name)
	if _, err := os.Stat(dest); err == nil {
		if !replace {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "bundle already installed",
				map[string]any{"path": dest})
		}
		if err := os.RemoveAll(dest); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to remove installed bundle", err)
		}
	}
	if err := os.Rename(staged, dest); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to install bundle", err)
	}

	res.Path = dest
	return res, nil
}
