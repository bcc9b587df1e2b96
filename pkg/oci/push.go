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

// ArtifactType is the artifact type of bundle manifests.
const ArtifactType = "application/vnd.nsplugins.bundle"

// Layer media types.
const (
	// MediaTypeBundleDir is used for bundle directories, pushed as tar+gzip.
	MediaTypeBundleDir = ociv1.MediaTypeImageLayerGzip
	// MediaTypeBundleArchive is used for .jar and .zip bundles.
	MediaTypeBundleArchive = "application/zip"
)

// AnnotationSymbolicName records the bundle symbolic name on the manifest.
const AnnotationSymbolicName = "org.nsplugins.bundle.symbolic-name"

// PushOptions configures pushing a bundle.
type PushOptions struct {
	// Path is the bundle directory or archive.
	Path string
	// Reference is the target; its tag is required.
	Reference *Reference
	// Annotations are added to the manifest annotations.
	Annotations map[string]string
	// ReproducibleTimestamp sets a fixed creation time for reproducible builds.
	ReproducibleTimestamp string

	RemoteOptions
}

// PushResult describes a pushed bundle.
type PushResult struct {
	// Digest is the manifest digest.
	Digest string `json:"digest" yaml:"digest"`
	// Reference is the full oci:// reference.
	Reference    string `json:"reference" yaml:"reference"`
	SymbolicName string `json:"symbolicName" yaml:"symbolicName"`
	Version      string `json:"version" yaml:"version"`
}

// Push packs the bundle at opts.Path and pushes it to the registry.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if opts.Reference == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	if opts.Reference.Tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required to push a bundle")
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.OCIPushTimeout)
	defer cancel()

	repo, err := newRepository(opts.Reference, opts.RemoteOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to connect to registry", err)
	}

	slog.Info("pushing bundle", "path", opts.Path, "reference", opts.Reference.String())
	res, err := push(ctx, opts, repo)
	if err != nil {
		return nil, err
	}
	slog.Info("bundle pushed", "reference", res.Reference, "digest", res.Digest)
	return res, nil
}

// push packs the bundle into a file store and copies it to dst.
func push(ctx context.Context, opts PushOptions, dst oras.Target) (*PushResult, error) {
	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to resolve bundle path", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "bundle not found", err)
	}

	b, err := bundle.Load(ctx, abs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "not a valid bundle", err)
	}
	defer func() { _ = b.Close() }()

	store, err := file.New(filepath.Dir(abs))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = store.Close() }()
	store.TarReproducible = true

	mediaType := MediaTypeBundleArchive
	if info.IsDir() {
		mediaType = MediaTypeBundleDir
	}
	layer, err := store.Add(ctx, filepath.Base(abs), mediaType, abs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to add bundle to store", err)
	}

	annotations := map[string]string{
		AnnotationSymbolicName:  b.SymbolicName,
		ociv1.AnnotationVersion: b.Version.String(),
	}
	for k, v := range opts.Annotations {
		annotations[k] = v
	}
	// The file store treats a titled descriptor as a named file, so only the
	// layer may carry a title.
	delete(annotations, ociv1.AnnotationTitle)
	if opts.ReproducibleTimestamp != "" {
		annotations[ociv1.AnnotationCreated] = opts.ReproducibleTimestamp
	}

	manifestDesc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{
			Layers:              []ociv1.Descriptor{layer},
			ManifestAnnotations: annotations,
		})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to pack manifest", err)
	}

	tag := opts.Reference.Tag
	if err := store.Tag(ctx, manifestDesc, tag); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to tag manifest in local store", err)
	}

	desc, err := oras.Copy(ctx, store, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnavailable, "failed to push bundle to registry", err)
	}

	return &PushResult{
		Digest:       desc.Digest.String(),
		Reference:    opts.Reference.String(),
		SymbolicName: b.SymbolicName,
		Version:      b.Version.String(),
	}, nil
}
