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

package bundle

import (
	"archive/zip"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nsplugins/nsplugins/pkg/defaults"
)

// Load opens the bundle at path, which is either a directory or a jar/zip
// archive.
func Load(ctx context.Context, path string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat bundle %s: %w", path, err)
	}

	if info.IsDir() {
		return New(path, os.DirFS(path))
	}

	if !isArchive(path) {
		return nil, fmt.Errorf("unsupported bundle file %s", path)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle archive %s: %w", path, err)
	}
	b, err := New(path, zr)
	if err != nil {
		_ = zr.Close()
		return nil, err
	}
	b.closer = zr
	return b, nil
}

func isArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jar", ".zip":
		return true
	default:
		return false
	}
}

// IsCandidate reports whether an entry of the bundle root may hold a
// bundle. Hidden entries are skipped, which lets tools stage a bundle under
// a dot-name and rename it into place.
func IsCandidate(name string, isDir bool) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return isDir || isArchive(name)
}

// LoadDir loads every bundle found directly under root, in parallel.
// Entries that fail to load are logged and skipped. Bundles are returned
// in directory order.
func LoadDir(ctx context.Context, root string) ([]*Bundle, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle root %s: %w", root, err)
	}

	var paths []string
	for _, e := range entries {
		if IsCandidate(e.Name(), e.IsDir()) {
			paths = append(paths, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(paths)

	loaded := make([]*Bundle, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaults.BundleLoadConcurrency)

	for i, p := range paths {
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(gctx, defaults.BundleLoadTimeout)
			defer cancel()

			b, err := Load(lctx, p)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.Warn("skipping bundle", "path", p, "error", err)
				return nil
			}
			loaded[i] = b
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, b := range loaded {
			if b != nil {
				_ = b.Close()
			}
		}
		return nil, fmt.Errorf("bundle loading interrupted: %w", err)
	}

	bundles := make([]*Bundle, 0, len(loaded))
	for _, b := range loaded {
		if b != nil {
			bundles = append(bundles, b)
		}
	}

	slog.Info("bundles loaded", "root", root, "count", len(bundles), "candidates", len(paths))
	return bundles, nil
}
