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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nsplugins/nsplugins/pkg/defaults"
)

// EventType is the kind of a bundle lifecycle event.
type EventType string

const (
	// Installed is sent when a bundle appears under the root, or replaces
	// an earlier bundle at the same path.
	Installed EventType = "installed"
	// Uninstalled is sent when a bundle disappears or is replaced.
	Uninstalled EventType = "uninstalled"
)

// Event is a bundle lifecycle event.
type Event struct {
	Type   EventType
	Bundle *Bundle
}

// Watcher turns changes under a bundle root into lifecycle events. Changes
// are debounced so a bundle copied in over several writes is loaded once.
type Watcher struct {
	root      string
	debounce  time.Duration
	fsWatcher *fsnotify.Watcher
	events    chan Event

	mu        sync.Mutex
	installed map[string]*Bundle
}

// NewWatcher creates a watcher for root.
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:      root,
		debounce:  debounce,
		fsWatcher: fsw,
		events:    make(chan Event, 16),
		installed: make(map[string]*Bundle),
	}, nil
}

// Seed records bundles that are already installed, typically the result of
// LoadDir, so that later changes to them are reported as replacements.
func (w *Watcher) Seed(bundles []*Bundle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range bundles {
		w.installed[b.Location] = b
	}
}

// Events returns the event channel. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run watches the root until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.fsWatcher.Close()

	if err := w.fsWatcher.Add(w.root); err != nil {
		return fmt.Errorf("watching directory %s: %w", w.root, err)
	}
	slog.Info("watching bundle root", "root", w.root, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			path, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			pending[path] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			for path := range pending {
				if !w.reconcile(ctx, path) {
					return nil
				}
				delete(pending, path)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("bundle watcher error", "root", w.root, "error", err)
		}
	}
}

// relevant maps an event to the bundle path it affects.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	if filepath.Dir(event.Name) != filepath.Clean(w.root) {
		return "", false
	}
	name := filepath.Base(event.Name)
	if name == "" || name[0] == '.' {
		return "", false
	}
	return event.Name, true
}

// reconcile brings the installed state of path in line with the disk.
// It returns false if ctx ended while sending events.
func (w *Watcher) reconcile(ctx context.Context, path string) bool {
	w.mu.Lock()
	old := w.installed[path]
	w.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil || !IsCandidate(filepath.Base(path), info.IsDir()) {
		if old == nil {
			return true
		}
		w.forget(path)
		return w.send(ctx, Event{Type: Uninstalled, Bundle: old})
	}

	lctx, cancel := context.WithTimeout(ctx, defaults.BundleLoadTimeout)
	b, err := Load(lctx, path)
	cancel()
	if err != nil {
		slog.Warn("failed to load bundle", "path", path, "error", err)
		return true
	}

	w.mu.Lock()
	w.installed[path] = b
	w.mu.Unlock()

	if old != nil && !w.send(ctx, Event{Type: Uninstalled, Bundle: old}) {
		return false
	}
	return w.send(ctx, Event{Type: Installed, Bundle: b})
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.installed, path)
	w.mu.Unlock()
}

func (w *Watcher) send(ctx context.Context, e Event) bool {
	select {
	case w.events <- e:
		slog.Debug("bundle event", "type", e.Type, "bundle", e.Bundle.String())
		return true
	case <-ctx.Done():
		return false
	}
}
