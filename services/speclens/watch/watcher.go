// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-lints in-scope documents when they change on disk.
//
// Changes are debounced so a burst of writes (editor save, git checkout)
// triggers one re-lint per document, not one per event. Only paths accepted
// by the scope matcher reach the handler.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/speclens/services/speclens/scope"
)

// Handler is called with the deduplicated set of changed document paths
// after the debounce window closes.
type Handler func(paths []string)

// Options configures the Watcher.
type Options struct {
	// Debounce is how long to wait for further changes before triggering.
	// Default: 250ms.
	Debounce time.Duration

	// IgnoreDirs are directory names that are never descended into.
	// Default: [".git", "node_modules", ".idea"].
	IgnoreDirs []string

	// BufferSize is the size of the internal change channel. Default: 256.
	BufferSize int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Debounce:   250 * time.Millisecond,
		IgnoreDirs: []string{".git", "node_modules", ".idea"},
		BufferSize: 256,
	}
}

// Watcher watches a project root and reports changed in-scope documents.
//
// # Description
//
// Recursively watches the root directory. Each write/create event is
// filtered through the inclusion patterns; surviving paths are collected
// into a debounce buffer and handed to the handler as one batch once the
// window expires without further changes.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine.
type Watcher struct {
	root       string
	patterns   []string
	handler    Handler
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	ignoreDirs []string

	changes  chan string
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// New creates a watcher for the given project root.
//
// # Inputs
//
//   - root: Absolute path of the directory to watch; also the base the
//     inclusion patterns resolve against.
//   - patterns: Ant-style glob patterns selecting watchable documents.
//   - handler: Called with batched changed paths after debounce.
//   - opts: Optional configuration (nil uses defaults).
//
// # Outputs
//
//   - *Watcher: Ready-to-use watcher (call Start to begin).
//   - error: Non-nil if the underlying fsnotify watcher failed.
func New(root string, patterns []string, handler Handler, opts *Options) (*Watcher, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:       root,
		patterns:   patterns,
		handler:    handler,
		watcher:    fsw,
		debounce:   opts.Debounce,
		ignoreDirs: opts.IgnoreDirs,
		changes:    make(chan string, opts.BufferSize),
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching. Both internal goroutines exit when Stop is called
// or the context is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true while the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// addRecursive adds root and all non-ignored subdirectories to the watch list.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignoredDir(d.Name()) && path != root {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// ignoredDir reports whether a directory name is never descended into.
func (w *Watcher) ignoredDir(name string) bool {
	for _, ignore := range w.ignoreDirs {
		if name == ignore {
			return true
		}
	}
	return false
}

// inScope reports whether a changed path is an eligible document.
func (w *Watcher) inScope(path string) bool {
	return scope.Included(w.root, path, w.patterns, os.PathSeparator)
}

// processEvents filters fsnotify events into the debounce channel.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// A created directory needs watching before events inside it
			// can be seen.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.ignoredDir(filepath.Base(event.Name)) {
						w.watcher.Add(event.Name)
					}
					continue
				}
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.inScope(event.Name) {
				continue
			}

			select {
			case w.changes <- event.Name:
			default:
				// Buffer full; the debouncer will pick the document up on
				// its next change.
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", slog.Any("error", err))
		}
	}
}

// debounceLoop batches changed paths and calls the handler once the window
// expires without further changes.
func (w *Watcher) debounceLoop(ctx context.Context) {
	var batch []string
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 {
			deduped := dedupe(batch)
			if w.handler != nil {
				w.handler(deduped)
			}
			batch = batch[:0]
		}
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case path := <-w.changes:
			batch = append(batch, path)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// dedupe removes repeated paths, preserving first-seen order.
func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := strings.TrimSpace(p)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
