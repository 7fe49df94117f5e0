// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchCollector records handler invocations for assertions.
type batchCollector struct {
	mu      sync.Mutex
	batches [][]string
}

func (c *batchCollector) handle(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, paths)
}

func (c *batchCollector) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, b := range c.batches {
		out = append(out, b...)
	}
	return out
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// tempRoot returns a symlink-resolved temp directory so event paths compare
// equal on platforms where the temp dir sits behind a symlink.
func tempRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return root
}

func newTestWatcher(t *testing.T, root string, patterns []string, c *batchCollector) *Watcher {
	t.Helper()
	opts := DefaultOptions()
	opts.Debounce = 50 * time.Millisecond
	w, err := New(root, patterns, c.handle, &opts)
	require.NoError(t, err)
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_ReportsInScopeChanges(t *testing.T) {
	root := tempRoot(t)
	collector := &batchCollector{}
	w := newTestWatcher(t, root, []string{"**/*.yaml"}, collector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	assert.True(t, w.IsWatching())

	target := filepath.Join(root, "openapi.yaml")
	require.NoError(t, os.WriteFile(target, []byte("openapi: 3.0.0\n"), 0o644))

	ok := waitFor(t, 2*time.Second, func() bool {
		for _, p := range collector.all() {
			if p == target {
				return true
			}
		}
		return false
	})
	assert.True(t, ok, "expected a batch containing %s, got %v", target, collector.all())
}

func TestWatcher_IgnoresOutOfScopeFiles(t *testing.T) {
	root := tempRoot(t)
	collector := &batchCollector{}
	w := newTestWatcher(t, root, []string{"**/*.yaml"}, collector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, collector.all())
}

func TestWatcher_DebouncesBurstIntoOneBatch(t *testing.T) {
	root := tempRoot(t)
	collector := &batchCollector{}
	w := newTestWatcher(t, root, []string{"**/*.yaml"}, collector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	target := filepath.Join(root, "api.yaml")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("openapi: 3.0.0\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	require.True(t, waitFor(t, 2*time.Second, func() bool {
		return len(collector.all()) > 0
	}))

	// The burst lands within one debounce window and the batch is deduped,
	// so the path appears exactly once.
	collector.mu.Lock()
	defer collector.mu.Unlock()
	require.Len(t, collector.batches, 1)
	assert.Equal(t, []string{target}, collector.batches[0])
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	root := tempRoot(t)
	collector := &batchCollector{}
	w := newTestWatcher(t, root, []string{"**/*.yaml"}, collector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	sub := filepath.Join(root, "specs")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the event loop a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(sub, "nested.yaml")
	require.NoError(t, os.WriteFile(target, []byte("openapi: 3.0.0\n"), 0o644))

	ok := waitFor(t, 2*time.Second, func() bool {
		for _, p := range collector.all() {
			if p == target {
				return true
			}
		}
		return false
	})
	assert.True(t, ok, "expected nested change to be reported, got %v", collector.all())
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	root := tempRoot(t)
	w := newTestWatcher(t, root, []string{"**/*.yaml"}, &batchCollector{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	w.Stop()
	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestDedupe(t *testing.T) {
	in := []string{"a.yaml", "b.yaml", "a.yaml", "", "b.yaml"}
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, dedupe(in))
}
