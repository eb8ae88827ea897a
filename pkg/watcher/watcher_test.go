package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "model.scad")
	require.NoError(t, os.WriteFile(file, []byte("cube(1);\n"), 0o644))

	fw, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{file}, func(string) {
		calls.Add(1)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Run(ctx) }()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(file, []byte("cube(2);\n"), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	err = <-done
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunStopsOnClose(t *testing.T) {
	fw, err := NewFileWatcher(0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, fw.debounce)

	done := make(chan error, 1)
	go func() { done <- fw.Run(context.Background()) }()

	require.NoError(t, fw.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestWatchMissingFile(t *testing.T) {
	fw, err := NewFileWatcher(time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	err = fw.Watch([]string{filepath.Join(t.TempDir(), "missing.scad")}, func(string) {})
	assert.Error(t, err)
}

func TestCallbacksDoNotOverlap(t *testing.T) {
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "a.scad"), filepath.Join(dir, "b.scad")}
	for _, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("cube(1);\n"), 0o644))
	}

	fw, err := NewFileWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	var running, calls atomic.Int32
	var overlapped atomic.Bool
	require.NoError(t, fw.Watch(files, func(string) {
		if running.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(50 * time.Millisecond)
		running.Add(-1)
		calls.Add(1)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fw.Run(ctx) }()

	for _, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("cube(2);\n"), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
	assert.False(t, overlapped.Load())
}

func TestRemoveAllThenWatchAgain(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "model.scad")
	require.NoError(t, os.WriteFile(file, []byte("cube(1);\n"), 0o644))

	fw, err := NewFileWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, fw.Watch([]string{file}, func(string) {}))
	assert.Equal(t, 1, fw.Watched())

	require.NoError(t, fw.RemoveAll())
	assert.Equal(t, 0, fw.Watched())
	require.NoError(t, fw.RemoveAll())

	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{file}, func(string) { calls.Add(1) }))
	assert.Equal(t, 1, fw.Watched())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fw.Run(ctx) }()

	require.NoError(t, os.WriteFile(file, []byte("cube(2);\n"), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
}
