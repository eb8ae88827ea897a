// Package watcher re-runs work when source files change on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher watches files for changes and triggers callbacks
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	logger    *slog.Logger
	mu        sync.Mutex
	runMu     sync.Mutex // held while a callback runs
	callbacks map[string]func(string)
	debounce  time.Duration
	timers    map[string]*time.Timer
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FileWatcher{
		watcher:   watcher,
		logger:    logger,
		callbacks: make(map[string]func(string)),
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Watch registers callback for the given files
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}

		if err := fw.watcher.Add(absPath); err != nil {
			return fmt.Errorf("failed to watch %s: %w", absPath, err)
		}

		fw.callbacks[absPath] = callback
		fw.logger.Debug("watching", "file", absPath)
	}

	return nil
}

// Run dispatches change events until ctx is done or the watcher is closed.
// Pending debounced callbacks are cancelled on return.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			// editors that replace files emit Create or Rename instead of Write
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fw.handleFileChange(event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleFileChange handles a file change event with debouncing
func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	callback, exists := fw.callbacks[filePath]
	if !exists {
		return
	}

	if timer, exists := fw.timers[filePath]; exists {
		timer.Stop()
	}

	fw.timers[filePath] = time.AfterFunc(fw.debounce, func() {
		fw.runMu.Lock()
		defer fw.runMu.Unlock()

		fw.logger.Info("file changed", "file", filePath)
		callback(filePath)
	})
}

func (fw *FileWatcher) stopTimers() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.timers = make(map[string]*time.Timer)
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}

// RemoveAll removes all watched files. Files whose watch the kernel already
// dropped, for example after a delete, are skipped.
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	var errs []error
	for file := range fw.callbacks {
		if err := fw.watcher.Remove(file); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			errs = append(errs, err)
		}
	}

	fw.callbacks = make(map[string]func(string))
	return errors.Join(errs...)
}

// Watched returns the number of watched files
func (fw *FileWatcher) Watched() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return len(fw.callbacks)
}
