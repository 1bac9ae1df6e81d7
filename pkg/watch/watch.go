// Package watch calls back when a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sherine-k/skyline/pkg/logging"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs.
const DefaultDebounce = 500 * time.Millisecond

// Callback is called after the file changed.
type Callback func(path string)

// Watcher monitors a single file.
type Watcher struct {
	path     string
	debounce time.Duration
	callback Callback

	// running serializes callbacks, so a slow render never overlaps the
	// next one.
	running sync.Mutex
}

// New creates a watcher for path
func New(path string, debounce time.Duration, callback Callback) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: path, debounce: debounce, callback: callback}
}

// Run watches until ctx is done. The parent directory is watched, so
// editors that replace the file on save are handled.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	fsW, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsW.Close()

	if err := fsW.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsW.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			// Debounce: reset timer on each event.
			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			timer = time.AfterFunc(w.debounce, func() {
				defer wg.Done()
				w.fire()
			})
			mu.Unlock()

		case err, ok := <-fsW.Errors:
			if !ok {
				return nil
			}
			logging.Logger().Warn("watcher error", "path", w.path, "error", err)
		}
	}
}

// fire runs the callback once no earlier call is still running.
func (w *Watcher) fire() {
	w.running.Lock()
	defer w.running.Unlock()
	w.callback(w.path)
}
