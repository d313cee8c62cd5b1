// Package watch re-runs a measurement whenever source files change.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"github.com/syntaxai/cargo-syntax/internal/scanner"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a crate and reports changed source files in batches.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	walker    *scanner.Walker
	debounce  time.Duration
	path      string
	out       io.Writer
	callback  func(changed []string)
	mu        sync.Mutex
	pending   map[string]time.Time
}

// NewWatcher creates a watcher for the crate at path. Files are filtered
// with walker, so only paths a scan would measure trigger the callback.
func NewWatcher(path string, walker *scanner.Walker, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		walker:    walker,
		debounce:  debounce,
		path:      path,
		out:       os.Stdout,
		pending:   make(map[string]time.Time),
	}, nil
}

// SetOutput redirects the watcher's status messages.
func (w *Watcher) SetOutput(out io.Writer) {
	w.out = out
}

// SetCallback sets the function called with the changed files, sorted,
// once they have been stable for the debounce period.
func (w *Watcher) SetCallback(cb func(changed []string)) {
	w.callback = cb
}

// Start watches until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.path); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(w.out, "Watching for changes in %s...\n", w.path)
	cyan.Fprintln(w.out, "Press Ctrl+C to stop")
	fmt.Fprintln(w.out)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			color.New(color.FgRed).Fprintf(w.out, "Watch error: %v\n", err)
		}
	}
}

// addTree watches dir and every directory below it that a scan would enter.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.path && w.walker.SkipDir(w.rel(path)) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.path, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	path := event.Name

	// New directories need their own watch
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.walker.SkipDir(w.rel(path)) {
				_ = w.addTree(path)
			}
			return
		}
	}

	if !w.walker.Match(w.rel(path)) {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending reports the files that have been stable for the debounce
// period as one batch.
func (w *Watcher) processPending() {
	ready := w.takeReady(time.Now())
	if len(ready) == 0 || w.callback == nil {
		return
	}

	rels := make([]string, len(ready))
	for i, p := range ready {
		rels[i] = w.rel(p)
	}
	color.New(color.FgYellow).Fprintf(w.out, "\nChanged: %s\n", strings.Join(rels, ", "))
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	w.callback(ready)

	fmt.Fprintln(w.out)
}

func (w *Watcher) takeReady(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	slices.Sort(ready)
	return ready
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the directories being watched.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
