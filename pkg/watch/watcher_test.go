package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syntaxai/cargo-syntax/internal/scanner"
	"github.com/syntaxai/cargo-syntax/pkg/config"
)

func newTestWatcher(t *testing.T, dir string, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := NewWatcher(dir, scanner.NewWalker(config.DefaultConfig()), debounce)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		debounce time.Duration
		want     time.Duration
	}{
		{"default debounce", 0, DefaultDebounce},
		{"custom debounce", time.Second, time.Second},
		{"negative debounce defaults", -time.Second, DefaultDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWatcher(t, tmpDir, tt.debounce)
			if w.fsWatcher == nil {
				t.Error("fsWatcher should not be nil")
			}
			if w.path != tmpDir {
				t.Errorf("path = %v, want %v", w.path, tmpDir)
			}
			if w.pending == nil {
				t.Error("pending map should be initialized")
			}
			if w.debounce != tt.want {
				t.Errorf("debounce = %v, want %v", w.debounce, tt.want)
			}
		})
	}
}

func TestWatcher_Stop(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), scanner.NewWalker(nil), time.Second)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestWatcher_handleEvent(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Second)

	tests := []struct {
		name        string
		event       fsnotify.Event
		wantPending bool
	}{
		{"write rust file", fsnotify.Event{Name: filepath.Join(tmpDir, "src", "lib.rs"), Op: fsnotify.Write}, true},
		{"create rust file", fsnotify.Event{Name: filepath.Join(tmpDir, "src", "new.rs"), Op: fsnotify.Create}, true},
		{"remove rust file", fsnotify.Event{Name: filepath.Join(tmpDir, "src", "old.rs"), Op: fsnotify.Remove}, true},
		{"chmod ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "src", "lib.rs"), Op: fsnotify.Chmod}, false},
		{"other extension ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "README.md"), Op: fsnotify.Write}, false},
		{"build dir ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "target", "debug", "out.rs"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.mu.Lock()
			w.pending = make(map[string]time.Time)
			w.mu.Unlock()

			w.handleEvent(tt.event)

			w.mu.Lock()
			_, found := w.pending[tt.event.Name]
			w.mu.Unlock()

			if found != tt.wantPending {
				t.Errorf("pending[%v] = %v, want %v", tt.event.Name, found, tt.wantPending)
			}
		})
	}
}

func TestWatcher_handleEvent_ExcludePattern(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"benches/"}

	w, err := NewWatcher(tmpDir, scanner.NewWalker(cfg), time.Second)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	path := filepath.Join(tmpDir, "benches", "perf.rs")
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	if _, found := w.pending[path]; found {
		t.Error("excluded file should not be pending")
	}
}

func TestWatcher_processPending(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	var got []string
	w.SetCallback(func(changed []string) {
		got = changed
	})

	a := filepath.Join(tmpDir, "a.rs")
	b := filepath.Join(tmpDir, "b.rs")
	old := time.Now().Add(-100 * time.Millisecond)
	w.mu.Lock()
	w.pending[b] = old
	w.pending[a] = old
	w.mu.Unlock()

	w.processPending()

	if !slices.Equal(got, []string{a, b}) {
		t.Errorf("callback got %v, want sorted [%v %v]", got, a, b)
	}
	if len(w.pending) != 0 {
		t.Error("pending should be cleared after processing")
	}
}

func TestWatcher_processPending_NotReady(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Hour)

	called := false
	w.SetCallback(func([]string) {
		called = true
	})

	testFile := filepath.Join(tmpDir, "lib.rs")
	w.mu.Lock()
	w.pending[testFile] = time.Now()
	w.mu.Unlock()

	w.processPending()

	if called {
		t.Error("callback should not run before the debounce period")
	}
	if _, still := w.pending[testFile]; !still {
		t.Error("file should still be pending")
	}
}

func TestWatcher_processPending_NoCallback(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	testFile := filepath.Join(tmpDir, "lib.rs")
	w.pending[testFile] = time.Now().Add(-100 * time.Millisecond)

	w.processPending()

	if _, still := w.pending[testFile]; still {
		t.Error("file should be removed from pending even without callback")
	}
}

func TestWatcher_Debounce(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 200*time.Millisecond)

	var calls int32
	w.SetCallback(func([]string) {
		atomic.AddInt32(&calls, 1)
	})

	testFile := filepath.Join(tmpDir, "lib.rs")
	for range 5 {
		w.handleEvent(fsnotify.Event{Name: testFile, Op: fsnotify.Write})
		time.Sleep(10 * time.Millisecond)
	}

	w.processPending()
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("callback ran %d times before debounce", n)
	}

	time.Sleep(300 * time.Millisecond)
	w.processPending()
	w.processPending()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("callback count = %d, want 1", n)
	}
}

func TestWatcher_Start_Context(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Error("Start() did not return after context cancellation")
	}
}

func TestWatcher_Start_SkipsBuildDir(t *testing.T) {
	tmpDir := t.TempDir()
	for _, dir := range []string{"src", filepath.Join("target", "debug")} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
	}

	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	watched := w.WatchedDirs()
	if !slices.Contains(watched, filepath.Join(tmpDir, "src")) {
		t.Errorf("src should be watched, got %v", watched)
	}
	for _, path := range watched {
		if filepath.Base(path) == "target" || filepath.Base(path) == "debug" {
			t.Errorf("%s should not be watched", path)
		}
	}
}

func TestWatcher_Start_FileChange(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	var mu sync.Mutex
	var got []string
	w.SetCallback(func(changed []string) {
		mu.Lock()
		got = append(got, changed...)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tmpDir, "main.rs")
	if err := os.WriteFile(testFile, []byte("fn main() {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := slices.Contains(got, testFile)
		mu.Unlock()
		if done {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("callback never reported %s", testFile)
}

func TestWatcher_ConcurrentHandleEvent(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Hour)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				w.handleEvent(fsnotify.Event{Name: filepath.Join(tmpDir, "lib.rs"), Op: fsnotify.Write})
			}
		}()
	}
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) != 1 {
		t.Errorf("pending = %d entries, want 1", len(w.pending))
	}
}
