package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New()
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func awaitEvent(t *testing.T, w *Watcher) string {
	t.Helper()
	select {
	case dir := <-w.Events():
		return dir
	case <-time.After(5 * time.Second):
		t.Fatal("no event within 5s")
		return ""
	}
}

func TestWatcherReportsChangedDirectory(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)
	w.Sync([]string{dir})

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := awaitEvent(t, w); got != dir {
		t.Errorf("event dir = %q, expected %q", got, dir)
	}
}

func TestSyncRemovesUnlistedPaths(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	w := newTestWatcher(t)

	w.Sync([]string{a, b})
	w.Sync([]string{b})

	// Changes in the dropped directory no longer produce events.
	if err := os.WriteFile(filepath.Join(a, "ignored.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(b, "seen.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := awaitEvent(t, w); got != b {
		t.Errorf("event dir = %q, expected %q", got, b)
	}
	select {
	case dir := <-w.Events():
		if dir == a {
			t.Errorf("dropped directory still produced an event")
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)

	w.Sync([]string{dir})
	w.Sync([]string{dir})
	w.Sync([]string{dir})

	w.mu.Lock()
	n := len(w.watching)
	w.mu.Unlock()
	if n != 1 {
		t.Errorf("expected a single watched path, got %d", n)
	}
}

func TestSyncToleratesMissingPaths(t *testing.T) {
	w := newTestWatcher(t)

	// Adding a nonexistent path logs and moves on.
	w.Sync([]string{filepath.Join(t.TempDir(), "gone")})

	w.mu.Lock()
	n := len(w.watching)
	w.mu.Unlock()
	if n != 0 {
		t.Errorf("nonexistent path should not be tracked, got %d watched", n)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
