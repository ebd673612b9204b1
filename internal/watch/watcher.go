// Package watch adapts fsnotify into the change notifications the host
// feeds to the explorer's debounced refresh. It is a host-side
// collaborator, not part of the explorer core: the core only ever sees
// RefreshDebounced calls.
package watch

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/arbor/internal/debug"
)

// Watcher watches a set of directories and reports which one changed.
// Coalescing bursts is the explorer's job, so events are forwarded
// promptly and duplicates are expected.
type Watcher struct {
	watcher   *fsnotify.Watcher
	mu        sync.Mutex
	watching  map[string]bool // Currently watched paths
	events    chan string     // Changed directory paths
	done      chan struct{}   // Shutdown signal
	closeOnce sync.Once
}

// New creates a watcher with no paths; use Sync to populate it.
func New() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		watching: make(map[string]bool),
		events:   make(chan string, 16),
		done:     make(chan struct{}),
	}

	go w.run()
	return w, nil
}

// run forwards filesystem events for watched directories.
func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}

			// fsnotify reports the changed file's full path; map it back
			// to the watched directory containing it.
			changedPath := event.Name
			parentDir := filepath.Dir(changedPath)

			w.mu.Lock()
			var dir string
			if w.watching[parentDir] {
				dir = parentDir
			} else if w.watching[changedPath] {
				// The watched directory itself was modified
				dir = changedPath
			}
			w.mu.Unlock()

			if dir == "" {
				continue
			}
			debug.Log(debug.WATCH, "event: %s on %s (dir: %s)", event.Op, changedPath, dir)
			select {
			case w.events <- dir:
			default:
				// Channel full; the refresh this feeds is debounced anyway
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.WATCH, "error: %v", err)
		}
	}
}

// Sync updates the watch set to exactly paths: newly listed directories
// are added, no-longer-listed ones removed. The host calls this on every
// snapshot so watches track the root plus the expanded directories.
func (w *Watcher) Sync(paths []string) {
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		want[p] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for p := range w.watching {
		if !want[p] {
			if err := w.watcher.Remove(p); err != nil {
				// Path may already be gone
				debug.Log(debug.WATCH, "remove %s: %v", p, err)
			}
			delete(w.watching, p)
			debug.Log(debug.WATCH, "stopped watching %s", p)
		}
	}
	for p := range want {
		if w.watching[p] {
			continue
		}
		if err := w.watcher.Add(p); err != nil {
			debug.Log(debug.WATCH, "add %s: %v", p, err)
			continue
		}
		w.watching[p] = true
		debug.Log(debug.WATCH, "now watching %s", p)
	}
}

// Events returns the channel of changed directory paths.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Close shuts down the watcher.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return w.watcher.Close()
}
