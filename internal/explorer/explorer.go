// Package explorer holds the state-synchronization engine behind the file
// tree: one canonical immutable snapshot, a subscribe/notify mechanism,
// serialized last-issued-wins refreshes, debounced external-change handling,
// and refresh-on-success mutations.
package explorer

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/justyntemme/arbor/internal/debug"
)

// DefaultDebounce is the settle delay for coalescing external change bursts.
const DefaultDebounce = 200 * time.Millisecond

// FocusDebounce is the longer settle delay used for window-focus rechecks,
// so rapid focus flicker does not trigger a refresh per flick.
const FocusDebounce = 500 * time.Millisecond

// Listener receives every installed snapshot, in subscription order.
type Listener func(ViewState)

// Explorer owns the canonical ViewState for one watched root.
//
// All mutations replace the snapshot wholesale under the mutex; listeners
// are invoked outside the lock so they may call back into the explorer.
type Explorer struct {
	svc Service

	mu        sync.Mutex
	state     ViewState
	listeners map[string]Listener
	order     []string
	closed    bool

	// pending and notifying serialize listener delivery: each installed
	// snapshot is queued under mu, and exactly one goroutine drains the
	// queue at a time. A listener therefore never runs concurrently with
	// itself and always sees snapshots in install order, even when updates
	// come from several goroutines (debounce timer vs host input).
	pending   []notification
	notifying bool

	// gen tracks the most recently issued refresh. A refresh may only
	// install its result while its generation is still the latest, which
	// prevents a slow stale read from clobbering a fresher fast one.
	gen atomic.Int64

	timerMu sync.Mutex
	timer   *time.Timer
}

// notification is one queued delivery: a snapshot and the listeners that
// should see it.
type notification struct {
	snap    ViewState
	targets []Listener
}

// New creates an explorer over the given directory service. The initial
// snapshot is empty and collapsed; call Refresh to populate it.
func New(svc Service) *Explorer {
	return &Explorer{
		svc:       svc,
		state:     ViewState{Expanded: make(map[string]bool)},
		listeners: make(map[string]Listener),
	}
}

// Subscribe registers a listener and synchronously delivers the current
// snapshot, so late subscribers never miss the initial state. The returned
// function removes the listener.
func (e *Explorer) Subscribe(l Listener) (unsubscribe func()) {
	e.mu.Lock()
	id := uuid.NewString()
	e.listeners[id] = l
	e.order = append(e.order, id)
	e.pending = append(e.pending, notification{snap: e.state, targets: []Listener{l}})
	e.drainLocked()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
		for i, v := range e.order {
			if v == id {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	}
}

// Snapshot returns the current state.
func (e *Explorer) Snapshot() ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Refresh re-reads the tree constrained by the current expansion set and
// installs the result atomically. On read failure the previous entries are
// kept and only the error message changes: stale-but-visible data beats a
// blanked screen.
func (e *Explorer) Refresh() {
	gen := e.gen.Add(1)

	var rel string
	var expanded map[string]bool
	ok := e.updateIf(
		func() bool { return gen == e.gen.Load() },
		func(s *ViewState) {
			s.Loading = true
			s.Err = ""
			rel = s.CurrentPath
			expanded = s.Expanded
		})
	if !ok {
		return
	}

	debug.Log(debug.EXPLORER, "refresh gen=%d path=%q expanded=%d", gen, rel, len(expanded))
	entries, err := e.svc.ReadTree(rel, expanded)

	installed := e.updateIf(
		func() bool { return gen == e.gen.Load() },
		func(s *ViewState) {
			s.Loading = false
			if err != nil {
				s.Err = err.Error()
				return
			}
			s.Err = ""
			s.Entries = entries
		})
	if !installed {
		debug.Log(debug.EXPLORER, "refresh gen=%d discarded (stale or closed)", gen)
	}
}

// RefreshDebounced schedules a Refresh after delay, resetting any pending
// timer so a burst of triggers produces exactly one read. A non-positive
// delay means DefaultDebounce.
func (e *Explorer) RefreshDebounced(delay time.Duration) {
	if delay <= 0 {
		delay = DefaultDebounce
	}

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}

	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(delay, e.Refresh)
}

// ToggleExpand flips a directory's expansion and performs a full refresh,
// since children of a newly expanded folder are not cached. Collapsing
// drops the subtree's entries immediately so no snapshot ever shows
// descendants of a collapsed directory. Selection is left alone; only
// Delete clears it.
func (e *Explorer) ToggleExpand(p string) {
	e.update(func(s *ViewState) {
		if s.Expanded[p] {
			delete(s.Expanded, p)
			s.Entries = withoutSubtree(s.Entries, p)
		} else {
			s.Expanded[p] = true
		}
	})
	e.Refresh()
}

// CollapseAll clears the expansion set, leaving only top-level entries
// visible, then refreshes.
func (e *Explorer) CollapseAll() {
	e.update(func(s *ViewState) {
		s.Expanded = make(map[string]bool)
		top := make([]Entry, 0, len(s.Entries))
		for _, en := range s.Entries {
			if parentOf(en.Path) == s.CurrentPath {
				top = append(top, en)
			}
		}
		s.Entries = top
	})
	e.Refresh()
}

// Select sets the selected path ("" clears it). Pure state update: no I/O,
// listeners are notified immediately.
func (e *Explorer) Select(p string) {
	e.update(func(s *ViewState) { s.SelectedPath = p })
}

// CreateFile creates an empty file in dir and refreshes on success. The
// containing directory is expanded so the new entry is visible without a
// manual expand.
func (e *Explorer) CreateFile(dir, name string) Result {
	if err := ValidateName(name); err != nil {
		return failure("Invalid file name", err)
	}
	if err := e.svc.CreateFile(dir, name); err != nil {
		return failure(fmt.Sprintf("Could not create %s", name), err)
	}
	e.expand(dir)
	e.Refresh()
	return success("Created " + name)
}

// CreateDir creates a folder in dir and refreshes on success, expanding
// the parent so the new folder shows up.
func (e *Explorer) CreateDir(dir, name string) Result {
	if err := ValidateName(name); err != nil {
		return failure("Invalid folder name", err)
	}
	if err := e.svc.CreateDir(dir, name); err != nil {
		return failure(fmt.Sprintf("Could not create %s", name), err)
	}
	e.expand(dir)
	e.Refresh()
	return success("Created " + name)
}

// Rename renames the entry at rel to newName within its directory. On
// success the selection and expansion set follow the renamed path so the
// next refresh cannot leave them dangling.
func (e *Explorer) Rename(rel, newName string) Result {
	if err := ValidateName(newName); err != nil {
		return failure("Invalid name", err)
	}
	if err := e.svc.Rename(rel, newName); err != nil {
		return failure(fmt.Sprintf("Could not rename %s", path.Base(rel)), err)
	}

	newPath := joinRel(parentOf(rel), newName)
	e.update(func(s *ViewState) {
		if s.SelectedPath == rel {
			s.SelectedPath = newPath
		} else if under(s.SelectedPath, rel) {
			s.SelectedPath = newPath + strings.TrimPrefix(s.SelectedPath, rel)
		}
		moved := make(map[string]bool, len(s.Expanded))
		for p := range s.Expanded {
			if p == rel || under(p, rel) {
				moved[newPath+strings.TrimPrefix(p, rel)] = true
			} else {
				moved[p] = true
			}
		}
		s.Expanded = moved
	})
	e.Refresh()
	return success(fmt.Sprintf("Renamed to %s", newName))
}

// Delete moves the entry at rel to the trash and refreshes on success.
// A selection pointing at the deleted entry (or inside a deleted folder)
// is cleared synchronously, before the refresh completes, so the view
// never shows a selected-but-vanishing item.
func (e *Explorer) Delete(rel string) Result {
	if err := e.svc.Delete(rel); err != nil {
		return failure(fmt.Sprintf("Could not delete %s", path.Base(rel)), err)
	}

	e.update(func(s *ViewState) {
		if s.SelectedPath == rel || under(s.SelectedPath, rel) {
			s.SelectedPath = ""
		}
		for p := range s.Expanded {
			if p == rel || under(p, rel) {
				delete(s.Expanded, p)
			}
		}
	})
	e.Refresh()
	return success(fmt.Sprintf("Deleted %s", path.Base(rel)))
}

// OpenExternal opens the entry with the default system application.
// No state mutation.
func (e *Explorer) OpenExternal(rel string) Result {
	if err := e.svc.OpenExternal(rel); err != nil {
		return failure(fmt.Sprintf("Could not open %s", path.Base(rel)), err)
	}
	return success("Opened " + path.Base(rel))
}

// Reveal shows the entry in the system file manager. No state mutation.
func (e *Explorer) Reveal(rel string) Result {
	if err := e.svc.Reveal(rel); err != nil {
		return failure(fmt.Sprintf("Could not reveal %s", path.Base(rel)), err)
	}
	return success("Revealed " + path.Base(rel))
}

// SetExpanded replaces the expansion set (without refreshing), used when
// restoring a persisted session before the first refresh.
func (e *Explorer) SetExpanded(paths []string) {
	e.update(func(s *ViewState) {
		s.Expanded = make(map[string]bool, len(paths))
		for _, p := range paths {
			s.Expanded[p] = true
		}
	})
}

// Close tears down the explorer: the pending debounce timer is cancelled,
// listeners are cleared, and any in-flight refresh result is discarded
// instead of mutating torn-down state.
func (e *Explorer) Close() {
	e.timerMu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.timerMu.Unlock()

	e.mu.Lock()
	e.closed = true
	e.listeners = make(map[string]Listener)
	e.order = nil
	e.pending = nil
	e.mu.Unlock()
}

// --- internal ---

// expand marks dir expanded so a freshly created child is visible. The
// root is always visible and never carries an expansion key.
func (e *Explorer) expand(dir string) {
	if dir == "" {
		return
	}
	e.update(func(s *ViewState) { s.Expanded[dir] = true })
}

// update installs an unconditional state transition.
func (e *Explorer) update(mutate func(*ViewState)) {
	e.updateIf(nil, mutate)
}

// updateIf builds the next snapshot under the lock, installs it if cond
// still holds, and queues a notification for the listeners in insertion
// order. Returns false if the explorer is closed or cond failed.
func (e *Explorer) updateIf(cond func() bool, mutate func(*ViewState)) bool {
	e.mu.Lock()
	if e.closed || (cond != nil && !cond()) {
		e.mu.Unlock()
		return false
	}
	next := e.state.clone()
	mutate(&next)
	e.state = next

	ls := make([]Listener, 0, len(e.order))
	for _, id := range e.order {
		if l, ok := e.listeners[id]; ok {
			ls = append(ls, l)
		}
	}
	e.pending = append(e.pending, notification{snap: next, targets: ls})
	e.drainLocked()
	return true
}

// drainLocked delivers queued notifications in order. Called with e.mu
// held; releases it before returning. Only one goroutine drains at a time,
// so delivery order matches install order and a listener never runs
// concurrently with itself. Listeners run with no lock held and may call
// back into the explorer; a re-entrant update is queued and delivered by
// the active drainer before its call returns.
func (e *Explorer) drainLocked() {
	if e.notifying {
		e.mu.Unlock()
		return
	}
	e.notifying = true
	for len(e.pending) > 0 && !e.closed {
		n := e.pending[0]
		e.pending = e.pending[1:]
		e.mu.Unlock()
		for _, l := range n.targets {
			invoke(l, n.snap)
		}
		e.mu.Lock()
	}
	e.pending = nil
	e.notifying = false
	e.mu.Unlock()
}

// invoke calls a single listener, isolating panics so one failing listener
// cannot stop the rest from being notified.
func invoke(l Listener, s ViewState) {
	defer func() {
		if r := recover(); r != nil {
			debug.Log(debug.EXPLORER, "listener panic: %v", r)
		}
	}()
	l(s)
}

// under reports whether p is a proper descendant of dir.
func under(p, dir string) bool {
	return p != "" && strings.HasPrefix(p, dir+"/")
}

// withoutSubtree filters out every entry below dir, keeping dir itself.
func withoutSubtree(entries []Entry, dir string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, en := range entries {
		if under(en.Path, dir) {
			continue
		}
		out = append(out, en)
	}
	return out
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
