package explorer

import (
	"path"
	"time"
)

// Entry is one filesystem node as currently known to the view.
type Entry struct {
	Name         string    // Last path segment including extension
	Path         string    // Slash-normalized path relative to the watched root
	AbsolutePath string    // Fully resolved path for host-level operations
	IsDir        bool
	IsHidden     bool      // Leading-dot name
	Extension    string    // Lower-cased suffix including the dot, "" if none
	Size         int64     // Zero for directories
	ModTime      time.Time // Zero for directories
}

// ViewState is one complete snapshot of everything the view renders.
// Snapshots are immutable: every update builds a fresh value, so a listener
// never observes a partially-applied transition.
type ViewState struct {
	Loading      bool
	Err          string          // Last refresh failure, "" when the last read succeeded
	Entries      []Entry         // Flattened, expansion-filtered projection
	Expanded     map[string]bool // Directory paths whose children are visible
	SelectedPath string          // "" = no selection
	CurrentPath  string          // Root-relative subtree being displayed, "" = root
}

// clone duplicates the entry slice and expansion set for copy-on-write
// updates. Entries are plain values and copy with the slice.
func (s ViewState) clone() ViewState {
	next := s
	next.Entries = make([]Entry, len(s.Entries))
	copy(next.Entries, s.Entries)
	next.Expanded = copyStringBoolMap(s.Expanded)
	return next
}

// Result is the uniform outcome record for operations that can fail.
// Failures are values, not panics: the view layer always gets something
// it can display.
type Result struct {
	Success bool
	Message string // Human-readable outcome, always set
	Err     error  // Lower-level diagnostic, only present on failure
}

func success(message string) Result {
	return Result{Success: true, Message: message}
}

func failure(message string, err error) Result {
	return Result{Message: message, Err: err}
}

// Service is the directory-service capability the explorer consumes.
//
// ReadTree lists the subtree rooted at rel, restricted to expanded
// directories, depth-first with each parent immediately followed by its
// children. It must be all-or-nothing: on error no partial listing is
// returned, so the explorer can keep showing the previous one.
type Service interface {
	ReadTree(rel string, expanded map[string]bool) ([]Entry, error)
	CreateFile(dir, name string) error
	CreateDir(dir, name string) error
	Rename(rel, newName string) error
	Delete(rel string) error
	OpenExternal(rel string) error
	Reveal(rel string) error
}

// parentOf returns the root-relative parent of p, "" for root-level paths.
func parentOf(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

func copyStringBoolMap(m map[string]bool) map[string]bool {
	result := make(map[string]bool, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
