// Package fs implements the directory service the explorer consumes: an
// expansion-constrained recursive listing plus single-entry mutations and
// the platform open/reveal actions.
package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/justyntemme/arbor/internal/debug"
	"github.com/justyntemme/arbor/internal/explorer"
)

// Service serves one watched root. All relative paths it accepts are
// slash-separated and validated against escaping the root.
type Service struct {
	root string // Absolute path of the watched root
}

// New binds a service to rootPath, which must be an existing directory.
func New(rootPath string) (*Service, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}
	return &Service{root: abs}, nil
}

// Root returns the absolute path of the watched root.
func (s *Service) Root() string {
	return s.root
}

// ReadTree lists the subtree at rel, descending only into expanded
// directories. The result is depth-first: each directory immediately
// followed by its children, siblings ordered directories first then
// case-insensitively by name.
//
// The read is all-or-nothing: a directory that fails to list aborts the
// whole walk with an error, so callers never see a partial tree.
func (s *Service) ReadTree(rel string, expanded map[string]bool) ([]explorer.Entry, error) {
	base, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	debug.Log(debug.FS, "ReadTree: base=%q expanded=%d", base, len(expanded))

	byParent := make(map[string][]explorer.Entry)
	var mu sync.Mutex

	conf := &fastwalk.Config{
		Follow: true, // Follow symlinks to get target info
	}

	walkErr := fastwalk.Walk(conf, base, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			// Partial listings are not mergeable with the previous full
			// one, so any walk error fails the whole read.
			return err
		}
		if fullPath == base {
			return nil
		}

		sub, relErr := filepath.Rel(base, fullPath)
		if relErr != nil {
			return relErr
		}
		key := joinRel(rel, filepath.ToSlash(sub))

		entry, statErr := s.newEntry(fullPath, key, d)
		if statErr != nil {
			// Broken symlinks and vanished files are skipped, not fatal.
			debug.Log(debug.FS_ENTRY, "ReadTree: skipping %q: %v", key, statErr)
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		mu.Lock()
		parent := parentIn(rel, key)
		byParent[parent] = append(byParent[parent], entry)
		mu.Unlock()

		// Descend only into expanded directories.
		if entry.IsDir && !expanded[key] {
			return fastwalk.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		debug.Log(debug.FS, "ReadTree: walk error: %v", walkErr)
		return nil, walkErr
	}

	entries := appendSubtree(nil, byParent, rel, expanded)
	debug.Log(debug.FS, "ReadTree: %d entries", len(entries))
	return entries, nil
}

// newEntry builds an Entry for one walked node. Directories omit size and
// modification time.
func (s *Service) newEntry(fullPath, key string, d fs.DirEntry) (explorer.Entry, error) {
	info, err := fastwalk.StatDirEntry(fullPath, d)
	if err != nil {
		// Lstat fallback for symlinks whose target is inaccessible.
		info, err = os.Lstat(fullPath)
		if err != nil {
			return explorer.Entry{}, err
		}
	}

	name := d.Name()
	entry := explorer.Entry{
		Name:         name,
		Path:         key,
		AbsolutePath: fullPath,
		IsDir:        info.IsDir(),
		IsHidden:     strings.HasPrefix(name, "."),
	}
	if !entry.IsDir {
		entry.Extension = extensionOf(name)
		entry.Size = info.Size()
		entry.ModTime = info.ModTime()
	}
	return entry, nil
}

// appendSubtree emits parent's sorted children depth-first, recursing into
// expanded directories.
func appendSubtree(out []explorer.Entry, byParent map[string][]explorer.Entry, parent string, expanded map[string]bool) []explorer.Entry {
	children := byParent[parent]
	sortSiblings(children)
	for _, c := range children {
		out = append(out, c)
		if c.IsDir && expanded[c.Path] {
			out = appendSubtree(out, byParent, c.Path, expanded)
		}
	}
	return out
}

// sortSiblings orders directories before files, then case-insensitively
// by name.
func sortSiblings(entries []explorer.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}

// extensionOf returns the lower-cased extension including the dot, or ""
// for names without one. A bare dotfile like ".gitignore" has no extension.
func extensionOf(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return ""
	}
	return strings.ToLower(ext)
}

// resolve maps a slash-relative path to an absolute one under the root,
// rejecting anything that escapes it.
func (s *Service) resolve(rel string) (string, error) {
	if rel == "" {
		return s.root, nil
	}
	clean := path.Clean(rel)
	if clean == "." {
		return s.root, nil
	}
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path %q escapes the watched root", rel)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// parentIn returns the root-relative parent of key, clamped to the view
// root rel for top-level entries.
func parentIn(rel, key string) string {
	dir := path.Dir(key)
	if dir == "." || dir == "/" {
		return ""
	}
	if rel != "" && !strings.HasPrefix(dir, rel) {
		return rel
	}
	return dir
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
