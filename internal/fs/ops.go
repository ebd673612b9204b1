package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/justyntemme/arbor/internal/debug"
	"github.com/justyntemme/arbor/internal/explorer"
	"github.com/justyntemme/arbor/internal/trash"
)

// Common file permission modes
const (
	DirPermission  = 0o755 // Standard directory permissions
	FilePermission = 0o644 // Standard file permissions
)

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateFile creates a new empty file named name inside dir. It fails if
// an entry with that name already exists.
//
// Names are validated here as well as at the explorer layer: a name with a
// separator or ".." would be joined past resolve()'s escape guard, so the
// service refuses it even for direct callers.
func (s *Service) CreateFile(dir, name string) error {
	if err := explorer.ValidateName(name); err != nil {
		return err
	}
	parent, err := s.resolve(dir)
	if err != nil {
		return err
	}
	target := filepath.Join(parent, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePermission)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists", name)
		}
		return err
	}
	debug.Log(debug.FS, "created file %s", target)
	return f.Close()
}

// CreateDir creates a new folder named name inside dir. It fails if an
// entry with that name already exists.
func (s *Service) CreateDir(dir, name string) error {
	if err := explorer.ValidateName(name); err != nil {
		return err
	}
	parent, err := s.resolve(dir)
	if err != nil {
		return err
	}
	target := filepath.Join(parent, name)

	if err := os.Mkdir(target, DirPermission); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists", name)
		}
		return err
	}
	debug.Log(debug.FS, "created folder %s", target)
	return nil
}

// Rename renames the entry at rel to newName within the same directory,
// failing if newName collides with a sibling.
func (s *Service) Rename(rel, newName string) error {
	if err := explorer.ValidateName(newName); err != nil {
		return err
	}
	oldPath, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if !pathExists(oldPath) {
		return fmt.Errorf("%s does not exist", rel)
	}

	newPath := filepath.Join(filepath.Dir(oldPath), newName)
	if oldPath == newPath {
		return nil
	}
	if pathExists(newPath) {
		return fmt.Errorf("%s already exists", newName)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}
	debug.Log(debug.FS, "renamed %s -> %s", oldPath, newPath)
	return nil
}

// Delete moves the entry at rel to the system trash so it stays
// recoverable; where no trash is available it deletes permanently.
func (s *Service) Delete(rel string) error {
	target, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if target == s.root {
		return fmt.Errorf("refusing to delete the watched root")
	}
	if !pathExists(target) {
		return fmt.Errorf("%s does not exist", rel)
	}

	if trash.IsAvailable() {
		debug.Log(debug.TRASH, "moving %s to %s", target, trash.DisplayName())
		return trash.MoveToTrash(target)
	}
	debug.Log(debug.TRASH, "no trash available, deleting %s permanently", target)
	return trash.PermanentDelete(target)
}

// OpenExternal opens the entry with the default system application.
func (s *Service) OpenExternal(rel string) error {
	target, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if !pathExists(target) {
		return fmt.Errorf("%s does not exist", rel)
	}
	return platformOpen(target)
}

// Reveal shows the entry in the system file manager.
func (s *Service) Reveal(rel string) error {
	target, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if !pathExists(target) {
		return fmt.Errorf("%s does not exist", rel)
	}
	return platformReveal(target)
}
