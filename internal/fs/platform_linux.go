//go:build linux

package fs

import (
	"os/exec"
	"path/filepath"
)

// platformOpen opens the file using 'xdg-open' (default application).
func platformOpen(path string) error {
	return exec.Command("xdg-open", path).Start()
}

// platformReveal shows the file in the system file manager. Most Linux
// file managers lack a portable select flag, so open the containing
// directory instead.
func platformReveal(path string) error {
	return exec.Command("xdg-open", filepath.Dir(path)).Start()
}
