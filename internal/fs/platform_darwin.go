//go:build darwin

package fs

import "os/exec"

// platformOpen opens the file using the macOS 'open' command.
func platformOpen(path string) error {
	return exec.Command("open", path).Start()
}

// platformReveal reveals the file in Finder.
func platformReveal(path string) error {
	return exec.Command("open", "-R", path).Start()
}
