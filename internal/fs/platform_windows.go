//go:build windows

package fs

import "os/exec"

// platformOpen opens the file using the Windows 'start' command.
func platformOpen(path string) error {
	// 'cmd /c start "" "path"' is the standard way to launch files in Windows
	return exec.Command("cmd", "/c", "start", "", path).Start()
}

// platformReveal opens Explorer with the file selected.
func platformReveal(path string) error {
	return exec.Command("explorer", "/select,", path).Start()
}
