// Package trash provides cross-platform trash/recycle bin functionality.
// It moves files to the system trash instead of permanently deleting them,
// so an explorer delete stays recoverable.
package trash

import "os"

// MoveToTrash moves a file or directory to the system trash.
// Returns an error if the operation fails.
func MoveToTrash(path string) error {
	return moveToTrash(path)
}

// IsAvailable returns true if trash functionality is available on this
// platform. When it is not, callers should fall back to PermanentDelete.
func IsAvailable() bool {
	return isAvailable()
}

// PermanentDelete permanently deletes a file or directory without using
// the trash.
func PermanentDelete(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// DisplayName returns the platform-appropriate name for the trash.
// "Trash" on macOS/Linux, "Recycle Bin" on Windows.
func DisplayName() string {
	return displayName()
}
