//go:build linux

package trash

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Linux uses the freedesktop.org trash specification.
// Trash location: ~/.local/share/Trash/
// Structure:
//   - files/     - actual trashed files
//   - info/      - .trashinfo metadata files
//
// .trashinfo format:
// [Trash Info]
// Path=/original/path/to/file
// DeletionDate=2024-01-15T10:30:45

func getPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "Trash")
}

func getFilesPath() string {
	return filepath.Join(getPath(), "files")
}

func getInfoPath() string {
	return filepath.Join(getPath(), "info")
}

func isAvailable() bool {
	trashPath := getPath()
	if trashPath == "" {
		return false
	}
	if err := os.MkdirAll(getFilesPath(), 0700); err != nil {
		return false
	}
	if err := os.MkdirAll(getInfoPath(), 0700); err != nil {
		return false
	}
	return true
}

func moveToTrash(path string) error {
	filesPath := getFilesPath()
	infoPath := getInfoPath()

	if err := os.MkdirAll(filesPath, 0700); err != nil {
		return fmt.Errorf("cannot create trash files directory: %w", err)
	}
	if err := os.MkdirAll(infoPath, 0700); err != nil {
		return fmt.Errorf("cannot create trash info directory: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	// Generate a unique name in the trash, appending numbers on conflict
	baseName := filepath.Base(absPath)
	destName := baseName
	destPath := filepath.Join(filesPath, destName)

	counter := 1
	for {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(baseName)
		name := strings.TrimSuffix(baseName, ext)
		destName = fmt.Sprintf("%s.%d%s", name, counter, ext)
		destPath = filepath.Join(filesPath, destName)
		counter++
	}

	infoContent := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		url.PathEscape(absPath),
		time.Now().Format("2006-01-02T15:04:05"))

	infoFilePath := filepath.Join(infoPath, destName+".trashinfo")
	if err := os.WriteFile(infoFilePath, []byte(infoContent), 0600); err != nil {
		return fmt.Errorf("cannot create trashinfo file: %w", err)
	}

	if err := os.Rename(absPath, destPath); err != nil {
		// Clean up info file on failure
		os.Remove(infoFilePath)
		return fmt.Errorf("cannot move file to trash: %w", err)
	}

	return nil
}

func displayName() string {
	return "Trash"
}
