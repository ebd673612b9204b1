//go:build darwin

package trash

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// macOS uses ~/.Trash for the user's trash. Files are moved there directly
// without metadata files (unlike the Linux freedesktop spec); name
// conflicts are resolved by appending a timestamp.

func getPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".Trash")
}

func isAvailable() bool {
	trashPath := getPath()
	if trashPath == "" {
		return false
	}
	info, err := os.Stat(trashPath)
	return err == nil && info.IsDir()
}

func moveToTrash(path string) error {
	trashPath := getPath()
	if trashPath == "" {
		return fmt.Errorf("trash directory not found")
	}

	baseName := filepath.Base(path)
	destPath := filepath.Join(trashPath, baseName)
	if _, err := os.Stat(destPath); err == nil {
		ext := filepath.Ext(baseName)
		name := strings.TrimSuffix(baseName, ext)
		timestamp := time.Now().Format("2006-01-02-150405")
		destPath = filepath.Join(trashPath, fmt.Sprintf("%s %s%s", name, timestamp, ext))
	}

	// Rename is fastest when the trash is on the same filesystem
	if err := os.Rename(path, destPath); err != nil {
		return moveCrossDevice(path, destPath)
	}
	return nil
}

// moveCrossDevice handles moving entries across filesystems via copy+delete.
func moveCrossDevice(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if srcInfo.IsDir() {
		if err := copyDirRecursive(src, dst); err != nil {
			return err
		}
		return os.RemoveAll(src)
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

func copyDirRecursive(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyDirRecursive(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func displayName() string {
	return "Trash"
}
