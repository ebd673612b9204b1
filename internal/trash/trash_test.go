package trash

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPermanentDelete(t *testing.T) {
	root := t.TempDir()

	file := filepath.Join(root, "a.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := PermanentDelete(file); err != nil {
		t.Fatalf("PermanentDelete file: %v", err)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Error("file still present")
	}

	dir := filepath.Join(root, "nested")
	if err := os.MkdirAll(filepath.Join(dir, "inner"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := PermanentDelete(dir); err != nil {
		t.Fatalf("PermanentDelete dir: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory still present")
	}

	if err := PermanentDelete(filepath.Join(root, "missing")); err == nil {
		t.Error("expected error for a nonexistent path")
	}
}

func TestMoveToTrashLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("freedesktop trash layout is linux-only")
	}
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	if !IsAvailable() {
		t.Fatal("trash should be available with a writable XDG_DATA_HOME")
	}

	root := t.TempDir()
	file := filepath.Join(root, "doomed.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := MoveToTrash(file); err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Error("file still at original location")
	}
	if _, err := os.Stat(filepath.Join(dataHome, "Trash", "files", "doomed.txt")); err != nil {
		t.Errorf("trashed file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataHome, "Trash", "info", "doomed.txt.trashinfo")); err != nil {
		t.Errorf("trashinfo missing: %v", err)
	}

	// A second file with the same name gets a numbered slot.
	if err := os.WriteFile(file, []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := MoveToTrash(file); err != nil {
		t.Fatalf("MoveToTrash conflict: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataHome, "Trash", "files", "doomed.1.txt")); err != nil {
		t.Errorf("conflict slot missing: %v", err)
	}
}
