package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCreateFile(t *testing.T) {
	svc, root := makeTree(t)

	if err := svc.CreateFile("docs", "notes.md"); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if !pathExists(filepath.Join(root, "docs", "notes.md")) {
		t.Error("file was not created")
	}

	// Root-level creation with the empty relative path.
	if err := svc.CreateFile("", "todo.txt"); err != nil {
		t.Fatalf("CreateFile at root: %v", err)
	}
	if !pathExists(filepath.Join(root, "todo.txt")) {
		t.Error("root-level file was not created")
	}
}

func TestCreateFileCollision(t *testing.T) {
	svc, _ := makeTree(t)

	if err := svc.CreateFile("", "readme.md"); err == nil {
		t.Error("expected collision error for an existing file")
	}
	// Colliding with a directory of the same name also fails.
	if err := svc.CreateFile("", "docs"); err == nil {
		t.Error("expected collision error for an existing directory")
	}
}

func TestCreateDir(t *testing.T) {
	svc, root := makeTree(t)

	if err := svc.CreateDir("", "Notes"); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "Notes"))
	if err != nil || !info.IsDir() {
		t.Errorf("Notes was not created as a directory: %v", err)
	}

	if err := svc.CreateDir("", "Notes"); err == nil {
		t.Error("expected collision error")
	}
	if err := svc.CreateDir("no-such-parent", "x"); err == nil {
		t.Error("expected error for a missing parent")
	}
}

func TestRename(t *testing.T) {
	svc, root := makeTree(t)

	if err := svc.Rename("readme.md", "README.txt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if pathExists(filepath.Join(root, "readme.md")) || !pathExists(filepath.Join(root, "README.txt")) {
		t.Error("rename did not move the file")
	}

	// Renaming a directory keeps its contents.
	if err := svc.Rename("docs", "papers"); err != nil {
		t.Fatalf("Rename dir: %v", err)
	}
	if !pathExists(filepath.Join(root, "papers", "a.md")) {
		t.Error("directory contents lost on rename")
	}
}

func TestRenameErrors(t *testing.T) {
	svc, _ := makeTree(t)

	if err := svc.Rename("missing.txt", "x.txt"); err == nil {
		t.Error("expected error for a nonexistent source")
	}
	if err := svc.Rename("readme.md", ".gitignore"); err == nil {
		t.Error("expected collision error")
	}
	// Same-name rename is a no-op, not an error.
	if err := svc.Rename("readme.md", "readme.md"); err != nil {
		t.Errorf("same-name rename should be a no-op, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	if runtime.GOOS == "linux" {
		// Redirect the freedesktop trash into the test sandbox.
		t.Setenv("XDG_DATA_HOME", t.TempDir())
	}
	svc, root := makeTree(t)

	if err := svc.Delete("readme.md"); err != nil {
		t.Fatalf("Delete file: %v", err)
	}
	if pathExists(filepath.Join(root, "readme.md")) {
		t.Error("file still present after delete")
	}

	if err := svc.Delete("docs"); err != nil {
		t.Fatalf("Delete dir: %v", err)
	}
	if pathExists(filepath.Join(root, "docs")) {
		t.Error("directory still present after delete")
	}
}

func TestDeleteErrors(t *testing.T) {
	svc, _ := makeTree(t)

	if err := svc.Delete(""); err == nil {
		t.Error("deleting the watched root must be refused")
	}
	if err := svc.Delete("missing.txt"); err == nil {
		t.Error("expected error for a nonexistent target")
	}
	if err := svc.Delete("../outside"); err == nil {
		t.Error("expected error for an escaping path")
	}
}

func TestMutationsRejectUnsafeNames(t *testing.T) {
	svc, root := makeTree(t)

	badNames := []string{"", "..", "../escape.txt", "a/b.txt", `a\b.txt`, "a:b"}
	for _, name := range badNames {
		if err := svc.CreateFile("", name); err == nil {
			t.Errorf("CreateFile(%q) should be rejected", name)
		}
		if err := svc.CreateDir("", name); err == nil {
			t.Errorf("CreateDir(%q) should be rejected", name)
		}
		if err := svc.Rename("readme.md", name); err == nil {
			t.Errorf("Rename to %q should be rejected", name)
		}
	}

	// Nothing leaked past the watched root and the source is untouched.
	if pathExists(filepath.Join(filepath.Dir(root), "escape.txt")) {
		t.Error("a rejected name still created a file outside the root")
	}
	if !pathExists(filepath.Join(root, "readme.md")) {
		t.Error("a rejected rename still moved the source")
	}
}

func TestOpsRejectEscapes(t *testing.T) {
	svc, _ := makeTree(t)

	if err := svc.CreateFile("..", "evil.txt"); err == nil {
		t.Error("CreateFile must not escape the root")
	}
	if err := svc.CreateDir("../..", "evil"); err == nil {
		t.Error("CreateDir must not escape the root")
	}
	if err := svc.Rename("../outside", "x"); err == nil {
		t.Error("Rename must not escape the root")
	}
}
