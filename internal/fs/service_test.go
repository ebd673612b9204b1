package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/justyntemme/arbor/internal/explorer"
)

// makeTree builds a small fixture:
//
//	root/
//	  docs/
//	    img/
//	      logo.png
//	    a.md
//	  src/
//	    main.go
//	  .hidden/
//	    secret.txt
//	  .gitignore
//	  readme.md
func makeTree(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()

	dirs := []string{"docs", "docs/img", "src", ".hidden"}
	files := map[string]string{
		"docs/img/logo.png":  "png",
		"docs/a.md":          "# a",
		"src/main.go":        "package main",
		".hidden/secret.txt": "shh",
		".gitignore":         "*.tmp",
		"readme.md":          "hello world",
	}

	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	for f, content := range files {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(f)), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}

	svc, err := New(root)
	if err != nil {
		t.Fatalf("New(%s): %v", root, err)
	}
	return svc, root
}

func treePaths(entries []explorer.Entry) []string {
	out := make([]string, len(entries))
	for i, en := range entries {
		out[i] = en.Path
	}
	return out
}

func expectPaths(t *testing.T, got []explorer.Entry, expected []string) {
	t.Helper()
	gotPaths := treePaths(got)
	if len(gotPaths) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, gotPaths)
	}
	for i := range expected {
		if gotPaths[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, gotPaths)
		}
	}
}

func TestNewRejectsNonDirectories(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(file); err == nil {
		t.Error("expected error for a plain-file root")
	}
	if _, err := New(filepath.Join(root, "nope")); err == nil {
		t.Error("expected error for a nonexistent root")
	}
}

func TestReadTreeCollapsedShowsOnlyTopLevel(t *testing.T) {
	svc, _ := makeTree(t)

	entries, err := svc.ReadTree("", nil)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}

	// Directories first, then files, case-insensitive within each group.
	expectPaths(t, entries, []string{".hidden", "docs", "src", ".gitignore", "readme.md"})
}

func TestReadTreeDescendsOnlyExpanded(t *testing.T) {
	svc, _ := makeTree(t)

	expanded := map[string]bool{"docs": true}
	entries, err := svc.ReadTree("", expanded)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}

	// docs is expanded but docs/img is not, so img appears without children.
	expectPaths(t, entries, []string{
		".hidden", "docs", "docs/img", "docs/a.md", "src", ".gitignore", "readme.md",
	})
}

func TestReadTreeNestedExpansion(t *testing.T) {
	svc, _ := makeTree(t)

	expanded := map[string]bool{"docs": true, "docs/img": true}
	entries, err := svc.ReadTree("", expanded)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}

	expectPaths(t, entries, []string{
		".hidden", "docs", "docs/img", "docs/img/logo.png", "docs/a.md",
		"src", ".gitignore", "readme.md",
	})
}

func TestReadTreeExpandedChildOfCollapsedParentStaysHidden(t *testing.T) {
	svc, _ := makeTree(t)

	// docs/img expanded but docs collapsed: nothing under docs is visible.
	entries, err := svc.ReadTree("", map[string]bool{"docs/img": true})
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}

	expectPaths(t, entries, []string{".hidden", "docs", "src", ".gitignore", "readme.md"})
}

func TestReadTreeSubtreeRoot(t *testing.T) {
	svc, _ := makeTree(t)

	entries, err := svc.ReadTree("docs", map[string]bool{"docs/img": true})
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}

	expectPaths(t, entries, []string{"docs/img", "docs/img/logo.png", "docs/a.md"})
}

func TestReadTreeEntryFields(t *testing.T) {
	svc, root := makeTree(t)

	entries, err := svc.ReadTree("", map[string]bool{"docs": true})
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}

	byPath := make(map[string]explorer.Entry, len(entries))
	for _, en := range entries {
		byPath[en.Path] = en
	}

	readme, ok := byPath["readme.md"]
	if !ok {
		t.Fatal("readme.md missing")
	}
	if readme.Name != "readme.md" || readme.IsDir || readme.IsHidden {
		t.Errorf("unexpected readme entry: %+v", readme)
	}
	if readme.Extension != ".md" {
		t.Errorf("Extension = %q, expected .md", readme.Extension)
	}
	if readme.Size != int64(len("hello world")) {
		t.Errorf("Size = %d", readme.Size)
	}
	if readme.ModTime.IsZero() {
		t.Error("file ModTime should be set")
	}
	if readme.AbsolutePath != filepath.Join(root, "readme.md") {
		t.Errorf("AbsolutePath = %q", readme.AbsolutePath)
	}

	docs, ok := byPath["docs"]
	if !ok {
		t.Fatal("docs missing")
	}
	if !docs.IsDir || docs.Size != 0 || !docs.ModTime.Equal(time.Time{}) {
		t.Errorf("directories should omit size and mtime: %+v", docs)
	}
	if docs.Extension != "" {
		t.Errorf("directory Extension = %q", docs.Extension)
	}

	gitignore := byPath[".gitignore"]
	if !gitignore.IsHidden {
		t.Error(".gitignore should be hidden")
	}
	if gitignore.Extension != "" {
		t.Errorf("bare dotfile Extension = %q, expected none", gitignore.Extension)
	}
}

func TestReadTreeRejectsEscapes(t *testing.T) {
	svc, _ := makeTree(t)

	for _, rel := range []string{"..", "../etc", "docs/../..", "/etc"} {
		if _, err := svc.ReadTree(rel, nil); err == nil {
			t.Errorf("ReadTree(%q) should refuse to escape the root", rel)
		}
	}
}

func TestReadTreeMissingSubtreeFails(t *testing.T) {
	svc, _ := makeTree(t)

	if _, err := svc.ReadTree("no-such-dir", nil); err == nil {
		t.Error("expected error for a nonexistent subtree")
	}
}

func TestExtensionOf(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{"readme.md", ".md"},
		{"archive.TAR", ".tar"},
		{"Makefile", ""},
		{".gitignore", ""},
		{"a.b.c", ".c"},
	}

	for _, tc := range testCases {
		if got := extensionOf(tc.name); got != tc.expected {
			t.Errorf("extensionOf(%q) = %q, expected %q", tc.name, got, tc.expected)
		}
	}
}
