package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	m "github.com/fission-dev/fission/internal/model"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}

		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func TestLocalSourceFSAdapter_CopyDirSkipsVCSAndVendor(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	src := t.TempDir()
	dst := t.TempDir()

	writeTree(t, src, map[string]string{
		"main.go":            "package main\n",
		"pkg/util.go":        "package pkg\n",
		".git/HEAD":          "ref: refs/heads/main\n",
		"vendor/dep/file.go": "package dep\n",
	})

	if err := fs.CopyDir(context.Background(), m.Path(src), m.Path(dst)); err != nil {
		t.Fatalf("CopyDir() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, "pkg", "util.go")); err != nil {
		t.Fatalf("expected pkg/util.go to be copied: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, ".git")); !os.IsNotExist(err) {
		t.Fatalf(".git should not be copied")
	}

	if _, err := os.Stat(filepath.Join(dst, "vendor")); !os.IsNotExist(err) {
		t.Fatalf("vendor should not be copied")
	}
}

func TestLocalSourceFSAdapter_FindProjectRoot(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	root := t.TempDir()

	writeTree(t, root, map[string]string{
		"go.mod":          "module example.com/demo\n",
		"internal/sub.go": "package internal\n",
	})

	found, err := fs.FindProjectRoot(context.Background(), m.Path(filepath.Join(root, "internal", "sub.go")))
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}

	if string(found) != root {
		t.Fatalf("FindProjectRoot() = %s, want %s", found, root)
	}
}

func TestLocalSourceFSAdapter_FindProjectRoot_NotFound(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	root := t.TempDir()

	writeTree(t, root, map[string]string{"main.go": "package main\n"})

	if _, err := fs.FindProjectRoot(context.Background(), m.Path(root)); err == nil {
		t.Fatalf("FindProjectRoot() expected error when no go.mod exists")
	}
}

func TestLocalSourceFSAdapter_WalkNonRecursive(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	root := t.TempDir()

	writeTree(t, root, map[string]string{
		"top.go":        "package main\n",
		"nested/sub.go": "package nested\n",
	})

	var seen []string

	err := fs.Walk(context.Background(), m.Path(root), false, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			seen = append(seen, filepath.Base(path))
		}

		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	if len(seen) != 1 || seen[0] != "top.go" {
		t.Fatalf("Walk() non-recursive saw %v, want [top.go]", seen)
	}
}

func TestLocalSourceFSAdapter_WalkContextCancellation(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	root := t.TempDir()

	writeTree(t, root, map[string]string{"main.go": "package main\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fs.Walk(ctx, m.Path(root), true, func(_ string, _ os.FileInfo, _ error) error {
		return nil
	})
	if err == nil {
		t.Fatalf("Walk() expected error due to context cancellation")
	}
}
