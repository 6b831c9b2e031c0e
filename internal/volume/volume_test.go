package volume

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeDirMissing(t *testing.T) {
	n, err := SanitizeDir(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("SanitizeDir: %v", err)
	}
	if n != 0 {
		t.Errorf("removed %d files from a missing directory", n)
	}
}

func TestSanitizeDirRemovesOnlyDisallowed(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.acelive", "b.sauth", "c.tmp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	n, err := SanitizeDir(dir)
	if err != nil {
		t.Fatalf("SanitizeDir: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d files, want 1", n)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	if len(left) != 2 {
		t.Fatalf("files left = %v, want a.acelive and b.sauth", left)
	}
	for _, name := range left {
		if name == "c.tmp" {
			t.Errorf("c.tmp survived the sweep")
		}
	}
}

func TestSanitizeDirSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested.tmp")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "inner.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	n, err := SanitizeDir(dir)
	if err != nil {
		t.Fatalf("SanitizeDir: %v", err)
	}
	if n != 0 {
		t.Errorf("removed %d, want 0 (directories are never touched)", n)
	}
	if _, err := os.Stat(filepath.Join(sub, "inner.tmp")); err != nil {
		t.Errorf("nested file touched: %v", err)
	}
}
