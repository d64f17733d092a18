package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir, ".md")
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestNewFS_MissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope"), ".md"); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestNewFS_RootNotDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFS(file, ".md"); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("---\ntitle: T\n---\nBody\n")
	if err := s.Write("guides/intro.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("guides/intro.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestList_SortedAndFiltered(t *testing.T) {
	s := tempRoot(t)
	for _, p := range []string{"z/last.md", "a/first.md", "middle.md"} {
		if err := s.Write(p, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Write("a/ignored.txt", []byte("not a doc")); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a/first.md", "middle.md", "z/last.md"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Path != want[i] {
			t.Errorf("entries[%d].Path = %q, want %q", i, e.Path, want[i])
		}
		if e.Checksum == "" {
			t.Errorf("entries[%d] has empty checksum", i)
		}
	}
}

func TestList_UnreadableFileRecordedNotFatal(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("good.md", []byte("ok")); err != nil {
		t.Fatal(err)
	}
	// A dangling symlink passes the extension check but cannot be read.
	if err := os.Symlink(filepath.Join(s.Root(), "missing-target"), filepath.Join(s.Root(), "broken.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Path != "broken.md" || entries[0].Err == nil {
		t.Errorf("entries[0] = %+v, want broken.md carrying an error", entries[0])
	}
	if entries[1].Path != "good.md" || entries[1].Err != nil || entries[1].Checksum == "" {
		t.Errorf("entries[1] = %+v, want readable good.md with checksum", entries[1])
	}
}

func TestSafePath_RejectsTraversal(t *testing.T) {
	s := tempRoot(t)
	if _, err := s.Read("../outside.md"); err == nil {
		t.Error("expected traversal to be rejected")
	}
	if err := s.Write("/abs.md", []byte("x")); err == nil {
		t.Error("expected absolute path to be rejected")
	}
}

func TestDelete(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("gone.md", []byte("bye"))
	if err := s.Delete("gone.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("gone.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestChecksum_Stable(t *testing.T) {
	a := Checksum([]byte("same"))
	b := Checksum([]byte("same"))
	if a != b {
		t.Errorf("checksum not stable: %s vs %s", a, b)
	}
	if a == Checksum([]byte("different")) {
		t.Error("different content produced equal checksums")
	}
}
