package manifest

import (
	"testing"
)

func TestLoadMissingReturnsNil(t *testing.T) {
	dir := t.TempDir()
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil manifest, got %+v", m)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := New("0.1.0")
	Upsert(m, NewManagedFile("issues/", TypeDirectory, nil, "0.1.0"))
	Upsert(m, NewManagedFile("README.md", TypeFile, []byte("hello"), "0.1.0"))

	if err := Save(dir, m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil || len(loaded.ManagedFiles) != 2 {
		t.Fatalf("expected 2 managed files, got %+v", loaded)
	}
	// Sorted by path: README.md < issues/
	if loaded.ManagedFiles[0].Path != "README.md" {
		t.Errorf("expected README.md first, got %s", loaded.ManagedFiles[0].Path)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	m := New("0.1.0")
	Upsert(m, NewManagedFile("README.md", TypeFile, []byte("v1"), "0.1.0"))
	Upsert(m, NewManagedFile("README.md", TypeFile, []byte("v2"), "0.1.0"))

	if len(m.ManagedFiles) != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", len(m.ManagedFiles))
	}
	mf, ok := Find(m, "README.md")
	if !ok {
		t.Fatal("expected to find README.md")
	}
	if mf.Hash != hashOf("v2") {
		t.Errorf("expected hash of v2 content, got %s", mf.Hash)
	}
}

func TestManagedFileInvariantM2(t *testing.T) {
	dirEntry := NewManagedFile("issues/", TypeDirectory, nil, "0.1.0")
	if dirEntry.Hash != "" {
		t.Errorf("directory entry must have empty hash, got %q", dirEntry.Hash)
	}
	fileEntry := NewManagedFile("README.md", TypeFile, []byte("x"), "0.1.0")
	if fileEntry.Hash == "" {
		t.Error("file entry must have non-empty hash")
	}
}

func TestRemovePrefix(t *testing.T) {
	m := New("0.1.0")
	Upsert(m, NewManagedFile("issues/abc/", TypeDirectory, nil, "0.1.0"))
	Upsert(m, NewManagedFile("issues/abc/issue.md", TypeFile, []byte("x"), "0.1.0"))
	Upsert(m, NewManagedFile("issues/xyz/issue.md", TypeFile, []byte("y"), "0.1.0"))

	RemovePrefix(m, "issues/abc/")

	if len(m.ManagedFiles) != 1 {
		t.Fatalf("expected 1 entry remaining, got %d", len(m.ManagedFiles))
	}
	if m.ManagedFiles[0].Path != "issues/xyz/issue.md" {
		t.Errorf("unexpected surviving entry: %s", m.ManagedFiles[0].Path)
	}
}

func hashOf(s string) string {
	mf := NewManagedFile("x", TypeFile, []byte(s), "0.1.0")
	return mf.Hash
}
