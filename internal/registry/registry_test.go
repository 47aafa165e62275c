package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"centy/internal/centyerr"
)

func TestTrackCreatesEntry(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()

	if err := Track(home, project); err != nil {
		t.Fatalf("Track: %v", err)
	}

	info, err := GetProjectInfo(home, project)
	if err != nil {
		t.Fatalf("GetProjectInfo: %v", err)
	}
	if info.FirstAccessed != info.LastAccessed {
		t.Error("expected firstAccessed == lastAccessed on first track")
	}
}

func TestTrackBumpsLastAccessed(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()

	if err := Track(home, project); err != nil {
		t.Fatal(err)
	}
	first, err := GetProjectInfo(home, project)
	if err != nil {
		t.Fatal(err)
	}

	// Timestamps have one-second resolution.
	time.Sleep(1100 * time.Millisecond)

	if err := Track(home, project); err != nil {
		t.Fatal(err)
	}
	second, err := GetProjectInfo(home, project)
	if err != nil {
		t.Fatal(err)
	}

	if second.FirstAccessed != first.FirstAccessed {
		t.Error("expected firstAccessed to stay stable across re-tracks")
	}
	if second.LastAccessed <= first.LastAccessed {
		t.Errorf("expected lastAccessed bumped, got %q then %q", first.LastAccessed, second.LastAccessed)
	}
}

func TestUntrackRemovesEntry(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()

	if err := Track(home, project); err != nil {
		t.Fatal(err)
	}
	if err := Untrack(home, project); err != nil {
		t.Fatalf("Untrack: %v", err)
	}
	if _, err := GetProjectInfo(home, project); err != centyerr.ProjectNotFound {
		t.Errorf("expected ProjectNotFound, got %v", err)
	}
}

func TestUntrackMissingFails(t *testing.T) {
	home := t.TempDir()
	if err := Untrack(home, "/nonexistent/path"); err != centyerr.ProjectNotFound {
		t.Errorf("expected ProjectNotFound, got %v", err)
	}
}

func TestListExcludesStaleByDefault(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	gone := filepath.Join(t.TempDir(), "deleted")
	if err := os.MkdirAll(gone, 0755); err != nil {
		t.Fatal(err)
	}

	if err := Track(home, project); err != nil {
		t.Fatal(err)
	}
	if err := Track(home, gone); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(gone); err != nil {
		t.Fatal(err)
	}

	projects, err := List(home, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, p := range projects {
		if p.Path == gone {
			t.Error("expected stale project excluded")
		}
	}

	all, err := List(home, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 entries with includeStale, got %d", len(all))
	}
}

func TestAtomicWriteUsesTempAndRename(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	if err := Track(home, project); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(home)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" && e.Name() != "projects.json" {
			t.Errorf("unexpected leftover file in registry dir: %s", e.Name())
		}
	}
}
