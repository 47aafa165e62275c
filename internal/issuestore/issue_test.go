package issuestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"centy/internal/centyerr"
	"centy/internal/hashutil"
	"centy/internal/manifest"
	"centy/internal/reconcile"
)

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := reconcile.Execute(dir, reconcile.Decisions{}, true, "0.1.0"); err != nil {
		t.Fatalf("reconcile.Execute: %v", err)
	}
	return dir
}

func TestCreateRequiresManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(hashutil.CentyDir(dir), 0755); err != nil {
		t.Fatal(err)
	}
	_, err := Create(dir, CreateOptions{Title: "x"}, nil)
	if err != centyerr.NotInitialized {
		t.Errorf("expected NotInitialized, got %v", err)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	dir := setupProject(t)
	_, err := Create(dir, CreateOptions{Title: "   "}, nil)
	if err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestCreateIssueDefaults(t *testing.T) {
	dir := setupProject(t)
	result, err := Create(dir, CreateOptions{Title: "Login bug"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.DisplayNumber != 1 {
		t.Errorf("expected displayNumber 1, got %d", result.DisplayNumber)
	}
	if len(result.CreatedFiles) != 4 {
		t.Errorf("expected 4 created files, got %v", result.CreatedFiles)
	}

	issue, err := Read(dir, result.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if issue.Priority != 2 {
		t.Errorf("expected default priority 2, got %d", issue.Priority)
	}
	if issue.Status != "open" {
		t.Errorf("expected default status open, got %q", issue.Status)
	}

	issueMD, err := os.ReadFile(filepath.Join(hashutil.CentyDir(dir), "issues", result.ID, "issue.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(issueMD) != "# Login bug\n" {
		t.Errorf("unexpected issue.md: %q", string(issueMD))
	}
}

func TestCreateUpsertsFourManifestEntries(t *testing.T) {
	dir := setupProject(t)
	result, err := Create(dir, CreateOptions{Title: "Bug"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	count := 0
	for _, mf := range result.Manifest.ManagedFiles {
		if len(mf.Path) >= len("issues/"+result.ID) && mf.Path[:len("issues/"+result.ID)] == "issues/"+result.ID {
			count++
		}
	}
	if count != 4 {
		t.Errorf("expected 4 manifest entries for issue, got %d", count)
	}
}

func TestLegacyStringPriorityMigration(t *testing.T) {
	dir := setupProject(t)
	result, err := Create(dir, CreateOptions{Title: "Legacy"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	metadataPath := filepath.Join(hashutil.CentyDir(dir), "issues", result.ID, "metadata.json")
	meta := map[string]interface{}{
		"status":       "open",
		"priority":     "high",
		"createdAt":    hashutil.NowISO8601(),
		"updatedAt":    hashutil.NowISO8601(),
		"customFields": map[string]interface{}{},
	}
	data, _ := json.MarshalIndent(meta, "", "  ")
	if err := os.WriteFile(metadataPath, data, 0644); err != nil {
		t.Fatal(err)
	}

	issue, err := Read(dir, result.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if issue.Priority != 1 {
		t.Errorf("expected priority 1 for legacy 'high' at 3 levels, got %d", issue.Priority)
	}
	if issue.DisplayNumber != 0 {
		t.Errorf("expected displayNumber 0 (missing), got %d", issue.DisplayNumber)
	}
}

func TestUpdateMergesCustomFields(t *testing.T) {
	dir := setupProject(t)
	result, err := Create(dir, CreateOptions{Title: "x", CustomFields: map[string]interface{}{"team": "core"}}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newTitle := "y"
	_, err = Update(dir, result.ID, UpdateOptions{
		Title:        &newTitle,
		CustomFields: map[string]interface{}{"owner": "alice"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	issue, err := Read(dir, result.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if issue.Title != "y" {
		t.Errorf("expected title y, got %q", issue.Title)
	}
	if issue.CustomFields["team"] != "core" {
		t.Errorf("expected team=core preserved, got %v", issue.CustomFields)
	}
	if issue.CustomFields["owner"] != "alice" {
		t.Errorf("expected owner=alice merged in, got %v", issue.CustomFields)
	}
}

func TestDeleteRemovesFolderAndManifestEntries(t *testing.T) {
	dir := setupProject(t)
	result, err := Create(dir, CreateOptions{Title: "x"}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := Delete(dir, result.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := os.Stat(filepath.Join(hashutil.CentyDir(dir), "issues", result.ID)); !os.IsNotExist(err) {
		t.Error("expected issue folder removed")
	}

	m, err := manifest.Load(hashutil.CentyDir(dir))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, mf := range m.ManagedFiles {
		if len(mf.Path) >= 7 && mf.Path[:7] == "issues/" && mf.Path != "issues/" {
			t.Errorf("expected no issue entries after delete, found %s", mf.Path)
		}
	}
}

func TestListFiltersConjunctively(t *testing.T) {
	dir := setupProject(t)
	if _, err := Create(dir, CreateOptions{Title: "a", Status: "open"}, nil); err != nil {
		t.Fatal(err)
	}
	p2 := 2
	if _, err := Create(dir, CreateOptions{Title: "b", Status: "closed", Priority: &p2}, nil); err != nil {
		t.Fatal(err)
	}

	issues, err := List(dir, "open", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(issues) != 1 || issues[0].Title != "a" {
		t.Fatalf("expected only 'a', got %+v", issues)
	}

	issues, err = List(dir, "closed", 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issue with status closed and priority 1, got %+v", issues)
	}

	issues, err = List(dir, "closed", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(issues) != 1 || issues[0].Title != "b" {
		t.Fatalf("expected only 'b', got %+v", issues)
	}
}

func TestReadByDisplayNumber(t *testing.T) {
	dir := setupProject(t)
	result, err := Create(dir, CreateOptions{Title: "first"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	issue, err := ReadByDisplayNumber(dir, result.DisplayNumber)
	if err != nil {
		t.Fatalf("ReadByDisplayNumber: %v", err)
	}
	if issue.ID != result.ID {
		t.Errorf("expected id %s, got %s", result.ID, issue.ID)
	}
}

func TestPriorityOutOfRangeRejected(t *testing.T) {
	dir := setupProject(t)
	bad := 99
	_, err := Create(dir, CreateOptions{Title: "x", Priority: &bad}, nil)
	if err == nil {
		t.Fatal("expected validation error for out-of-range priority")
	}
}
