package issuestore

import "testing"

func TestAssetLifecycle(t *testing.T) {
	dir := setupProject(t)
	result, err := Create(dir, CreateOptions{Title: "x"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := AddAsset(dir, result.ID, "screenshot.png", []byte("fakepngdata")); err != nil {
		t.Fatalf("AddAsset: %v", err)
	}

	names, err := ListAssets(dir, result.ID)
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(names) != 1 || names[0] != "screenshot.png" {
		t.Fatalf("unexpected asset list: %v", names)
	}

	data, err := GetAsset(dir, result.ID, "screenshot.png")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if string(data) != "fakepngdata" {
		t.Errorf("unexpected asset content: %q", data)
	}

	if err := DeleteAsset(dir, result.ID, "screenshot.png"); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if _, err := GetAsset(dir, result.ID, "screenshot.png"); err == nil {
		t.Error("expected asset gone after delete")
	}
}

func TestSharedAssets(t *testing.T) {
	dir := setupProject(t)
	names, err := ListSharedAssets(dir)
	if err != nil {
		t.Fatalf("ListSharedAssets: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty shared assets, got %v", names)
	}
}

func TestAddAssetRejectsPathSeparators(t *testing.T) {
	dir := setupProject(t)
	result, err := Create(dir, CreateOptions{Title: "x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := AddAsset(dir, result.ID, "../escape.txt", []byte("x")); err == nil {
		t.Error("expected validation error for path-separator asset name")
	}
}
