package issuestore

import (
	"os"
	"path/filepath"
	"strings"

	"centy/internal/centyerr"
	"centy/internal/hashutil"
	"centy/internal/manifest"
)

// AddAsset writes an opaque binary file scoped to issue id's assets/
// folder and upserts its manifest entry.
func AddAsset(projectPath, id, name string, data []byte) error {
	if strings.ContainsAny(name, "/\\") {
		return centyerr.ValidationError
	}
	dir := issueDir(projectPath, id)
	if _, err := os.Stat(dir); err != nil {
		return centyerr.NotFound
	}
	assetPath := filepath.Join(dir, "assets", name)
	if err := os.WriteFile(assetPath, data, 0644); err != nil {
		return err
	}

	centyDir := hashutil.CentyDir(projectPath)
	m, err := manifest.Load(centyDir)
	if err != nil {
		return err
	}
	if m == nil {
		return centyerr.NotInitialized
	}
	manifest.Upsert(m, manifest.NewManagedFile(issueRelPath(id, "assets/"+name), manifest.TypeFile, data, ""))
	return manifest.Save(centyDir, m)
}

// GetAsset reads one per-issue asset's bytes.
func GetAsset(projectPath, id, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(issueDir(projectPath, id), "assets", name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, centyerr.NotFound
		}
		return nil, err
	}
	return data, nil
}

// ListAssets returns the names of every asset scoped to issue id.
func ListAssets(projectPath, id string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(issueDir(projectPath, id), "assets"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// DeleteAsset removes one per-issue asset and its manifest entry.
func DeleteAsset(projectPath, id, name string) error {
	path := filepath.Join(issueDir(projectPath, id), "assets", name)
	if _, err := os.Stat(path); err != nil {
		return centyerr.NotFound
	}
	if err := os.Remove(path); err != nil {
		return err
	}

	centyDir := hashutil.CentyDir(projectPath)
	m, err := manifest.Load(centyDir)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	manifest.RemovePrefix(m, issueRelPath(id, "assets/"+name))
	return manifest.Save(centyDir, m)
}

// ListSharedAssets returns the names of files under the project-wide
// .centy/assets/ directory, distinct from any issue's own assets/.
func ListSharedAssets(projectPath string) ([]string, error) {
	dir := filepath.Join(hashutil.CentyDir(projectPath), "assets")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
