package reconcile

import (
	"os"
	"path/filepath"

	"centy/internal/catalog"
	"centy/internal/fsutil"
	"centy/internal/hashutil"
	"centy/internal/manifest"
)

// Decisions records the caller's choices for paths that are not
// unconditionally materialized.
type Decisions struct {
	Restore map[string]bool
	Reset   map[string]bool
}

// Result is the outcome of Execute.
type Result struct {
	Created  []string
	Restored []string
	Reset    []string
	Skipped  []string
	Manifest *manifest.Manifest
}

// Execute ensures .centy/ exists, builds a fresh plan, and materializes it
// according to decisions and force.
func Execute(projectPath string, decisions Decisions, force bool, daemonVersion string) (*Result, error) {
	centyDir := hashutil.CentyDir(projectPath)
	if err := os.MkdirAll(centyDir, 0755); err != nil {
		return nil, err
	}
	if err := fsutil.SweepStaleLocks(centyDir); err != nil {
		return nil, err
	}

	m, err := manifest.Load(centyDir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.New(daemonVersion)
	}

	plan, err := BuildPlan(projectPath)
	if err != nil {
		return nil, err
	}

	result := &Result{Manifest: m}

	for _, fi := range plan.ToCreate {
		if err := materialize(centyDir, fi.Path); err != nil {
			return nil, err
		}
		upsertFromCatalog(m, fi.Path, daemonVersion)
		result.Created = append(result.Created, fi.Path)
	}

	for _, fi := range plan.ToRestore {
		if force || decisions.Restore[fi.Path] {
			if err := materialize(centyDir, fi.Path); err != nil {
				return nil, err
			}
			upsertFromCatalog(m, fi.Path, daemonVersion)
			result.Restored = append(result.Restored, fi.Path)
		} else {
			result.Skipped = append(result.Skipped, fi.Path)
		}
	}

	for _, fi := range plan.ToReset {
		if decisions.Reset[fi.Path] {
			if err := materialize(centyDir, fi.Path); err != nil {
				return nil, err
			}
			upsertFromCatalog(m, fi.Path, daemonVersion)
			result.Reset = append(result.Reset, fi.Path)
		} else {
			// Keep the user's file, but record its actual hash so the
			// manifest reflects reality.
			manifest.Upsert(m, manifest.ManagedFile{
				Path:      fi.Path,
				Hash:      fi.Hash,
				Version:   daemonVersion,
				CreatedAt: hashutil.NowISO8601(),
				Type:      manifest.TypeFile,
			})
		}
	}

	for _, fi := range plan.UpToDate {
		upsertFromCatalog(m, fi.Path, daemonVersion)
	}

	if err := manifest.Save(centyDir, m); err != nil {
		return nil, err
	}
	result.Manifest = m

	return result, nil
}

// upsertFromCatalog rebuilds a ManagedFile entry for relPath straight from
// the catalog's own content, so the manifest hash always traces to a known
// literal rather than whatever happens to be on disk.
func upsertFromCatalog(m *manifest.Manifest, relPath, daemonVersion string) {
	entry := catalog.Catalog[relPath]
	manifest.Upsert(m, manifest.NewManagedFile(relPath, entry.Type, entry.Content, daemonVersion))
}

// materialize creates relPath under centyDir: directories via MkdirAll,
// files by writing the catalog's literal content.
func materialize(centyDir, relPath string) error {
	entry, ok := catalog.Catalog[relPath]
	if !ok {
		return nil
	}
	target := filepath.Join(centyDir, filepath.FromSlash(relPath))

	if entry.Type == manifest.TypeDirectory {
		return os.MkdirAll(target, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return os.WriteFile(target, entry.Content, 0644)
}
