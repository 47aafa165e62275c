// Package reconcile implements the three-way diff between the managed-file
// catalog, the files actually on disk, and the manifest, and the executor
// that applies a chosen remediation under user decisions.
package reconcile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"centy/internal/catalog"
	"centy/internal/hashutil"
	"centy/internal/manifest"
)

// FileInfo describes one path considered by the planner.
type FileInfo struct {
	Path           string
	Type           manifest.FileType
	Hash           string
	ContentPreview string `json:"contentPreview,omitempty"`
}

// Plan is the categorized outcome of comparing catalog, disk, and manifest.
type Plan struct {
	ToCreate  []FileInfo
	ToRestore []FileInfo
	ToReset   []FileInfo
	UpToDate  []FileInfo
	UserFiles []FileInfo
}

// NeedsDecisions reports whether applying the plan requires the caller to
// make restore/reset decisions.
func (p *Plan) NeedsDecisions() bool {
	return len(p.ToRestore) > 0 || len(p.ToReset) > 0
}

const previewLen = 200

// BuildPlan walks .centy/ for projectPath and diffs it against the catalog
// and the manifest.
func BuildPlan(projectPath string) (*Plan, error) {
	centyDir := hashutil.CentyDir(projectPath)

	disk, err := walkDisk(centyDir)
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(centyDir)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}

	for relPath, entry := range catalog.Catalog {
		_, onDisk := disk[relPath]

		if !onDisk {
			fi := FileInfo{Path: relPath, Type: entry.Type}
			if m == nil {
				plan.ToCreate = append(plan.ToCreate, fi)
				continue
			}
			if _, inManifest := manifest.Find(m, relPath); inManifest {
				plan.ToRestore = append(plan.ToRestore, fi)
			} else {
				plan.ToCreate = append(plan.ToCreate, fi)
			}
			continue
		}

		if entry.Type == manifest.TypeDirectory {
			plan.UpToDate = append(plan.UpToDate, FileInfo{Path: relPath, Type: entry.Type})
			continue
		}

		// File present on disk with known literal content: compare hashes.
		diskBytes, err := os.ReadFile(filepath.Join(centyDir, filepath.FromSlash(relPath)))
		if err != nil {
			return nil, err
		}
		actualHash := hashutil.SHA256Hex(diskBytes)
		if entry.Content != nil && actualHash == hashutil.SHA256Hex(entry.Content) {
			plan.UpToDate = append(plan.UpToDate, FileInfo{Path: relPath, Type: entry.Type, Hash: actualHash})
		} else {
			plan.ToReset = append(plan.ToReset, FileInfo{
				Path:           relPath,
				Type:           entry.Type,
				Hash:           actualHash,
				ContentPreview: preview(diskBytes),
			})
		}
	}

	for relPath, info := range disk {
		if _, managed := catalog.Catalog[relPath]; managed {
			continue
		}
		plan.UserFiles = append(plan.UserFiles, info)
	}

	sortFileInfos(plan.ToCreate)
	sortFileInfos(plan.ToRestore)
	sortFileInfos(plan.ToReset)
	sortFileInfos(plan.UpToDate)
	sortFileInfos(plan.UserFiles)

	return plan, nil
}

func sortFileInfos(fis []FileInfo) {
	sort.Slice(fis, func(i, j int) bool { return fis[i].Path < fis[j].Path })
}

func preview(data []byte) string {
	if len(data) > previewLen {
		return string(data[:previewLen])
	}
	return string(data)
}

// walkDisk returns every path found under centyDir (excluding the manifest
// file itself and any path containing ".lock" or ".tmp.", the lock and
// temp-file sidecars), keyed by manifest-relative path with directories suffixed
// "/". Files are hashed eagerly since both the catalog diff and the
// user-files report need their hash.
func walkDisk(centyDir string) (map[string]FileInfo, error) {
	result := make(map[string]FileInfo)

	if _, err := os.Stat(centyDir); os.IsNotExist(err) {
		return result, nil
	}

	err := filepath.Walk(centyDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == centyDir {
			return nil
		}
		rel := hashutil.RelPath(centyDir, p, info.IsDir())
		if rel == manifest.FileName {
			return nil
		}
		if strings.Contains(rel, ".lock") || strings.Contains(rel, ".tmp.") {
			return nil
		}

		if info.IsDir() {
			result[rel] = FileInfo{Path: rel, Type: manifest.TypeDirectory}
			return nil
		}

		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return readErr
		}
		result[rel] = FileInfo{Path: rel, Type: manifest.TypeFile, Hash: hashutil.SHA256Hex(data)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
