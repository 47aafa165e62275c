// Package manifest implements the load/save contract for .centy/.centy-manifest.json,
// the single-source-of-truth inventory of every path the daemon manages
// inside a project's .centy/ directory.
package manifest

import (
	"encoding/json"
	"os"
	"sort"

	"centy/internal/fsutil"
	"centy/internal/hashutil"
)

// FileName is the manifest's path relative to .centy/.
const FileName = ".centy-manifest.json"

// SchemaVersion is the current manifest schema version.
const SchemaVersion = 1

// FileType distinguishes a managed file from a managed directory.
type FileType string

const (
	TypeFile      FileType = "file"
	TypeDirectory FileType = "directory"
)

// ManagedFile is one entry in the manifest's inventory.
type ManagedFile struct {
	Path      string   `json:"path"`
	Hash      string   `json:"hash"`
	Version   string   `json:"version"`
	CreatedAt string   `json:"createdAt"`
	Type      FileType `json:"type"`
}

// Manifest is the persisted .centy-manifest.json document.
type Manifest struct {
	SchemaVersion uint32        `json:"schemaVersion"`
	CentyVersion  string        `json:"centyVersion"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
	ManagedFiles  []ManagedFile `json:"managedFiles"`
}

// New creates an empty manifest stamped with daemonVersion and the current
// time, ready to be populated with Upsert and persisted with Save.
func New(daemonVersion string) *Manifest {
	now := hashutil.NowISO8601()
	return &Manifest{
		SchemaVersion: SchemaVersion,
		CentyVersion:  daemonVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		ManagedFiles:  []ManagedFile{},
	}
}

// path returns the on-disk path of the manifest file for a project.
func path(centyDir string) string {
	return centyDir + string(os.PathSeparator) + FileName
}

// Load reads the manifest from the project's .centy/ directory. It returns
// (nil, nil) if no manifest exists yet.
func Load(centyDir string) (*Manifest, error) {
	data, err := os.ReadFile(path(centyDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save sorts ManagedFiles by path (invariant M3) and pretty-prints the
// manifest to .centy/.centy-manifest.json. Per §9, per-project files are
// written directly rather than via temp-file-plus-rename: a crash
// mid-write leaves malformed JSON that the next reconciliation plan
// surfaces as a user modification instead of an atomicity violation.
func Save(centyDir string, m *Manifest) error {
	sort.Slice(m.ManagedFiles, func(i, j int) bool {
		return m.ManagedFiles[i].Path < m.ManagedFiles[j].Path
	})
	return fsutil.WriteJSON(path(centyDir), m)
}

// Upsert inserts mf, or replaces the existing entry with the same path
// (invariant M1), and bumps the manifest's UpdatedAt.
func Upsert(m *Manifest, mf ManagedFile) {
	for i, existing := range m.ManagedFiles {
		if existing.Path == mf.Path {
			m.ManagedFiles[i] = mf
			m.UpdatedAt = hashutil.NowISO8601()
			return
		}
	}
	m.ManagedFiles = append(m.ManagedFiles, mf)
	m.UpdatedAt = hashutil.NowISO8601()
}

// Find returns the entry for path, if any.
func Find(m *Manifest, path string) (ManagedFile, bool) {
	for _, mf := range m.ManagedFiles {
		if mf.Path == path {
			return mf, true
		}
	}
	return ManagedFile{}, false
}

// RemovePrefix deletes every entry whose path starts with prefix, used by
// issue deletion to strip "issues/<id>/..." entries in one pass.
func RemovePrefix(m *Manifest, prefix string) {
	kept := m.ManagedFiles[:0]
	for _, mf := range m.ManagedFiles {
		if len(mf.Path) >= len(prefix) && mf.Path[:len(prefix)] == prefix {
			continue
		}
		kept = append(kept, mf)
	}
	m.ManagedFiles = kept
	m.UpdatedAt = hashutil.NowISO8601()
}

// NewManagedFile builds a ManagedFile entry, enforcing invariant M2: a
// directory entry always carries an empty hash.
func NewManagedFile(relPath string, fileType FileType, content []byte, version string) ManagedFile {
	hash := ""
	if fileType == TypeFile {
		hash = hashutil.SHA256Hex(content)
	}
	return ManagedFile{
		Path:      relPath,
		Hash:      hash,
		Version:   version,
		CreatedAt: hashutil.NowISO8601(),
		Type:      fileType,
	}
}
