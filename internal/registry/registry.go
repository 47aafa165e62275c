// Package registry implements the global cross-project index at
// ~/.centy/projects.json: tracking which project paths have been
// accessed, guarded by a single process-wide mutex.
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"centy/internal/centyerr"
	"centy/internal/fsutil"
	"centy/internal/hashutil"
)

// FileName is the registry's path relative to its home directory.
const FileName = "projects.json"

// SchemaVersion is the current registry schema version.
const SchemaVersion = 1

// ProjectRecord is one tracked project's access timestamps.
type ProjectRecord struct {
	FirstAccessed string `json:"firstAccessed"`
	LastAccessed  string `json:"lastAccessed"`
}

// Registry is the persisted ~/.centy/projects.json document.
type Registry struct {
	SchemaVersion uint32                   `json:"schemaVersion"`
	UpdatedAt     string                   `json:"updatedAt"`
	Projects      map[string]ProjectRecord `json:"projects"`
}

// EnrichedProject is a live view returned by List/GetProjectInfo, never
// persisted.
type EnrichedProject struct {
	Path          string
	Name          string
	FirstAccessed string
	LastAccessed  string
	IssueCount    int
	DocCount      int
	Initialized   bool
}

// mu is the single process-wide mutex guarding every read-modify-write
// cycle over the global registry file.
var mu sync.Mutex

// HomeDir resolves ~/.centy, via HOME on Unix or USERPROFILE on Windows.
func HomeDir() (string, error) {
	home := os.Getenv("HOME")
	if home == "" && runtime.GOOS == "windows" {
		home = os.Getenv("USERPROFILE")
	}
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		home = h
	}
	return filepath.Join(home, ".centy"), nil
}

func path(homeDir string) string {
	return filepath.Join(homeDir, FileName)
}

func load(homeDir string) (*Registry, error) {
	data, err := os.ReadFile(path(homeDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{SchemaVersion: SchemaVersion, Projects: map[string]ProjectRecord{}}, nil
		}
		return nil, err
	}
	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Projects == nil {
		r.Projects = map[string]ProjectRecord{}
	}
	return &r, nil
}

func save(homeDir string, r *Registry) error {
	if err := os.MkdirAll(homeDir, 0755); err != nil {
		return err
	}
	return fsutil.AtomicWriteJSON(path(homeDir), r)
}

func canonicalize(projectPath string) string {
	if abs, err := filepath.Abs(projectPath); err == nil {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			return resolved
		}
		return abs
	}
	return projectPath
}

// Track records an access to projectPath: bumps lastAccessed if already
// present, else creates a fresh entry with firstAccessed = lastAccessed =
// now.
func Track(homeDir, projectPath string) error {
	mu.Lock()
	defer mu.Unlock()

	r, err := load(homeDir)
	if err != nil {
		return err
	}

	key := canonicalize(projectPath)
	now := hashutil.NowISO8601()
	if rec, ok := r.Projects[key]; ok {
		rec.LastAccessed = now
		r.Projects[key] = rec
	} else {
		r.Projects[key] = ProjectRecord{FirstAccessed: now, LastAccessed: now}
	}
	r.UpdatedAt = now

	return save(homeDir, r)
}

// TrackAsync fires Track on a background goroutine and logs failures
// instead of propagating them, so a registry write never blocks or fails
// the request that triggered it.
func TrackAsync(homeDir, projectPath string, logger *zap.SugaredLogger) {
	go func() {
		if err := Track(homeDir, projectPath); err != nil && logger != nil {
			logger.Warnw("failed to track project access", "path", projectPath, "error", err)
		}
	}()
}

// Untrack removes a project from the registry, trying the canonical key
// first and falling back to the literal path.
func Untrack(homeDir, projectPath string) error {
	mu.Lock()
	defer mu.Unlock()

	r, err := load(homeDir)
	if err != nil {
		return err
	}

	key := canonicalize(projectPath)
	if _, ok := r.Projects[key]; ok {
		delete(r.Projects, key)
		r.UpdatedAt = hashutil.NowISO8601()
		return save(homeDir, r)
	}
	if _, ok := r.Projects[projectPath]; ok {
		delete(r.Projects, projectPath)
		r.UpdatedAt = hashutil.NowISO8601()
		return save(homeDir, r)
	}
	return centyerr.ProjectNotFound
}

// List returns enriched views of every tracked project, sorted by
// lastAccessed descending. When includeStale is false, entries whose
// path no longer exists on disk are excluded.
func List(homeDir string, includeStale bool) ([]EnrichedProject, error) {
	mu.Lock()
	r, err := load(homeDir)
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	var result []EnrichedProject
	for p, rec := range r.Projects {
		if !includeStale {
			if _, err := os.Stat(p); err != nil {
				continue
			}
		}
		result = append(result, Enrich(p, rec))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LastAccessed > result[j].LastAccessed
	})
	return result, nil
}

// Enrich builds the live view for one tracked project path: issue/doc
// counts, initialization status, and display name.
func Enrich(projectPath string, rec ProjectRecord) EnrichedProject {
	centyDir := hashutil.CentyDir(projectPath)

	issueCount := 0
	if entries, err := os.ReadDir(filepath.Join(centyDir, "issues")); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				issueCount++
			}
		}
	}

	docCount := 0
	if entries, err := os.ReadDir(filepath.Join(centyDir, "docs")); err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
				docCount++
			}
		}
	}

	_, initErr := os.Stat(filepath.Join(centyDir, ".centy-manifest.json"))

	return EnrichedProject{
		Path:          projectPath,
		Name:          filepath.Base(projectPath),
		FirstAccessed: rec.FirstAccessed,
		LastAccessed:  rec.LastAccessed,
		IssueCount:    issueCount,
		DocCount:      docCount,
		Initialized:   initErr == nil,
	}
}

// GetProjectInfo returns the enriched view for a single tracked project.
func GetProjectInfo(homeDir, projectPath string) (*EnrichedProject, error) {
	mu.Lock()
	r, err := load(homeDir)
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	key := canonicalize(projectPath)
	rec, ok := r.Projects[key]
	if !ok {
		rec, ok = r.Projects[projectPath]
		key = projectPath
	}
	if !ok {
		return nil, centyerr.ProjectNotFound
	}
	enriched := Enrich(key, rec)
	return &enriched, nil
}
