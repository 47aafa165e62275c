package issuestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"centy/internal/config"
	"centy/internal/hashutil"
	"centy/internal/manifest"
)

// ReconcileDisplayNumbers detects and resolves duplicate display numbers
// across all issues, deterministically: legacy zeros are all reassigned,
// and within any other duplicate group the oldest createdAt keeps its
// number while the rest are reassigned ascending from max+1. It returns
// the count of issues reassigned.
func ReconcileDisplayNumbers(projectPath string) (int, error) {
	centyDir := hashutil.CentyDir(projectPath)
	cfg, err := config.Load(centyDir)
	if err != nil {
		return 0, err
	}

	issues, err := List(projectPath, "", 0)
	if err != nil {
		return 0, err
	}
	if len(issues) == 0 {
		return 0, nil
	}

	groups := map[int][]Issue{}
	maxDisplay := 0
	for _, is := range issues {
		groups[is.DisplayNumber] = append(groups[is.DisplayNumber], is)
		if is.DisplayNumber > maxDisplay {
			maxDisplay = is.DisplayNumber
		}
	}
	next := maxDisplay + 1

	reassignments := map[string]int{} // issue id -> new display number

	// Process in deterministic key order so "next" allocation is stable.
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		group := groups[k]
		if len(group) <= 1 && k != 0 {
			continue
		}

		if k == 0 {
			for _, is := range group {
				reassignments[is.ID] = next
				next++
			}
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			if group[i].CreatedAt != group[j].CreatedAt {
				return group[i].CreatedAt < group[j].CreatedAt
			}
			return group[i].ID < group[j].ID
		})
		// Oldest keeps its number; the rest are reassigned.
		for _, is := range group[1:] {
			reassignments[is.ID] = next
			next++
		}
	}

	if len(reassignments) == 0 {
		return 0, nil
	}

	m, err := manifest.Load(centyDir)
	if err != nil {
		return 0, err
	}
	if m == nil {
		m = manifest.New(cfg.Version)
	}

	for id, newNumber := range reassignments {
		if err := rewriteDisplayNumber(projectPath, id, newNumber, m, cfg.Version); err != nil {
			return 0, err
		}
	}

	if err := manifest.Save(centyDir, m); err != nil {
		return 0, err
	}

	return len(reassignments), nil
}

func rewriteDisplayNumber(projectPath, id string, newNumber int, m *manifest.Manifest, daemonVersion string) error {
	dir := issueDir(projectPath, id)
	metadataPath := filepath.Join(dir, "metadata.json")

	metaBytes, err := os.ReadFile(metadataPath)
	if err != nil {
		return err
	}
	var meta metadataFile
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return err
	}
	meta.DisplayNumber = newNumber
	meta.UpdatedAt = hashutil.NowISO8601()

	newBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	newBytes = append(newBytes, '\n')
	if err := os.WriteFile(metadataPath, newBytes, 0644); err != nil {
		return err
	}

	manifest.Upsert(m, manifest.NewManagedFile(issueRelPath(id, "metadata.json"), manifest.TypeFile, newBytes, daemonVersion))
	return nil
}
