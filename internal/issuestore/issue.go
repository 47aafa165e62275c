// Package issuestore implements issue CRUD over UUID (or legacy
// four-digit) folders under .centy/issues/, plus display-number
// conflict reconciliation.
package issuestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"centy/internal/centyerr"
	"centy/internal/config"
	"centy/internal/fsutil"
	"centy/internal/hashutil"
	"centy/internal/manifest"
	"centy/internal/priority"
	"centy/internal/template"
)

var legacyFolderPattern = regexp.MustCompile(`^\d{4}$`)

// Issue is the external view of one issue: the stable folder id, its
// human-facing display number, and its content and metadata.
type Issue struct {
	ID            string
	DisplayNumber int
	Title         string
	Description   string
	Status        string
	Priority      int
	CreatedAt     string
	UpdatedAt     string
	CustomFields  map[string]string
}

// metadataFile mirrors metadata.json on disk. Priority is kept as
// json.RawMessage so it can be deserialized as either a number or a
// legacy string label.
type metadataFile struct {
	DisplayNumber int                    `json:"displayNumber"`
	Status        string                 `json:"status"`
	Priority      json.RawMessage        `json:"priority"`
	CreatedAt     string                 `json:"createdAt"`
	UpdatedAt     string                 `json:"updatedAt"`
	CustomFields  map[string]interface{} `json:"customFields"`
}

// CreateOptions carries the inputs to Create; zero-value fields fall
// back to config-driven defaults.
type CreateOptions struct {
	Title        string
	Description  string
	Priority     *int
	Status       string
	Template     string
	CustomFields map[string]interface{}
}

// CreateResult is Create's return value.
type CreateResult struct {
	ID            string
	DisplayNumber int
	CreatedFiles  []string
	Manifest      *manifest.Manifest
}

// UpdateOptions carries the optional fields to merge into an existing
// issue. A nil pointer/map means "leave unchanged"; CustomFields entries
// merge key-by-key rather than replacing the map wholesale.
type UpdateOptions struct {
	Title        *string
	Description  *string
	Priority     *int
	Status       *string
	CustomFields map[string]interface{}
}

func issuesDir(projectPath string) string {
	return filepath.Join(hashutil.CentyDir(projectPath), "issues")
}

func issueDir(projectPath, id string) string {
	return filepath.Join(issuesDir(projectPath), id)
}

func issueRelPath(id, name string) string {
	return "issues/" + id + "/" + name
}

// Create materializes a new issue folder and returns its identity and the
// updated manifest.
func Create(projectPath string, opts CreateOptions, logger *zap.SugaredLogger) (*CreateResult, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		return nil, fmt.Errorf("title: %w", centyerr.ValidationError)
	}

	centyDir := hashutil.CentyDir(projectPath)
	m, err := manifest.Load(centyDir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, centyerr.NotInitialized
	}

	cfg, err := config.Load(centyDir)
	if err != nil {
		return nil, err
	}

	existing, err := List(projectPath, "", 0)
	if err != nil {
		return nil, err
	}
	maxDisplay := 0
	for _, is := range existing {
		if is.DisplayNumber > maxDisplay {
			maxDisplay = is.DisplayNumber
		}
	}
	displayNumber := maxDisplay + 1

	resolvedPriority, err := resolvePriority(opts.Priority, cfg)
	if err != nil {
		return nil, err
	}

	status := resolveStatus(opts.Status, cfg, logger)

	id := uuid.New().String()
	dir := issueDir(projectPath, id)
	assetsDir := filepath.Join(dir, "assets")
	if err := os.MkdirAll(assetsDir, 0755); err != nil {
		return nil, err
	}

	body, err := renderIssueBody(projectPath, opts, resolvedPriority, status, cfg)
	if err != nil {
		return nil, err
	}

	now := hashutil.NowISO8601()
	meta := metadataFile{
		DisplayNumber: displayNumber,
		Status:        status,
		Priority:      mustMarshal(resolvedPriority),
		CreatedAt:     now,
		UpdatedAt:     now,
		CustomFields:  opts.CustomFields,
	}
	if meta.CustomFields == nil {
		meta.CustomFields = map[string]interface{}{}
	}

	issueMDPath := filepath.Join(dir, "issue.md")
	metadataPath := filepath.Join(dir, "metadata.json")

	if err := os.WriteFile(issueMDPath, []byte(body), 0644); err != nil {
		return nil, err
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	metaBytes = append(metaBytes, '\n')
	if err := os.WriteFile(metadataPath, metaBytes, 0644); err != nil {
		return nil, err
	}

	folderHash := ""
	manifest.Upsert(m, manifest.ManagedFile{Path: issueRelPath(id, ""), Hash: folderHash, Version: cfg.Version, CreatedAt: now, Type: manifest.TypeDirectory})
	manifest.Upsert(m, manifest.NewManagedFile(issueRelPath(id, "issue.md"), manifest.TypeFile, []byte(body), cfg.Version))
	manifest.Upsert(m, manifest.NewManagedFile(issueRelPath(id, "metadata.json"), manifest.TypeFile, metaBytes, cfg.Version))
	manifest.Upsert(m, manifest.ManagedFile{Path: issueRelPath(id, "assets/"), Hash: "", Version: cfg.Version, CreatedAt: now, Type: manifest.TypeDirectory})

	if err := manifest.Save(centyDir, m); err != nil {
		return nil, err
	}

	return &CreateResult{
		ID:            id,
		DisplayNumber: displayNumber,
		CreatedFiles:  []string{issueRelPath(id, ""), issueRelPath(id, "issue.md"), issueRelPath(id, "metadata.json"), issueRelPath(id, "assets/")},
		Manifest:      m,
	}, nil
}

func resolvePriority(explicit *int, cfg *config.Config) (int, error) {
	if explicit != nil {
		if !priority.Validate(*explicit, cfg.PriorityLevels) {
			return 0, fmt.Errorf("priority out of range [1,%d]: %w", cfg.PriorityLevels, centyerr.ValidationError)
		}
		return *explicit, nil
	}
	if raw, ok := cfg.Defaults["priority"]; ok {
		if p, err := strconv.Atoi(raw); err == nil && priority.Validate(p, cfg.PriorityLevels) {
			return p, nil
		}
	}
	return priority.Default(cfg.PriorityLevels), nil
}

// resolveStatus applies the deprecated-defaults precedence decision
// documented in DESIGN.md: option, then defaultState, then "open".
// Status is lenient: any non-empty value is accepted, with a warning
// logged for values outside cfg.AllowedStates.
func resolveStatus(explicit string, cfg *config.Config, logger *zap.SugaredLogger) string {
	status := explicit
	if status == "" {
		status = cfg.DefaultState
	}
	if status == "" {
		status = "open"
	}
	if logger != nil && !contains(cfg.AllowedStates, status) {
		logger.Warnw("issue status not in allowedStates, accepting anyway", "status", status)
	}
	return status
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return len(values) == 0
}

func renderIssueBody(projectPath string, opts CreateOptions, resolvedPriority int, status string, cfg *config.Config) (string, error) {
	if opts.Template == "" {
		return defaultIssueBody(opts.Title, opts.Description), nil
	}
	tmpl, err := template.LoadTemplate(projectPath, template.KindIssue, opts.Template)
	if err != nil {
		return "", err
	}
	customFields := map[string]string{}
	for k, v := range opts.CustomFields {
		customFields[k] = stringifyCustomField(v)
	}
	ctx := template.IssueContext{
		Title:         opts.Title,
		Description:   opts.Description,
		Priority:      resolvedPriority,
		PriorityLabel: priority.Label(resolvedPriority, cfg.PriorityLevels),
		Status:        status,
		CreatedAt:     hashutil.NowISO8601(),
		CustomFields:  customFields,
	}
	return template.Render(tmpl, ctx)
}

func defaultIssueBody(title, description string) string {
	if description == "" {
		return "# " + title + "\n"
	}
	return "# " + title + "\n\n" + description + "\n"
}

func stringifyCustomField(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func mustMarshal(v int) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// Read loads one issue by its folder id.
func Read(projectPath, id string) (*Issue, error) {
	dir := issueDir(projectPath, id)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, centyerr.NotFound
	}
	levels, err := priorityLevels(projectPath)
	if err != nil {
		return nil, err
	}
	return readIssueDir(dir, id, levels)
}

// ReadByDisplayNumber linearly scans all issues for the first whose
// metadata displayNumber matches n.
func ReadByDisplayNumber(projectPath string, n int) (*Issue, error) {
	issues, err := List(projectPath, "", 0)
	if err != nil {
		return nil, err
	}
	for _, is := range issues {
		if is.DisplayNumber == n {
			return &is, nil
		}
	}
	return nil, centyerr.NotFound
}

func priorityLevels(projectPath string) (int, error) {
	cfg, err := config.Load(hashutil.CentyDir(projectPath))
	if err != nil {
		return 0, err
	}
	return cfg.PriorityLevels, nil
}

func readIssueDir(dir, id string, levels int) (*Issue, error) {
	titleBody, err := os.ReadFile(filepath.Join(dir, "issue.md"))
	if err != nil {
		return nil, fmt.Errorf("issue.md: %w", centyerr.FormatError)
	}
	metaBytes, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("metadata.json: %w", centyerr.FormatError)
	}

	title, description := splitIssueMD(string(titleBody))

	var meta metadataFile
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("metadata.json: %w", centyerr.FormatError)
	}

	p, err := parsePriority(meta.Priority, levels)
	if err != nil {
		return nil, err
	}

	custom := map[string]string{}
	for k, v := range meta.CustomFields {
		custom[k] = stringifyCustomField(v)
	}

	return &Issue{
		ID:            id,
		DisplayNumber: meta.DisplayNumber,
		Title:         title,
		Description:   description,
		Status:        meta.Status,
		Priority:      p,
		CreatedAt:     meta.CreatedAt,
		UpdatedAt:     meta.UpdatedAt,
		CustomFields:  custom,
	}, nil
}

// parsePriority accepts either a JSON number or a legacy string label,
// carried over from an older on-disk format.
func parsePriority(raw json.RawMessage, levels int) (int, error) {
	if len(raw) == 0 {
		return priority.Default(levels), nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return priority.MigrateStringPriority(s, levels), nil
	}
	return 0, fmt.Errorf("priority: %w", centyerr.FormatError)
}

func splitIssueMD(content string) (title, description string) {
	lines := strings.SplitN(content, "\n", 2)
	title = strings.TrimPrefix(lines[0], "# ")
	if len(lines) > 1 {
		description = strings.Trim(lines[1], "\n")
	}
	return title, description
}

// List enumerates issue folders, applying the optional status and
// priority filters conjunctively, sorted by folder name ascending.
// Malformed entries are skipped without failing the call.
func List(projectPath, statusFilter string, priorityFilter int) ([]Issue, error) {
	dir := issuesDir(projectPath)
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
			continue
		}
		name := e.Name()
		if _, err := uuid.Parse(name); err == nil || legacyFolderPattern.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	levels, err := priorityLevels(projectPath)
	if err != nil {
		return nil, err
	}

	var result []Issue
	for _, name := range names {
		is, err := readIssueDir(filepath.Join(dir, name), name, levels)
		if err != nil {
			continue
		}
		if statusFilter != "" && is.Status != statusFilter {
			continue
		}
		if priorityFilter != 0 && is.Priority != priorityFilter {
			continue
		}
		result = append(result, *is)
	}
	return result, nil
}

// Update merges opts into the existing issue, preserving unchanged
// fields, and rewrites both files plus the manifest hashes.
func Update(projectPath, id string, opts UpdateOptions) (*Issue, error) {
	dir := issueDir(projectPath, id)

	lock, err := fsutil.Flock(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	centyDir := hashutil.CentyDir(projectPath)
	cfg, err := config.Load(centyDir)
	if err != nil {
		return nil, err
	}

	current, err := readIssueDir(dir, id, cfg.PriorityLevels)
	if err != nil {
		return nil, err
	}

	if opts.Title != nil {
		current.Title = *opts.Title
	}
	if opts.Description != nil {
		current.Description = *opts.Description
	}
	if opts.Status != nil {
		current.Status = *opts.Status
	}
	if opts.Priority != nil {
		if !priority.Validate(*opts.Priority, cfg.PriorityLevels) {
			return nil, fmt.Errorf("priority out of range [1,%d]: %w", cfg.PriorityLevels, centyerr.ValidationError)
		}
		current.Priority = *opts.Priority
	}
	if opts.CustomFields != nil {
		if current.CustomFields == nil {
			current.CustomFields = map[string]string{}
		}
		for k, v := range opts.CustomFields {
			current.CustomFields[k] = stringifyCustomField(v)
		}
	}
	current.UpdatedAt = hashutil.NowISO8601()

	body := defaultIssueBody(current.Title, current.Description)
	customFields := map[string]interface{}{}
	for k, v := range current.CustomFields {
		customFields[k] = v
	}
	meta := metadataFile{
		DisplayNumber: current.DisplayNumber,
		Status:        current.Status,
		Priority:      mustMarshal(current.Priority),
		CreatedAt:     current.CreatedAt,
		UpdatedAt:     current.UpdatedAt,
		CustomFields:  customFields,
	}

	issueMDPath := filepath.Join(dir, "issue.md")
	metadataPath := filepath.Join(dir, "metadata.json")

	if err := os.WriteFile(issueMDPath, []byte(body), 0644); err != nil {
		return nil, err
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	metaBytes = append(metaBytes, '\n')
	if err := os.WriteFile(metadataPath, metaBytes, 0644); err != nil {
		return nil, err
	}

	m, err := manifest.Load(centyDir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.New(cfg.Version)
	}
	manifest.Upsert(m, manifest.NewManagedFile(issueRelPath(id, "issue.md"), manifest.TypeFile, []byte(body), cfg.Version))
	manifest.Upsert(m, manifest.NewManagedFile(issueRelPath(id, "metadata.json"), manifest.TypeFile, metaBytes, cfg.Version))
	if err := manifest.Save(centyDir, m); err != nil {
		return nil, err
	}

	return current, nil
}

// Delete recursively removes the issue folder and strips every manifest
// entry prefixed "issues/<id>/".
func Delete(projectPath, id string) error {
	dir := issueDir(projectPath, id)
	if _, err := os.Stat(dir); err != nil {
		return centyerr.NotFound
	}
	if err := os.RemoveAll(dir); err != nil {
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
	manifest.RemovePrefix(m, issueRelPath(id, ""))
	return manifest.Save(centyDir, m)
}
