// Package centyerr defines the sentinel error values the core raises.
// Callers wrap these with context using
// fmt.Errorf("...: %w", centyerr.NotFound).
package centyerr

import "errors"

var (
	// NotInitialized means the manifest is absent where required.
	NotInitialized = errors.New("project is not initialized")

	// NotFound means an issue, doc, or asset is missing.
	NotFound = errors.New("not found")

	// SlugAlreadyExists means a doc slug collides with an existing doc.
	SlugAlreadyExists = errors.New("slug already exists")

	// InvalidSlug means a doc slug failed validation.
	InvalidSlug = errors.New("invalid slug")

	// ValidationError means a request failed input validation (empty title,
	// out-of-range priority, malformed SemVer, ...).
	ValidationError = errors.New("validation error")

	// FormatError means an expected file was present but unparseable.
	FormatError = errors.New("format error")

	// TemplateNotFound means the named template file does not exist.
	TemplateNotFound = errors.New("template not found")

	// TemplateRenderError means the renderer failed on a loaded template.
	TemplateRenderError = errors.New("template render error")

	// NoMigrationPath means no sequence of migrations connects two versions.
	NoMigrationPath = errors.New("no migration path")

	// RollbackFailed means a migration step's rollback also failed.
	RollbackFailed = errors.New("rollback failed")

	// ProjectNotFound means a registry lookup key is absent.
	ProjectNotFound = errors.New("project not found in registry")
)

// MigrationFailed wraps the underlying error from a failed migration step,
// carrying the step's description for diagnostics.
type MigrationFailed struct {
	Name       string
	Underlying error
}

func (e *MigrationFailed) Error() string {
	return "migration " + e.Name + " failed: " + e.Underlying.Error()
}

func (e *MigrationFailed) Unwrap() error {
	return e.Underlying
}
