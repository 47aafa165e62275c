// Package migration implements the versioned migration registry and
// step-wise executor with per-step rollback.
package migration

import (
	"fmt"
	"sort"

	"centy/internal/centyerr"
	"centy/internal/config"
	"centy/internal/hashutil"
	"centy/internal/semver"
)

// Direction is the direction a migration path is walked.
type Direction int

const (
	Up Direction = iota
	Down
)

// Migration is one versioned step. Up and Down are the forward and
// reverse side-effecting operations over a project's .centy/ tree.
type Migration struct {
	From        semver.SemVer
	To          semver.SemVer
	Description string
	Up          func(projectPath string) error
	Down        func(projectPath string) error
}

// Registry is an ordered set of Migration objects, sorted by From.
type Registry struct {
	migrations []Migration
}

// NewRegistry builds a Registry from steps, sorting them by From.
func NewRegistry(steps ...Migration) *Registry {
	sorted := append([]Migration(nil), steps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From.Less(sorted[j].From) })
	return &Registry{migrations: sorted}
}

// Step is one entry in a resolved migration path.
type Step struct {
	Migration Migration
	Direction Direction
}

// GetMigrationPath computes the step sequence from curr to target.
func (r *Registry) GetMigrationPath(curr, target semver.SemVer) ([]Step, Direction, error) {
	if curr.Equal(target) {
		return nil, Up, nil
	}

	if curr.Less(target) {
		var path []Step
		current := curr
		for !current.Equal(target) {
			m, ok := r.findByFrom(current)
			if !ok {
				return nil, Up, centyerr.NoMigrationPath
			}
			path = append(path, Step{Migration: m, Direction: Up})
			current = m.To
		}
		return path, Up, nil
	}

	var path []Step
	current := curr
	for !current.Equal(target) {
		m, ok := r.findByTo(current)
		if !ok {
			return nil, Down, centyerr.NoMigrationPath
		}
		path = append(path, Step{Migration: m, Direction: Down})
		current = m.From
	}
	return path, Down, nil
}

func (r *Registry) findByFrom(v semver.SemVer) (Migration, bool) {
	for _, m := range r.migrations {
		if m.From.Equal(v) {
			return m, true
		}
	}
	return Migration{}, false
}

func (r *Registry) findByTo(v semver.SemVer) (Migration, bool) {
	for _, m := range r.migrations {
		if m.To.Equal(v) {
			return m, true
		}
	}
	return Migration{}, false
}

// Result is Migrate's outcome.
type Result struct {
	Success           bool
	FromVersion       string
	ToVersion         string
	MigrationsApplied []string
	Error             error
}

// Migrate reads the project's current version, computes a path to
// target, applies each step in order, and rolls back applied steps in
// reverse order if a later step fails.
func (r *Registry) Migrate(projectPath string, target semver.SemVer) Result {
	centyDir := hashutil.CentyDir(projectPath)
	cfg, err := config.Load(centyDir)
	if err != nil {
		return Result{Success: false, Error: err}
	}

	curr := semver.SemVer{}
	if cfg.Version != "" {
		parsed, err := semver.Parse(cfg.Version)
		if err != nil {
			return Result{Success: false, Error: err}
		}
		curr = parsed
	}

	path, direction, err := r.GetMigrationPath(curr, target)
	if err != nil {
		return Result{Success: false, FromVersion: curr.String(), ToVersion: target.String(), Error: err}
	}

	var applied []Step
	var applyErr error
	for _, step := range path {
		op := step.Migration.Up
		if direction == Down {
			op = step.Migration.Down
		}
		if err := op(projectPath); err != nil {
			applyErr = &centyerr.MigrationFailed{Name: step.Migration.Description, Underlying: err}
			break
		}
		applied = append(applied, step)
	}

	if applyErr != nil {
		for i := len(applied) - 1; i >= 0; i-- {
			step := applied[i]
			reverse := step.Migration.Down
			if step.Direction == Down {
				reverse = step.Migration.Up
			}
			if err := reverse(projectPath); err != nil {
				return Result{
					Success:     false,
					FromVersion: curr.String(),
					ToVersion:   target.String(),
					Error:       fmt.Errorf("%v, then rollback also failed: %w", applyErr, centyerr.RollbackFailed),
				}
			}
		}
		return Result{Success: false, FromVersion: curr.String(), ToVersion: target.String(), Error: applyErr}
	}

	appliedNames := make([]string, len(applied))
	for i, s := range applied {
		appliedNames[i] = s.Migration.Description
	}

	cfg.Version = target.String()
	if err := config.Save(centyDir, cfg); err != nil {
		return Result{Success: false, FromVersion: curr.String(), ToVersion: target.String(), Error: err}
	}

	return Result{
		Success:           true,
		FromVersion:       curr.String(),
		ToVersion:         target.String(),
		MigrationsApplied: appliedNames,
	}
}

// DegradedMode classifies how a project's version compares to the
// daemon's own version.
type DegradedMode int

const (
	Equal DegradedMode = iota
	ProjectBehind
	ProjectAhead
)

// CompareVersions compares a project's version against the daemon's.
func CompareVersions(project, daemon semver.SemVer) DegradedMode {
	switch project.Compare(daemon) {
	case 0:
		return Equal
	case -1:
		return ProjectBehind
	default:
		return ProjectAhead
	}
}
