package migration

import "centy/internal/semver"

// InitialVersionMigration establishes version tracking for projects that
// predate the versioning system. It performs no data transformation in
// either direction: config.version itself is written by Registry.Migrate
// after all steps succeed.
func InitialVersionMigration() Migration {
	return Migration{
		From:        semver.SemVer{Major: 0, Minor: 0, Patch: 0},
		To:          semver.SemVer{Major: 0, Minor: 1, Patch: 0},
		Description: "Initialize version tracking for existing projects",
		Up:          func(projectPath string) error { return nil },
		Down:        func(projectPath string) error { return nil },
	}
}

// DefaultRegistry returns the registry containing every migration step
// shipped with the daemon, sorted by From (see NewRegistry).
func DefaultRegistry() *Registry {
	return NewRegistry(InitialVersionMigration())
}
