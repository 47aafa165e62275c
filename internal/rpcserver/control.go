package rpcserver

import (
	"os"

	"centy/internal/migration"
)

// SignalKind is the signal the daemon's main loop selects on to decide
// how to exit: run clean, or run after the replacement process has
// already been spawned.
type SignalKind int

const (
	SignalNone SignalKind = iota
	SignalShutdown
	SignalRestart
)

// ControlSignal is sent on a Handler's control channel by the
// Shutdown/Restart RPCs, for the daemon entrypoint's main loop to react to.
type ControlSignal struct {
	Kind SignalKind
}

// defaultMigrationRegistry is the registry UpdateVersion runs against.
// Centy registers exactly one step today; future steps are added to
// migration.DefaultRegistry, not here.
func defaultMigrationRegistry() *migration.Registry {
	return migration.DefaultRegistry()
}

// spawnDetachedSelf launches a fresh process image at os.Args[0], detached
// from the current process. The replacement must be spawned *before*
// signaling shutdown, so a failed spawn leaves the current process
// serving instead of leaving nothing running at all.
func spawnDetachedSelf() error {
	exe := os.Args[0]
	proc, err := os.StartProcess(exe, os.Args, &os.ProcAttr{
		Env:   os.Environ(),
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	if err != nil {
		return err
	}
	return proc.Release()
}
