// centyd is the daemon process for centy, a local-first, file-backed
// issue/doc tracker. It serves the service façade over gRPC and
// grpc-web/HTTP; the client CLI that talks to it lives elsewhere.
package main

import (
	"fmt"
	"os"
)

// run and osExit are vars, not direct calls, so tests can swap them out
// without spawning a subprocess.
var (
	run    = func() error { return newRootCmd().Execute() }
	osExit = os.Exit
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}
