package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DaemonVersion is centyd's own version, distinct from any per-project
// config.version. Overridable at build time via
// -ldflags "-X main.DaemonVersion=1.2.3".
var DaemonVersion = "0.1.0"

func newVersionCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the daemon's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": DaemonVersion})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "centyd version %s\n", DaemonVersion)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}
