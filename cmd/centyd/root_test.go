package main

import "testing"

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	want := []string{"serve", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}
