package main

import (
	"os"

	"golang.org/x/term"
)

// isColor returns true if the startup banner should use ANSI color: a
// TTY on stdout, forced on via CLICOLOR_FORCE, or forced off via
// NO_COLOR.
func isColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") == "1" {
		return true
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// colorize wraps s in the given ANSI code if color is enabled.
func colorize(s string, code string) string {
	if !isColor() {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func successColor(s string) string {
	return colorize(s, "32")
}
