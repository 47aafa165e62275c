package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommandPrintsVersion(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("version command: %v", err)
	}
	if !strings.Contains(out.String(), DaemonVersion) {
		t.Errorf("expected output to contain version %q, got %q", DaemonVersion, out.String())
	}
}

func TestVersionCommandJSON(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version --json: %v", err)
	}
	if !strings.Contains(out.String(), `"version"`) {
		t.Errorf("expected JSON output with version field, got: %s", out.String())
	}
}

func TestBannerColorDisabledByNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if isColor() {
		t.Error("expected isColor() to be false when NO_COLOR is set")
	}
	s := colorize("hello", "32")
	if strings.Contains(s, "\033") {
		t.Error("expected no ANSI escape when color disabled")
	}
}
