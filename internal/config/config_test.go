package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PriorityLevels != 3 {
		t.Errorf("expected default priorityLevels 3, got %d", cfg.PriorityLevels)
	}
	if cfg.DefaultState != "open" {
		t.Errorf("expected default state open, got %q", cfg.DefaultState)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.PriorityLevels = 5
	cfg.Defaults["priority"] = "2"

	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.PriorityLevels != 5 {
		t.Errorf("expected priorityLevels 5, got %d", loaded.PriorityLevels)
	}
	if loaded.Defaults["priority"] != "2" {
		t.Errorf("expected defaults[priority]=2, got %q", loaded.Defaults["priority"])
	}
}

func TestEffectiveVersion(t *testing.T) {
	cfg := Default()
	if got := EffectiveVersion(cfg, "0.3.0"); got != "0.3.0" {
		t.Errorf("expected daemon version fallback, got %q", got)
	}
	cfg.Version = "0.1.0"
	if got := EffectiveVersion(cfg, "0.3.0"); got != "0.1.0" {
		t.Errorf("expected config version, got %q", got)
	}
}

func TestConfigPathLocation(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path(dir) != filepath.Join(dir, "config.json") {
		t.Errorf("unexpected config path: %s", path(dir))
	}
}
