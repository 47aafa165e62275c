package daemonconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.GRPCAddr != want.GRPCAddr || cfg.GRPCWebAddr != want.GRPCWebAddr {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if len(cfg.AllowedOrigin) != len(want.AllowedOrigin) || cfg.AllowedOrigin[0] != want.AllowedOrigin[0] {
		t.Errorf("expected default allowed origins, got %v", cfg.AllowedOrigin)
	}
}

func TestLoadMergesPartialOverride(t *testing.T) {
	home := t.TempDir()
	content := "grpcAddr: \"0.0.0.0:9000\"\n"
	if err := os.WriteFile(filepath.Join(home, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != "0.0.0.0:9000" {
		t.Errorf("expected overridden grpcAddr, got %q", cfg.GRPCAddr)
	}
	if cfg.GRPCWebAddr != Default().GRPCWebAddr {
		t.Errorf("expected default grpcWebAddr preserved, got %q", cfg.GRPCWebAddr)
	}
}
