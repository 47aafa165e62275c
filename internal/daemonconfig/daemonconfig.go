// Package daemonconfig loads the daemon's own local runtime settings —
// listen addresses and grpc-web CORS origins — from
// ~/.centy/.centy-daemon.yaml. This is distinct from the per-project
// .centy/config.json contract, which is a managed file under a tracked
// project and stays JSON; the daemon's own runtime settings are never
// part of that catalog, so they are YAML instead.
package daemonconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the daemon settings file's name under the home directory.
const FileName = ".centy-daemon.yaml"

// Config is the daemon's local runtime configuration.
type Config struct {
	GRPCAddr      string   `yaml:"grpcAddr"`
	GRPCWebAddr   string   `yaml:"grpcWebAddr"`
	AllowedOrigin []string `yaml:"allowedOrigins"`
}

// Default returns the out-of-the-box daemon settings.
func Default() Config {
	return Config{
		GRPCAddr:      "127.0.0.1:7490",
		GRPCWebAddr:   "127.0.0.1:7491",
		AllowedOrigin: []string{"*"},
	}
}

// Load reads homeDir/.centy-daemon.yaml, applying Default() for any field
// left at its YAML zero value. A missing file is not an error; it yields
// the defaults verbatim.
func Load(homeDir string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(homeDir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Config{}, err
	}
	if loaded.GRPCAddr != "" {
		cfg.GRPCAddr = loaded.GRPCAddr
	}
	if loaded.GRPCWebAddr != "" {
		cfg.GRPCWebAddr = loaded.GRPCWebAddr
	}
	if len(loaded.AllowedOrigin) > 0 {
		cfg.AllowedOrigin = loaded.AllowedOrigin
	}
	return cfg, nil
}
