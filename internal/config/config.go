// Package config implements the .centy/config.json store: project-level
// settings for priority levels, custom fields, allowed states, and
// LLM-agent preferences.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"centy/internal/fsutil"
)

// FileName is the config file's path relative to .centy/.
const FileName = "config.json"

// CustomField describes one project-defined metadata field.
type CustomField struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Required     bool     `json:"required"`
	DefaultValue string   `json:"defaultValue,omitempty"`
	EnumValues   []string `json:"enumValues,omitempty"`
}

// LLMPrefs controls how LLM-driven agents are allowed to mutate issues.
type LLMPrefs struct {
	AutoCloseOnComplete bool `json:"autoCloseOnComplete"`
	UpdateStatusOnStart bool `json:"updateStatusOnStart"`
	AllowDirectEdits    bool `json:"allowDirectEdits"`
}

// Config is the persisted .centy/config.json document.
type Config struct {
	Version        string            `json:"version,omitempty"`
	PriorityLevels int               `json:"priorityLevels"`
	CustomFields   []CustomField     `json:"customFields"`
	Defaults       map[string]string `json:"defaults"`
	AllowedStates  []string          `json:"allowedStates"`
	DefaultState   string            `json:"defaultState"`
	StateColors    map[string]string `json:"stateColors"`
	PriorityColors map[string]string `json:"priorityColors"`
	LLM            LLMPrefs          `json:"llm"`
}

// Default returns a fresh project configuration with its baked-in defaults.
func Default() *Config {
	return &Config{
		PriorityLevels: 3,
		CustomFields:   []CustomField{},
		Defaults:       map[string]string{},
		AllowedStates:  []string{"open", "in-progress", "closed"},
		DefaultState:   "open",
		StateColors:    map[string]string{},
		PriorityColors: map[string]string{},
		LLM:            LLMPrefs{},
	}
}

func path(centyDir string) string {
	return filepath.Join(centyDir, FileName)
}

// Load reads .centy/config.json, unmarshalling the fields it holds over
// Default(); if the file is absent it returns Default() unchanged.
func Load(centyDir string) (*Config, error) {
	data, err := os.ReadFile(path(centyDir))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to .centy/config.json directly (no temp-file-plus-rename;
// see manifest.Save for why per-project files use direct writes).
func Save(centyDir string, cfg *Config) error {
	return fsutil.WriteJSON(path(centyDir), cfg)
}

// EffectiveVersion returns cfg.Version if set, else daemonVersion: a
// project pins its own schema version once initialized, and otherwise
// tracks whatever version the running daemon is.
func EffectiveVersion(cfg *Config, daemonVersion string) string {
	if cfg.Version != "" {
		return cfg.Version
	}
	return daemonVersion
}
