package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a TOML or YAML config file (chosen by extension), fills
// defaults, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errs[0]
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to DefaultConfig
// with env overrides otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, errs[0]
	}
	return cfg, nil
}
