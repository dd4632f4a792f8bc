package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

func validateExclude(cfg *Config) error {
	for i, p := range cfg.ExclusionPatterns() {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("exclude pattern %d must not be empty", i)
		}
		if strings.ContainsAny(p, `/\`) {
			return fmt.Errorf("exclude pattern %q must match a single path segment", p)
		}
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("exclude pattern %q is invalid: %w", p, err)
		}
	}
	return nil
}

func validateParse(cfg *Config) error {
	if len(cfg.Parse.Extensions) == 0 {
		return fmt.Errorf("parse.extensions must not be empty")
	}
	for _, ext := range cfg.Parse.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("parse.extensions entry %q must start with a dot", ext)
		}
	}
	if cfg.Parse.Workers < 1 {
		return fmt.Errorf("parse.workers must be >= 1, got %d", cfg.Parse.Workers)
	}
	if cfg.Parse.Timeout < 0 {
		return fmt.Errorf("parse.timeout must not be negative")
	}
	if cfg.Parse.ReadRate < 0 {
		return fmt.Errorf("parse.read_rate must not be negative")
	}
	if cfg.Parse.MaxFileBytes < 0 {
		return fmt.Errorf("parse.max_file_bytes must not be negative")
	}
	return nil
}

func validateVisibility(cfg *Config) error {
	v := cfg.Visibility
	if v.PrivatePrefix == "" || v.StrictPrivatePrefix == "" {
		return fmt.Errorf("visibility prefixes must not be empty")
	}
	if !strings.HasPrefix(v.StrictPrivatePrefix, v.PrivatePrefix) || v.StrictPrivatePrefix == v.PrivatePrefix {
		return fmt.Errorf("visibility.strict_private_prefix %q must extend private_prefix %q", v.StrictPrivatePrefix, v.PrivatePrefix)
	}
	return nil
}

func validateOutput(cfg *Config) error {
	seen := make(map[string]string, len(cfg.Output.Artifacts))
	for _, artifact := range cfg.Output.Artifacts {
		target := cfg.OutputPath(artifact)
		if target == "" {
			return fmt.Errorf("output.artifacts: unknown artifact %q", artifact)
		}
		if other, ok := seen[target]; ok && other != artifact {
			return fmt.Errorf("output conflict: %s and %s share the same path %q", other, artifact, target)
		}
		seen[target] = artifact
	}
	for i, path := range cfg.Output.Inject {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("output.inject entry %d must not be empty", i)
		}
	}
	if cfg.Tree.MaxDepth < 0 {
		return fmt.Errorf("tree.max_depth must not be negative")
	}
	return nil
}

func Validate(cfg *Config) []error {
	var errs []error

	if err := validateExclude(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateParse(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateVisibility(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateOutput(cfg); err != nil {
		errs = append(errs, err)
	}

	return errs
}
