package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: PROJECTDOCS_[SECTION]_[KEY] (e.g., PROJECTDOCS_PARSE_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	// Exclude
	setEnvList(&cfg.Exclude.Extra, "PROJECTDOCS_EXCLUDE_EXTRA")

	// Parse
	setEnvList(&cfg.Parse.Extensions, "PROJECTDOCS_PARSE_EXTENSIONS")
	setEnvInt(&cfg.Parse.Workers, "PROJECTDOCS_PARSE_WORKERS")
	setEnvDuration(&cfg.Parse.Timeout, "PROJECTDOCS_PARSE_TIMEOUT")
	setEnvFloat64(&cfg.Parse.ReadRate, "PROJECTDOCS_PARSE_READ_RATE")

	// Visibility
	setEnvString(&cfg.Visibility.PrivatePrefix, "PROJECTDOCS_VISIBILITY_PRIVATE_PREFIX")
	setEnvString(&cfg.Visibility.StrictPrivatePrefix, "PROJECTDOCS_VISIBILITY_STRICT_PRIVATE_PREFIX")
	setEnvBool(&cfg.Visibility.ExemptDunder, "PROJECTDOCS_VISIBILITY_EXEMPT_DUNDER")

	// Tree
	setEnvInt(&cfg.Tree.MaxDepth, "PROJECTDOCS_TREE_MAX_DEPTH")

	// Output
	setEnvString(&cfg.Output.Dir, "PROJECTDOCS_OUTPUT_DIR")
	setEnvList(&cfg.Output.Artifacts, "PROJECTDOCS_OUTPUT_ARTIFACTS")
	setEnvList(&cfg.Output.Inject, "PROJECTDOCS_OUTPUT_INJECT")

	// Logging
	setEnvString(&cfg.Logging.Level, "PROJECTDOCS_LOGGING_LEVEL")
	setEnvString(&cfg.Logging.File, "PROJECTDOCS_LOGGING_FILE")

	// Observability
	setEnvString(&cfg.Observability.OTLPEndpoint, "PROJECTDOCS_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		slog.Debug("applying env override", "key", key, "value", val)
		*target = out
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
