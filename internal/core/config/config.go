package config

import (
	"runtime"
	"time"
)

type Config struct {
	Exclude       Exclude       `toml:"exclude" yaml:"exclude"`
	Parse         Parse         `toml:"parse" yaml:"parse"`
	Visibility    Visibility    `toml:"visibility" yaml:"visibility"`
	Tree          Tree          `toml:"tree" yaml:"tree"`
	Output        Output        `toml:"output" yaml:"output"`
	Logging       Logging       `toml:"logging" yaml:"logging"`
	Observability Observability `toml:"observability" yaml:"observability"`
}

type Exclude struct {
	// Patterns are glob patterns matched against a single path segment name.
	Patterns []string `toml:"patterns" yaml:"patterns"`
	// Extra patterns are appended to Patterns, so a config file can extend
	// the defaults without restating them.
	Extra []string `toml:"extra" yaml:"extra"`
}

type Parse struct {
	Extensions   []string      `toml:"extensions" yaml:"extensions"`
	Workers      int           `toml:"workers" yaml:"workers"`
	Timeout      time.Duration `toml:"timeout" yaml:"timeout"`
	ReadRate     float64       `toml:"read_rate" yaml:"read_rate"`
	MaxFileBytes int64         `toml:"max_file_bytes" yaml:"max_file_bytes"`
}

type Visibility struct {
	PrivatePrefix       string `toml:"private_prefix" yaml:"private_prefix"`
	StrictPrivatePrefix string `toml:"strict_private_prefix" yaml:"strict_private_prefix"`
	ExemptDunder        bool   `toml:"exempt_dunder" yaml:"exempt_dunder"`
}

type Tree struct {
	MaxDepth     int   `toml:"max_depth" yaml:"max_depth"`
	IncludeStats *bool `toml:"include_stats" yaml:"include_stats"`
}

type Output struct {
	Dir       string   `toml:"dir" yaml:"dir"`
	UML       string   `toml:"uml" yaml:"uml"`
	Tree      string   `toml:"tree" yaml:"tree"`
	Functions string   `toml:"functions" yaml:"functions"`
	Artifacts []string `toml:"artifacts" yaml:"artifacts"`
	// Inject lists Markdown files whose projectdocs marker regions are
	// refreshed with the rendered artifacts.
	Inject    []string `toml:"inject" yaml:"inject"`
}

type Logging struct {
	Level      string `toml:"level" yaml:"level"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" yaml:"compress"`
}

type Observability struct {
	OTLPEndpoint string `toml:"otlp_endpoint" yaml:"otlp_endpoint"`
}

const (
	ArtifactUML       = "uml"
	ArtifactTree      = "tree"
	ArtifactFunctions = "functions"
)

// DefaultExclusions covers version control, dependency caches, virtual
// environments, build output, editor and OS metadata, logs and temp files.
var DefaultExclusions = []string{
	"__pycache__", ".git", ".idea", ".pytest_cache",
	".cursor", ".vscode", "node_modules", "venv",
	".venv", "env", "virtualenv", "dist", "build",
	".DS_Store", "Thumbs.db", "*.pyc", "*.pyo",
	".coverage", ".tox", ".nox", "htmlcov",
	"eggs", ".eggs", "*.egg-info", ".installed.cfg",
	"develop-eggs", "downloads", "lib", "lib64",
	"parts", "sdist", "var", "wheels", ".Python",
	".gitignore", ".gitattributes", ".gitmodules",
	".svn", ".hg", "*.swp", "*.swo", "*~",
	".cache", ".nyc_output", "npm-debug.log*",
	"yarn-debug.log*", "yarn-error.log*", ".npm",
	".yarn-integrity", "ENV", "env.bak", "venv.bak",
	"target", "out", "bin", "obj", "._*",
	".Spotlight-V100", ".Trashes", "ehthumbs.db",
	"Desktop.ini", "*.log", "logs", "*.tmp", "*.temp",
	".tmp", ".temp", "_build", "site", ".jekyll-cache",
	"Pipfile.lock", "poetry.lock", "package-lock.json",
	"yarn.lock",
}

func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Exclude.Patterns == nil {
		cfg.Exclude.Patterns = append([]string(nil), DefaultExclusions...)
	}
	if len(cfg.Parse.Extensions) == 0 {
		cfg.Parse.Extensions = []string{".py"}
	}
	if cfg.Parse.Workers == 0 {
		cfg.Parse.Workers = runtime.NumCPU()
	}
	if cfg.Parse.MaxFileBytes == 0 {
		cfg.Parse.MaxFileBytes = 2 << 20
	}
	if cfg.Visibility.PrivatePrefix == "" {
		cfg.Visibility.PrivatePrefix = "_"
	}
	if cfg.Visibility.StrictPrivatePrefix == "" {
		cfg.Visibility.StrictPrivatePrefix = "__"
	}
	if cfg.Tree.IncludeStats == nil {
		include := true
		cfg.Tree.IncludeStats = &include
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "docs"
	}
	if cfg.Output.UML == "" {
		cfg.Output.UML = "uml.txt"
	}
	if cfg.Output.Tree == "" {
		cfg.Output.Tree = "tree-structure.txt"
	}
	if cfg.Output.Functions == "" {
		cfg.Output.Functions = "functions.md"
	}
	if len(cfg.Output.Artifacts) == 0 {
		cfg.Output.Artifacts = []string{ArtifactUML, ArtifactTree, ArtifactFunctions}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 10
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 3
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 28
	}
}

// ExclusionPatterns returns the effective exclusion list in order.
func (c *Config) ExclusionPatterns() []string {
	out := make([]string, 0, len(c.Exclude.Patterns)+len(c.Exclude.Extra))
	out = append(out, c.Exclude.Patterns...)
	out = append(out, c.Exclude.Extra...)
	return out
}

// StatsEnabled reports whether the tree artifact carries the statistics block.
func (c *Config) StatsEnabled() bool {
	return c.Tree.IncludeStats == nil || *c.Tree.IncludeStats
}

// OutputPath returns the file an artifact is written to.
func (c *Config) OutputPath(artifact string) string {
	switch artifact {
	case ArtifactUML:
		return c.Output.UML
	case ArtifactTree:
		return c.Output.Tree
	case ArtifactFunctions:
		return c.Output.Functions
	}
	return ""
}
