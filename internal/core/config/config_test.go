package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "projectdocs.toml", `
[exclude]
extra = ["fixtures", "*.generated.py"]

[parse]
extensions = [".py", ".pyi"]
workers = 3
timeout = "30s"
read_rate = 250.0

[visibility]
exempt_dunder = true

[tree]
max_depth = 4

[output]
dir = "out"
artifacts = ["uml", "functions"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".py", ".pyi"}, cfg.Parse.Extensions)
	assert.Equal(t, 3, cfg.Parse.Workers)
	assert.Equal(t, 30*time.Second, cfg.Parse.Timeout)
	assert.Equal(t, 250.0, cfg.Parse.ReadRate)
	assert.True(t, cfg.Visibility.ExemptDunder)
	assert.Equal(t, "_", cfg.Visibility.PrivatePrefix)
	assert.Equal(t, "__", cfg.Visibility.StrictPrivatePrefix)
	assert.Equal(t, 4, cfg.Tree.MaxDepth)
	assert.True(t, cfg.StatsEnabled())
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, []string{ArtifactUML, ArtifactFunctions}, cfg.Output.Artifacts)

	patterns := cfg.ExclusionPatterns()
	assert.Contains(t, patterns, ".git")
	assert.Contains(t, patterns, "node_modules")
	assert.Equal(t, "*.generated.py", patterns[len(patterns)-1])
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "projectdocs.yaml", `
exclude:
  patterns: [".git", "vendor"]
parse:
  workers: 2
  timeout: 1m
tree:
  include_stats: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".git", "vendor"}, cfg.ExclusionPatterns())
	assert.Equal(t, 2, cfg.Parse.Workers)
	assert.Equal(t, time.Minute, cfg.Parse.Timeout)
	assert.False(t, cfg.StatsEnabled())
	assert.Equal(t, []string{".py"}, cfg.Parse.Extensions)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "projectdocs.toml", ``)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultExclusions, cfg.Exclude.Patterns)
	assert.GreaterOrEqual(t, cfg.Parse.Workers, 1)
	assert.Equal(t, int64(2<<20), cfg.Parse.MaxFileBytes)
	assert.Equal(t, "uml.txt", cfg.OutputPath(ArtifactUML))
	assert.Equal(t, "tree-structure.txt", cfg.OutputPath(ArtifactTree))
	assert.Equal(t, "functions.md", cfg.OutputPath(ArtifactFunctions))
	assert.Equal(t, "", cfg.OutputPath("svg"))
}

func TestDefaultConfigIsIndependent(t *testing.T) {
	a := DefaultConfig()
	a.Exclude.Patterns[0] = "changed"
	b := DefaultConfig()
	assert.Equal(t, DefaultExclusions[0], b.Exclude.Patterns[0])
	assert.NotEqual(t, "changed", DefaultExclusions[0])
}

func TestLoadError(t *testing.T) {
	_, err := Load("nonexistent.toml")
	assert.Error(t, err)

	path := writeConfig(t, "bad.toml", `[parse`)
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, []string{".py"}, cfg.Parse.Extensions)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PROJECTDOCS_PARSE_WORKERS", "7")
	t.Setenv("PROJECTDOCS_PARSE_TIMEOUT", "5s")
	t.Setenv("PROJECTDOCS_EXCLUDE_EXTRA", " tmp , cache ,")
	t.Setenv("PROJECTDOCS_VISIBILITY_EXEMPT_DUNDER", "TRUE")
	t.Setenv("PROJECTDOCS_TREE_MAX_DEPTH", "not-a-number")

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, 7, cfg.Parse.Workers)
	assert.Equal(t, 5*time.Second, cfg.Parse.Timeout)
	assert.Equal(t, []string{"tmp", "cache"}, cfg.Exclude.Extra)
	assert.True(t, cfg.Visibility.ExemptDunder)
	assert.Equal(t, 0, cfg.Tree.MaxDepth)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "BadGlob", mutate: func(c *Config) { c.Exclude.Extra = []string{"[unclosed"} }, want: "is invalid"},
		{name: "PathPattern", mutate: func(c *Config) { c.Exclude.Extra = []string{"a/b"} }, want: "single path segment"},
		{name: "Workers", mutate: func(c *Config) { c.Parse.Workers = -1 }, want: "parse.workers"},
		{name: "Extension", mutate: func(c *Config) { c.Parse.Extensions = []string{"py"} }, want: "must start with a dot"},
		{name: "Prefixes", mutate: func(c *Config) { c.Visibility.StrictPrivatePrefix = "_" }, want: "must extend"},
		{name: "Artifact", mutate: func(c *Config) { c.Output.Artifacts = []string{"svg"} }, want: "unknown artifact"},
		{name: "Conflict", mutate: func(c *Config) { c.Output.Tree = c.Output.UML }, want: "output conflict"},
		{name: "Inject", mutate: func(c *Config) { c.Output.Inject = []string{" "} }, want: "output.inject"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			errs := Validate(cfg)
			require.NotEmpty(t, errs)
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tc.want) {
					found = true
				}
			}
			assert.True(t, found, "expected %q in %v", tc.want, errs)
		})
	}

	assert.Empty(t, Validate(DefaultConfig()))
}
