package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"projectdocs/internal/core/config"
	"projectdocs/internal/core/errors"
	"projectdocs/internal/shared/observability"
	"projectdocs/internal/ui/report"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func newApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	a, err := New(cfg, nil)
	require.NoError(t, err)
	return a
}

func renderAll(t *testing.T, a *App, res *Result) map[report.Kind]string {
	t.Helper()
	arts, err := a.Render(context.Background(), res, report.AllKinds())
	require.NoError(t, err)
	out := make(map[report.Kind]string, len(arts))
	for _, art := range arts {
		out[art.Kind] = art.Content
	}
	return out
}

func TestAnalyze_InheritanceAcrossModules(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"base.py": "class Animal:\n    def speak(self):\n        pass\n",
		"dog.py":  "from base import Animal\n\nclass Dog(Animal):\n    sound: str = 'woof'\n",
	})

	a := newApp(t, nil)
	res, err := a.Analyze(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Parsed)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Project.Diagnostics)

	dog, ok := res.Project.Class("dog.Dog")
	require.True(t, ok)
	require.Len(t, dog.Bases, 1)
	assert.True(t, dog.Bases[0].IsResolved())
	assert.Equal(t, "base.Animal", dog.Bases[0].Name)

	out := renderAll(t, a, res)
	assert.Contains(t, out[report.KindUML], "base.Animal <|-- dog.Dog\n")
	assert.Contains(t, out[report.KindUML], "    +sound: str\n")
	assert.NotContains(t, out[report.KindUML], res.RunID)
}

func TestAnalyze_AsyncFunctionDoc(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"svc/__init__.py": "",
		"svc/api.py": "import os\n\n" +
			"@cache\n" +
			"async def fetch(url: str) -> bytes:\n" +
			"    \"\"\"Fetch a resource.\n\n    More text.\n    \"\"\"\n" +
			"    return b''\n",
	})

	a := newApp(t, nil)
	res, err := a.Analyze(context.Background(), root)
	require.NoError(t, err)

	doc := renderAll(t, a, res)[report.KindFunctions]
	assert.Contains(t, doc, "## Module: svc.api\n**File:** `svc/api.py`\n\n**Imports:**\n- os\n\n")
	assert.Contains(t, doc, "### `async def fetch(url: str) -> bytes`\n\n**Decorators:**\n- `@cache`\n\n**Description:**\nFetch a resource.\n\n**Line:** 4\n")
}

func TestAnalyze_FaultIsolation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"good.py":   "class Good:\n    pass\n",
		"broken.py": "def f(:\n    pass\n",
		"other.py":  "def helper():\n    return 1\n",
	})

	failedBefore := testutil.ToFloat64(observability.FilesParsedTotal.WithLabelValues(observability.OutcomeFailed))

	a := newApp(t, nil)
	res, err := a.Analyze(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, res.Project.Diagnostics, 1)
	diag := res.Project.Diagnostics[0]
	assert.Equal(t, "broken.py", diag.Path)
	assert.Contains(t, diag.Message, "syntax error at line 1")

	names := make([]string, 0, len(res.Project.Modules))
	for _, m := range res.Project.Modules {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"good", "other"}, names)
	assert.Equal(t, 3, res.Parsed)

	failedAfter := testutil.ToFloat64(observability.FilesParsedTotal.WithLabelValues(observability.OutcomeFailed))
	assert.Equal(t, 1.0, failedAfter-failedBefore)
}

func TestAnalyze_DeterministicAcrossWorkerCounts(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"pkg/__init__.py": "",
		"pkg/bad.py":      "class (:\n",
		"README.md":       "# readme\n",
	}
	for i := 0; i < 24; i++ {
		dir := []string{"alpha", "beta", "gamma"}[i%3]
		name := filepath.ToSlash(filepath.Join("pkg", dir, "m"+string(rune('a'+i))+".py"))
		files[name] = "from pkg.base import Base\n\n" +
			"class C" + string(rune('A'+i)) + "(Base):\n    x = 1\n\n" +
			"def f" + string(rune('a'+i)) + "(a, *args, **kw):\n    pass\n"
	}
	files["pkg/base.py"] = "class Base:\n    _secret = None\n"
	writeTree(t, root, files)

	var reference map[report.Kind]string
	for _, workers := range []int{1, 2, 8, 32} {
		a := newApp(t, func(c *config.Config) { c.Parse.Workers = workers })
		res, err := a.Analyze(context.Background(), root)
		require.NoError(t, err)
		out := renderAll(t, a, res)
		if reference == nil {
			reference = out
			continue
		}
		for kind, content := range reference {
			assert.Equal(t, content, out[kind], "artifact %s differs with %d workers", kind, workers)
		}
	}
	assert.Contains(t, reference[report.KindTree], "README.md")
	assert.Contains(t, reference[report.KindUML], "pkg.base.Base <|-- pkg.alpha.ma.CA\n")
}

func TestAnalyze_ExclusionsPruned(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":                     "def main():\n    pass\n",
		"node_modules/dep/x.py":      "def leaked():\n    pass\n",
		"generated/skip.py":          "def skipped():\n    pass\n",
		"__pycache__/app.cpython.py": "def cached():\n    pass\n",
	})

	a := newApp(t, func(c *config.Config) { c.Exclude.Extra = []string{"generated"} })
	res, err := a.Analyze(context.Background(), root)
	require.NoError(t, err)

	out := renderAll(t, a, res)
	for _, content := range out {
		assert.NotContains(t, content, "node_modules")
		assert.NotContains(t, content, "leaked")
		assert.NotContains(t, content, "generated")
		assert.NotContains(t, content, "cached")
	}
	assert.Equal(t, 1, res.Total)
}

func TestAnalyze_InvalidRoot(t *testing.T) {
	a := newApp(t, nil)

	res, err := a.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsFatalInput(err))

	file := filepath.Join(t.TempDir(), "f.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))
	res, err = a.Analyze(context.Background(), file)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestAnalyze_ExpiredDeadlineReturnsPartialResult(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py": "class A:\n    pass\n",
		"b.py": "class B:\n    pass\n",
	})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	a := newApp(t, nil)
	res, err := a.Analyze(ctx, root)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Parsed)
	assert.Equal(t, 2, res.Total)

	diags := res.Project.Diagnostics
	require.NotEmpty(t, diags)
	last := diags[len(diags)-1]
	assert.Equal(t, "", last.Path)
	assert.Equal(t, "deadline exceeded: 0 of 2 files processed", last.Message)

	// The partial project still renders well-formed documents.
	out := renderAll(t, a, res)
	assert.True(t, strings.HasPrefix(out[report.KindUML], "@startuml\n"))
	assert.Contains(t, out[report.KindTree], "a.py")
}

func TestAnalyze_CanceledContextIsReportedAsCanceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py": "class A:\n    pass\n",
		"b.py": "class B:\n    pass\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var logs bytes.Buffer
	a, err := New(config.DefaultConfig(), slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)

	res, err := a.Analyze(ctx, root)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)

	last := res.Project.Diagnostics[len(res.Project.Diagnostics)-1]
	assert.Equal(t, "analysis canceled: 0 of 2 files processed", last.Message)
	assert.NotContains(t, last.Message, "deadline")

	assert.Contains(t, logs.String(), "stopping parse dispatch")
	assert.Contains(t, logs.String(), "in_flight=0")
	assert.Contains(t, logs.String(), "reason=\"analysis canceled\"")
}

func TestAnalyze_ConfiguredTimeoutWithReadRate(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py": "x = 1\n",
		"b.py": "y = 2\n",
		"c.py": "z = 3\n",
	})

	a := newApp(t, func(c *config.Config) {
		c.Parse.Workers = 1
		c.Parse.ReadRate = 0.5
		c.Parse.Timeout = 300 * time.Millisecond
	})
	res, err := a.Analyze(context.Background(), root)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	require.NotNil(t, res)
	assert.Less(t, res.Parsed, res.Total)
}

func TestAnalyze_EmptyProject(t *testing.T) {
	root := t.TempDir()
	a := newApp(t, nil)
	res, err := a.Analyze(context.Background(), root)
	require.NoError(t, err)

	out := renderAll(t, a, res)
	assert.Equal(t, "# Module Functions Documentation\n\nNo module-level functions found.\n", out[report.KindFunctions])
	assert.True(t, strings.HasSuffix(out[report.KindUML], "@enduml\n"))
	assert.Contains(t, out[report.KindTree], "- Total items: 0\n")
}

func TestWriteArtifacts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"m.py": "def f():\n    pass\n"})

	a := newApp(t, func(c *config.Config) { c.Output.Artifacts = []string{"functions", "tree"} })
	res, err := a.Analyze(context.Background(), root)
	require.NoError(t, err)

	arts, err := a.Render(context.Background(), res, nil)
	require.NoError(t, err)
	require.Len(t, arts, 2)
	assert.Equal(t, report.KindTree, arts[0].Kind)

	outDir := filepath.Join(t.TempDir(), "nested", "docs")
	paths, err := a.WriteArtifacts(outDir, arts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(outDir, "tree-structure.txt"),
		filepath.Join(outDir, "functions.md"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "### `def f()`")
}

func TestInjectArtifacts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"m.py": "class M:\n    pass\n"})

	readme := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# Title\n<!-- projectdocs:uml:start -->\n<!-- projectdocs:uml:end -->\n"), 0o644))
	plain := filepath.Join(t.TempDir(), "NOTES.md")
	require.NoError(t, os.WriteFile(plain, []byte("nothing to see\n"), 0o644))

	a := newApp(t, func(c *config.Config) { c.Output.Inject = []string{readme, plain} })
	res, err := a.Analyze(context.Background(), root)
	require.NoError(t, err)
	arts, err := a.Render(context.Background(), res, report.AllKinds())
	require.NoError(t, err)

	injected, err := a.InjectArtifacts(arts)
	require.NoError(t, err)
	require.Len(t, injected, 1)
	assert.Equal(t, readme, injected[0].Path)
	assert.Equal(t, []report.Kind{report.KindUML}, injected[0].Kinds)

	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.Contains(t, string(data), "```plantuml\n@startuml\n")
	assert.Contains(t, string(data), "class \"M\" as m.M {")

	untouched, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "nothing to see\n", string(untouched))
}
