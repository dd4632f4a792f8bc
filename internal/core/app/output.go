package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"projectdocs/internal/shared/observability"
	"projectdocs/internal/shared/util"
	"projectdocs/internal/ui/report"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Render produces the requested artifacts from a finished (or partial)
// analysis. A nil kinds slice falls back to output.artifacts.
func (a *App) Render(ctx context.Context, res *Result, kinds []report.Kind) ([]report.Artifact, error) {
	_, span := observability.Tracer.Start(ctx, "app.Render", trace.WithAttributes(attribute.String("run_id", res.RunID)))
	defer span.End()

	if kinds == nil {
		parsed, err := report.ParseKinds(a.Config.Output.Artifacts)
		if err != nil {
			return nil, err
		}
		kinds = parsed
	}

	start := time.Now()
	arts, err := a.renderer.Render(kinds, res.Project, res.Scan)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	observability.AnalysisDuration.WithLabelValues("render").Observe(time.Since(start).Seconds())
	return arts, nil
}

// OutputTarget resolves where an artifact is written: the configured file
// name joined onto dir, unless the name is already absolute.
func (a *App) OutputTarget(dir string, kind report.Kind) string {
	name := strings.TrimSpace(a.Config.OutputPath(string(kind)))
	if name == "" {
		name = string(kind) + ".txt"
	}
	if filepath.IsAbs(name) {
		return name
	}
	if dir == "" {
		dir = a.Config.Output.Dir
	}
	return filepath.Join(dir, name)
}

// WriteArtifacts writes each artifact to its target and returns the paths in
// artifact order.
func (a *App) WriteArtifacts(dir string, arts []report.Artifact) ([]string, error) {
	paths := make([]string, 0, len(arts))
	for _, art := range arts {
		target := a.OutputTarget(dir, art.Kind)
		if err := util.WriteStringWithDirs(target, art.Content, 0o644); err != nil {
			return paths, fmt.Errorf("write %s output %q: %w", art.Kind, target, err)
		}
		a.logger.Debug("wrote artifact", "kind", art.Kind, "path", target, "bytes", len(art.Content))
		paths = append(paths, target)
	}
	return paths, nil
}

// Injection records which artifacts were spliced into one Markdown file.
type Injection struct {
	Path  string
	Kinds []report.Kind
}

// InjectArtifacts refreshes the marker regions of every output.inject file.
// Files without markers for the rendered kinds are left untouched.
func (a *App) InjectArtifacts(arts []report.Artifact) ([]Injection, error) {
	out := make([]Injection, 0, len(a.Config.Output.Inject))
	for _, path := range a.Config.Output.Inject {
		kinds, err := report.InjectArtifacts(path, arts)
		if err != nil {
			return out, err
		}
		if len(kinds) == 0 {
			a.logger.Warn("no projectdocs markers found", "path", path)
			continue
		}
		a.logger.Debug("injected artifacts", "path", path, "kinds", kinds)
		out = append(out, Injection{Path: path, Kinds: kinds})
	}
	return out, nil
}
