package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"projectdocs/internal/core/config"
	"projectdocs/internal/core/errors"
	"projectdocs/internal/engine/model"
	"projectdocs/internal/engine/parser"
	"projectdocs/internal/engine/scanner"
	"projectdocs/internal/engine/visibility"
	"projectdocs/internal/shared/observability"
	"projectdocs/internal/shared/util"
	"projectdocs/internal/ui/report"
	"projectdocs/internal/ui/report/formats"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type App struct {
	Config   *config.Config
	Parser   *parser.Parser
	scanner  *scanner.Scanner
	renderer *report.Renderer
	limiter  *util.Limiter
	logger   *slog.Logger
}

// Result is one analysis run. Project is always set, even when Analyze also
// returns a timeout error.
type Result struct {
	RunID   string
	Scan    *scanner.Result
	Project *model.Project
	Total   int // supported files discovered
	Parsed  int // files that reached the parser, successfully or not
	Elapsed time.Duration
}

type fileResult struct {
	file *parser.File
	diag *model.Diagnostic
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	sc, err := scanner.New(cfg.ExclusionPatterns())
	if err != nil {
		return nil, err
	}
	p, err := parser.NewParser(parser.NewGrammarLoader(), parser.Options{
		Extensions:   cfg.Parse.Extensions,
		MaxFileBytes: cfg.Parse.MaxFileBytes,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Parser:  p,
		scanner: sc,
		renderer: report.NewRenderer(report.Options{
			Visibility: visibility.Policy{
				PrivatePrefix:       cfg.Visibility.PrivatePrefix,
				StrictPrivatePrefix: cfg.Visibility.StrictPrivatePrefix,
				ExemptDunder:        cfg.Visibility.ExemptDunder,
			},
			Tree: formats.TreeOptions{
				MaxDepth:     cfg.Tree.MaxDepth,
				IncludeStats: cfg.StatsEnabled(),
			},
		}),
		limiter: util.NewLimiter(cfg.Parse.ReadRate, cfg.Parse.Workers),
		logger:  logger,
	}, nil
}

// Analyze scans root, parses every supported file on a bounded worker pool
// and builds the project model. Invalid roots fail before any parsing. When
// the deadline (ctx or parse.timeout) passes, or ctx is canceled, the
// partial result comes back together with a TIMEOUT error.
func (a *App) Analyze(ctx context.Context, root string) (*Result, error) {
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID)
	started := time.Now()

	ctx, span := observability.Tracer.Start(ctx, "app.Analyze", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("root", root),
	))
	defer span.End()

	if a.Config.Parse.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.Parse.Timeout)
		defer cancel()
	}

	scanStart := time.Now()
	scan, err := a.scan(ctx, root)
	if err != nil {
		span.RecordError(err)
		return nil, errors.AddContext(err, errors.CtxOperation, "scan")
	}
	observability.AnalysisDuration.WithLabelValues("scan").Observe(time.Since(scanStart).Seconds())
	for _, issue := range scan.Issues {
		logger.Warn("failed to read directory", "path", issue.Path, "error", issue.Message)
	}

	files := make([]string, 0, len(scan.Files))
	for _, rel := range scan.Files {
		if a.Parser.IsSupportedPath(rel) {
			files = append(files, rel)
		}
	}
	logger.Info("scan complete", "root", scan.Root, "files", scan.Stats.Files, "dirs", scan.Stats.Dirs, "sources", len(files))

	parseStart := time.Now()
	parsed, diags, processed := a.parseAll(ctx, logger, scan.Root, files)
	observability.AnalysisDuration.WithLabelValues("parse").Observe(time.Since(parseStart).Seconds())

	buildStart := time.Now()
	project := model.NewBuilder(scan.Root, scan.Name, a.Parser.SupportedExtensions()).Build(parsed, diags)
	observability.AnalysisDuration.WithLabelValues("build").Observe(time.Since(buildStart).Seconds())
	observability.ModelClasses.Set(float64(project.ClassCount()))

	res := &Result{
		RunID:   runID,
		Scan:    scan,
		Project: project,
		Total:   len(files),
		Parsed:  processed,
	}

	// Workers only skip files when the deadline has passed or the read
	// limiter cannot grant a token before it.
	if processed < len(files) {
		canceled := ctx.Err() == context.Canceled
		reason := "deadline exceeded"
		if canceled {
			reason = "analysis canceled"
		}
		msg := fmt.Sprintf("%s: %d of %d files processed", reason, processed, len(files))
		project.Diagnostics = append(project.Diagnostics, model.Diagnostic{Message: msg})
		res.Elapsed = time.Since(started)
		logger.Warn("analysis incomplete", "reason", reason, "processed", processed, "total", len(files), "elapsed", res.Elapsed)

		timeoutErr := errors.New(errors.CodeTimeout, msg)
		if canceled {
			timeoutErr = errors.Wrap(ctx.Err(), errors.CodeTimeout, msg)
		}
		span.RecordError(timeoutErr)
		return res, timeoutErr
	}

	res.Elapsed = time.Since(started)
	logger.Info("analysis complete",
		"modules", len(project.Modules),
		"classes", project.ClassCount(),
		"functions", project.FunctionCount(),
		"diagnostics", len(project.Diagnostics),
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func (a *App) scan(ctx context.Context, root string) (*scanner.Result, error) {
	_, span := observability.Tracer.Start(ctx, "app.scan")
	defer span.End()

	res, err := a.scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	observability.ScanItems.WithLabelValues("files").Set(float64(res.Stats.Files))
	observability.ScanItems.WithLabelValues("dirs").Set(float64(res.Stats.Dirs))
	span.SetAttributes(attribute.Int("files", res.Stats.Files), attribute.Int("dirs", res.Stats.Dirs))
	return res, nil
}

// parseAll fans files out to at most Parse.Workers goroutines. Workers never
// touch shared state; a single aggregator owns the parsed records, the
// diagnostics and the processed count.
func (a *App) parseAll(ctx context.Context, logger *slog.Logger, root string, files []string) ([]*parser.File, []model.Diagnostic, int) {
	ctx, span := observability.Tracer.Start(ctx, "app.parseAll", trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	results := make(chan fileResult)
	var (
		parsed    []*parser.File
		diags     []model.Diagnostic
		processed int
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			processed++
			if r.diag != nil {
				diags = append(diags, *r.diag)
				continue
			}
			parsed = append(parsed, r.file)
		}
	}()

	workers := a.Config.Parse.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for _, rel := range files {
		if ctx.Err() != nil {
			inFlight, longest := a.Parser.PoolStats()
			logger.Warn("stopping parse dispatch", "error", ctx.Err(), "in_flight", inFlight, "longest_parse", longest)
			span.SetAttributes(attribute.Int("in_flight_at_stop", inFlight))
			break
		}
		g.Go(func() error {
			// Deadline check between files.
			if ctx.Err() != nil {
				observability.FilesParsedTotal.WithLabelValues(observability.OutcomeSkipped).Inc()
				return nil
			}
			if err := a.limiter.Wait(ctx, 1); err != nil {
				observability.FilesParsedTotal.WithLabelValues(observability.OutcomeSkipped).Inc()
				return nil
			}
			results <- a.parseOne(logger, root, rel)
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-done

	span.SetAttributes(attribute.Int("processed", processed), attribute.Int("diagnostics", len(diags)))
	return parsed, diags, processed
}

func (a *App) parseOne(logger *slog.Logger, root, rel string) fileResult {
	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(parser.LanguagePython).Observe(time.Since(start).Seconds())
	}()

	file, err := a.readAndParse(filepath.Join(root, filepath.FromSlash(rel)), rel)
	if err != nil {
		logger.Warn("failed to parse file", "path", rel, "error", err)
		observability.FilesParsedTotal.WithLabelValues(observability.OutcomeFailed).Inc()
		observability.DiagnosticsTotal.Inc()
		return fileResult{diag: &model.Diagnostic{Path: rel, Message: errors.Message(err)}}
	}
	logger.Debug("parsed file", "path", rel, "classes", len(file.Classes), "functions", len(file.Functions))
	observability.FilesParsedTotal.WithLabelValues(observability.OutcomeOK).Inc()
	return fileResult{file: file}
}

func (a *App) readAndParse(abs, rel string) (*parser.File, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParse, "cannot read file")
	}
	if limit := a.Parser.MaxFileBytes(); limit > 0 && info.Size() > limit {
		return nil, errors.New(errors.CodeParse, fmt.Sprintf("file size %d exceeds limit of %d bytes", info.Size(), limit))
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParse, "cannot read file")
	}
	return a.Parser.ParseFile(rel, content)
}
