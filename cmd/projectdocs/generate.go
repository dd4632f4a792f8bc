package main

import (
	"context"
	"os"
	"time"

	"projectdocs/internal/core/app"
	"projectdocs/internal/core/config"
	"projectdocs/internal/core/errors"
	"projectdocs/internal/shared/observability"
	"projectdocs/internal/ui/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "projectdocs.toml"

type generateOptions struct {
	configPath string
	output     string
	only       []string
	exclude    []string
	inject     []string
	workers    int
	timeout    time.Duration
	maxDepth   int
	noStats    bool
	logFile    string
	verbose    bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <root>",
		Short: "Analyze a source tree and write the documentation artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to a TOML or YAML config file")
	f.StringVarP(&opts.output, "output", "o", "", "output directory for the artifacts")
	f.StringSliceVar(&opts.only, "only", nil, "artifacts to write: uml, tree, functions (comma separated)")
	f.StringArrayVarP(&opts.exclude, "exclude", "x", nil, "extra exclusion glob matched against path segments (can be repeated)")
	f.StringArrayVar(&opts.inject, "inject", nil, "Markdown file whose projectdocs markers are refreshed (can be repeated)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "number of parallel parse workers")
	f.DurationVar(&opts.timeout, "timeout", 0, "analysis deadline, e.g. 30s (0 disables)")
	f.IntVar(&opts.maxDepth, "max-depth", 0, "limit the directory tree depth (0 is unlimited)")
	f.BoolVar(&opts.noStats, "no-stats", false, "omit the statistics block from the tree")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

// loadConfig reads .env, the config file and env overrides, then layers the
// flags the user actually set on top.
func loadConfig(cmd *cobra.Command, opts *generateOptions) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, errors.CodeValidationError, "cannot load .env")
	}
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid configuration")
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Dir = opts.output
	}
	if flags.Changed("only") {
		cfg.Output.Artifacts = opts.only
	}
	if flags.Changed("exclude") {
		cfg.Exclude.Extra = append(cfg.Exclude.Extra, opts.exclude...)
	}
	if flags.Changed("inject") {
		cfg.Output.Inject = append(cfg.Output.Inject, opts.inject...)
	}
	if flags.Changed("workers") {
		cfg.Parse.Workers = opts.workers
	}
	if flags.Changed("timeout") {
		cfg.Parse.Timeout = opts.timeout
	}
	if flags.Changed("max-depth") {
		cfg.Tree.MaxDepth = opts.maxDepth
	}
	if flags.Changed("no-stats") {
		include := !opts.noStats
		cfg.Tree.IncludeStats = &include
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], errors.CodeValidationError, "invalid configuration")
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, opts *generateOptions, root string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, closeLog := configureLogger(cfg.Logging, opts.verbose, cmd.ErrOrStderr())
	defer closeLog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, VERSION)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("failed to flush traces", "error", err)
			}
		}()
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	res, analyzeErr := a.Analyze(ctx, root)
	if analyzeErr != nil && !errors.IsTimeout(analyzeErr) {
		return analyzeErr
	}

	kinds, err := report.ParseKinds(cfg.Output.Artifacts)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "invalid artifact list")
	}
	arts, err := a.Render(ctx, res, kinds)
	if err != nil {
		return err
	}
	paths, err := a.WriteArtifacts(cfg.Output.Dir, arts)
	if err != nil {
		return err
	}

	injected, err := a.InjectArtifacts(arts)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), res, paths, injected)
	return analyzeErr
}
