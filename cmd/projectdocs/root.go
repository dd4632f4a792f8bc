package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"

	"projectdocs/internal/core/config"
	"projectdocs/internal/core/errors"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

const VERSION = "0.1.0"

const (
	exitOK      = 0
	exitFailure = 1
	exitTimeout = 2
)

const rootLongDescription = `projectdocs analyzes a tree of Python sources and writes three documents:
a PlantUML class diagram, a directory tree, and a Markdown catalogue of
module-level functions. Output is byte-identical across runs.`

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "projectdocs",
		Short:         "Generate structure documentation for a source tree",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newGenerateCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("projectdocs v%s\n", VERSION)
			if info, ok := debug.ReadBuildInfo(); ok {
				cmd.Printf("go version\t %s\n", info.GoVersion)
			}
		},
	}
}

// run executes the CLI and maps the outcome to an exit code. A timeout still
// writes the partial artifacts, so it gets its own code.
func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "error:", errors.Message(err))
	if errors.IsTimeout(err) {
		return exitTimeout
	}
	return exitFailure
}

// configureLogger installs the default slog logger. Logs go to stderr unless
// a log file is configured, in which case lumberjack rotates it.
func configureLogger(cfg config.Logging, verbose bool, stderr io.Writer) (*slog.Logger, func() error) {
	level := parseSlogLevel(cfg.Level, slog.LevelInfo)
	if verbose {
		level = slog.LevelDebug
	}

	var (
		out     io.Writer = stderr
		closeFn           = func() error { return nil }
	)
	if strings.TrimSpace(cfg.File) != "" {
		writer := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = writer
		closeFn = writer.Close
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn
}

func parseSlogLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return fallback
}
