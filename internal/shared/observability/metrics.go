package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "projectdocs_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectdocs_files_parsed_total",
		Help: "Total number of source files handed to the parser, by outcome.",
	}, []string{"outcome"})

	DiagnosticsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projectdocs_diagnostics_total",
		Help: "Total number of per-file diagnostics recorded.",
	})

	ScanItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "projectdocs_scan_items",
		Help: "Files and directories seen by the most recent scan.",
	}, []string{"kind"})

	ModelClasses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "projectdocs_model_classes",
		Help: "Number of classes in the most recently built project model.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "projectdocs_analysis_seconds",
		Help:    "Time spent on high-level analysis stages.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
)

const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)
