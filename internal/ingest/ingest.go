// Package ingest drives the ingestion pipeline: it reads run-directory
// metadata, reconciles each flow cell with the tracking service, and
// computes and submits index histograms where the folder layout
// supports sampling.
package ingest

import (
	"log/slog"

	"github.com/seqstack-labs/flowsync/internal/adapters"
	"github.com/seqstack-labs/flowsync/internal/tracker"
)

// Config holds pipeline configuration.
type Config struct {
	// Syncer reconciles flow-cell records with the tracking service.
	Syncer *tracker.Syncer
	// Analyzer computes index histograms from base-call containers.
	Analyzer *adapters.Analyzer
	// AnalyzeAdapters enables histogram computation for layouts that
	// support sampling.
	AnalyzeAdapters bool
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Pipeline processes run directories one at a time. A failure in one
// directory is recorded in its outcome and does not stop the pass.
type Pipeline struct {
	syncer   *tracker.Syncer
	analyzer *adapters.Analyzer
	cfg      Config
	logger   *slog.Logger
}

// New creates a Pipeline from cfg.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		syncer:   cfg.Syncer,
		analyzer: cfg.Analyzer,
		cfg:      cfg,
		logger:   logger,
	}
}
