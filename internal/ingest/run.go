package ingest

// run.go - Orchestration of one ingestion pass.

import (
	"context"
	"fmt"
	"time"

	"github.com/seqstack-labs/flowsync/internal/tracker"
	"github.com/seqstack-labs/flowsync/pkg/illumina"
)

// Run processes the given run directories in order. Failures are
// isolated per path and recorded in the result; Run itself only returns
// an error when the pass cannot usefully continue, i.e. on cancellation
// or when the service rejects the API token.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	result := &Result{}
	defer func() { result.Duration = time.Since(start) }()

	p.logger.Info("starting ingestion pass", "paths", len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome := p.processPath(ctx, path)
		result.Outcomes = append(result.Outcomes, outcome)

		switch outcome.Status {
		case PathFailed:
			p.logger.Error("run directory failed", "path", path, "error", outcome.Err)
		case PathWarning:
			p.logger.Warn("run directory finished with warnings",
				"path", path, "warnings", len(outcome.Warnings))
		default:
			p.logger.Info("run directory processed",
				"path", path, "decision", string(outcome.Decision), "histograms", outcome.Histograms)
		}

		// A rejected token fails every subsequent path the same way.
		if tracker.IsAuthFailure(outcome.Err) {
			return result, fmt.Errorf("aborting pass: %w", outcome.Err)
		}
	}

	p.logger.Info("ingestion pass finished", "summary", result.Summary())
	return result, nil
}

// processPath runs one directory through the pipeline and finalizes its
// outcome classification.
func (p *Pipeline) processPath(ctx context.Context, path string) PathOutcome {
	start := time.Now()
	outcome := p.runPath(ctx, path)
	outcome.Duration = time.Since(start)

	switch {
	case outcome.Err != nil:
		outcome.Status = PathFailed
	case len(outcome.Warnings) > 0:
		outcome.Status = PathWarning
	default:
		outcome.Status = PathSuccess
	}
	return outcome
}

func (p *Pipeline) runPath(ctx context.Context, path string) PathOutcome {
	outcome := PathOutcome{Path: path}

	// 1. Read the run directory metadata.
	desc, err := illumina.ReadFolder(path)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.RunID = desc.RunID
	outcome.FlowCell = desc.FlowCell
	outcome.Layout = desc.Layout

	p.logger.Info("processing run directory",
		"path", path, "run", desc.RunID, "layout", string(desc.Layout))

	// 2. Reconcile the flow-cell record.
	sync, err := p.syncer.SyncFlowCell(ctx, desc)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Decision = sync.Decision
	outcome.Sequencing = sync.Status

	// 3. Compute and submit index histograms.
	if !p.cfg.AnalyzeAdapters || p.analyzer == nil {
		return outcome
	}
	if sync.FlowCell == nil {
		// No stored record to attach histograms to, which happens for
		// skipped unknown flow cells and dry-run registrations.
		p.logger.Debug("skipping histograms, no stored record", "path", path)
		return outcome
	}
	if !desc.Layout.SupportsAdapterSampling() {
		p.logger.Debug("layout does not support adapter sampling",
			"path", path, "layout", string(desc.Layout))
		return outcome
	}

	positions := p.syncer.HistogramPositions(desc, sync.FlowCell)
	if len(positions) == 0 {
		p.logger.Debug("histograms already stored", "run", desc.RunID)
		return outcome
	}

	analysis, err := p.analyzer.Analyze(ctx, desc, positions)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to analyze adapters: %w", err)
		return outcome
	}
	outcome.TilesSampled = analysis.TilesSampled
	outcome.SkippedSamples = analysis.SkippedSamples
	outcome.Warnings = append(outcome.Warnings, analysis.Warnings...)

	// A histogram without any decoded samples carries no information,
	// so it is not submitted.
	payloads := make([]*tracker.HistogramPayload, 0, len(analysis.Histograms))
	for _, h := range analysis.Histograms {
		if h.SampleCount == 0 {
			continue
		}
		payloads = append(payloads, &tracker.HistogramPayload{
			IndexReadNo: h.IndexRead,
			SampleSize:  h.SampleCount,
			Histogram:   h.Counts,
		})
	}
	if err := p.syncer.SubmitHistograms(ctx, sync.FlowCell, payloads); err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Histograms = len(payloads)
	return outcome
}
