package ingest

// result.go - Per-path outcome records and pass counters.

import (
	"fmt"
	"time"

	"github.com/seqstack-labs/flowsync/internal/tracker"
	"github.com/seqstack-labs/flowsync/pkg/illumina"
)

// PathStatus classifies the outcome of one run directory.
type PathStatus string

const (
	// PathSuccess means metadata and histograms went through cleanly.
	PathSuccess PathStatus = "success"
	// PathWarning means the pass finished but some samples or tiles
	// were lost.
	PathWarning PathStatus = "warning"
	// PathFailed means the directory could not be processed.
	PathFailed PathStatus = "failed"
)

// PathOutcome reports what happened to one run directory.
type PathOutcome struct {
	// Path is the run directory that was processed.
	Path string
	// RunID is the vendor run identifier, empty when metadata parsing
	// failed.
	RunID string
	// FlowCell is the flow-cell vendor identifier.
	FlowCell string
	// Layout is the detected folder layout.
	Layout illumina.FolderLayout
	// Status classifies the outcome.
	Status PathStatus
	// Decision is the sync action that was chosen, empty when the pass
	// failed before deciding.
	Decision tracker.Decision
	// Sequencing is the sequencing status that was reported.
	Sequencing illumina.SequencingStatus
	// Histograms is the number of index histograms submitted (or logged
	// in dry-run mode).
	Histograms int
	// TilesSampled and SkippedSamples summarize the sampling pass.
	TilesSampled   int
	SkippedSamples int
	// Warnings lists non-fatal problems, such as unreadable tiles.
	Warnings []string
	// Err is the failure that stopped processing, nil otherwise.
	Err error
	// Duration is the wall time spent on the directory.
	Duration time.Duration
}

// ErrorMessage returns the failure text, or "" when the path did not
// fail.
func (o *PathOutcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Result is the outcome of one ingestion pass.
type Result struct {
	// Outcomes holds one entry per processed path, in input order.
	Outcomes []PathOutcome
	// Duration is the wall time of the pass.
	Duration time.Duration
}

// Counts returns how many paths succeeded, finished with warnings, and
// failed.
func (r *Result) Counts() (succeeded, warned, failed int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case PathSuccess:
			succeeded++
		case PathWarning:
			warned++
		case PathFailed:
			failed++
		}
	}
	return succeeded, warned, failed
}

// HasFailures reports whether any path failed.
func (r *Result) HasFailures() bool {
	_, _, failed := r.Counts()
	return failed > 0
}

// HasWarnings reports whether any path finished with warnings.
func (r *Result) HasWarnings() bool {
	_, warned, _ := r.Counts()
	return warned > 0
}

// Summary returns a human-readable one-liner for logs.
func (r *Result) Summary() string {
	succeeded, warned, failed := r.Counts()
	return fmt.Sprintf("%d paths | %d succeeded | %d warnings | %d failed | %s",
		len(r.Outcomes), succeeded, warned, failed, r.Duration.Round(time.Millisecond))
}
