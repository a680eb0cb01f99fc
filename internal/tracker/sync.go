package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/seqstack-labs/flowsync/pkg/illumina"
)

// Options control how run directories are synchronized.
type Options struct {
	// Project is the tracking service project the flow cells belong to.
	Project uuid.UUID
	// Operator is recorded on newly registered flow cells.
	Operator string
	// Register enables creating missing records.
	Register bool
	// Update enables rewriting existing records.
	Update bool
	// ForceUpdate rewrites existing records even when their status is
	// final or the stored fields are already up to date.
	ForceUpdate bool
	// ForceHistograms recomputes and resubmits histograms for positions
	// the service already stores.
	ForceHistograms bool
	// DryRun logs every write instead of performing it.
	DryRun bool
}

// Syncer reconciles local run metadata with the tracking service.
type Syncer struct {
	client *Client
	opts   Options
	logger *slog.Logger
}

// NewSyncer creates a Syncer over client with the given options.
func NewSyncer(client *Client, opts Options, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Syncer{client: client, opts: opts, logger: logger}
}

// SyncOutcome reports what happened to one flow-cell record.
type SyncOutcome struct {
	// Decision is the action that was chosen.
	Decision Decision
	// FlowCell is the stored record after the action. It is nil when
	// the service has no record, which happens on a skipped missing
	// flow cell and on a dry-run register.
	FlowCell *FlowCell
	// Status is the sequencing status that was (or would be) reported.
	Status illumina.SequencingStatus
}

// SyncFlowCell resolves the flow cell of desc and applies the decision
// table: register missing records, update existing non-final ones, and
// skip everything else. Dry-run mode decides normally but issues no
// write.
func (s *Syncer) SyncFlowCell(ctx context.Context, desc *illumina.Descriptor) (*SyncOutcome, error) {
	remote, err := s.client.ResolveFlowCell(ctx, s.opts.Project, desc.Instrument, desc.RunNumber, desc.FlowCell)
	if err != nil && !IsNotFound(err) {
		return nil, fmt.Errorf("failed to resolve flow cell %s: %w", desc.FlowCell, err)
	}

	// The reported status is derived from what the service currently
	// stores; a missing record starts from initial.
	current := illumina.StatusInitial
	if remote != nil {
		current = remote.StatusSequencing
	}
	status := illumina.DeriveStatus(desc, current)

	var payload *FlowCellPayload
	if remote != nil {
		payload = remote.Payload()
		payload.PlannedReads = illumina.DescribeReads(desc.PlannedReads)
		payload.CurrentReads = illumina.DescribeReads(desc.Reads)
		payload.StatusSequencing = status
	} else {
		payload = NewPayload(desc, s.opts.Operator, status)
	}

	decision := Decide(remote, payload, s.opts.Register, s.opts.Update, s.opts.ForceUpdate)
	outcome := &SyncOutcome{Decision: decision, FlowCell: remote, Status: status}

	switch decision {
	case DecisionRegister:
		if s.opts.DryRun {
			s.logger.Info("dry-run: would register flow cell",
				"flowcell", desc.FlowCell, "status", status)
			outcome.FlowCell = nil
			return outcome, nil
		}
		created, err := s.client.CreateFlowCell(ctx, s.opts.Project, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to register flow cell %s: %w", desc.FlowCell, err)
		}
		s.logger.Info("registered flow cell",
			"flowcell", desc.FlowCell, "uuid", created.UUID, "status", status)
		outcome.FlowCell = created

	case DecisionUpdate:
		if s.opts.DryRun {
			s.logger.Info("dry-run: would update flow cell",
				"flowcell", desc.FlowCell, "uuid", remote.UUID, "status", status)
			return outcome, nil
		}
		updated, err := s.client.UpdateFlowCell(ctx, s.opts.Project, remote.UUID, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to update flow cell %s: %w", desc.FlowCell, err)
		}
		s.logger.Info("updated flow cell",
			"flowcell", desc.FlowCell, "uuid", updated.UUID, "status", status)
		outcome.FlowCell = updated

	default:
		s.logger.Info("skipping flow cell write",
			"flowcell", desc.FlowCell, "decision", string(decision))
	}
	return outcome, nil
}

// HistogramPositions returns the index read positions of desc that still
// need a histogram on the service. With ForceHistograms every position
// is recomputed regardless of what the service stores.
func (s *Syncer) HistogramPositions(desc *illumina.Descriptor, fc *FlowCell) []int {
	var positions []int
	for _, ir := range illumina.IndexReads(desc.Reads) {
		if s.opts.ForceHistograms || !fc.HasHistogram(ir.Number) {
			positions = append(positions, ir.Number)
		}
	}
	return positions
}

// SubmitHistograms stores the given histograms for the flow cell, one
// request per index read position. Dry-run mode logs the submissions
// and skips them.
func (s *Syncer) SubmitHistograms(ctx context.Context, fc *FlowCell, payloads []*HistogramPayload) error {
	for _, payload := range payloads {
		payload.FlowCell = fc.UUID
		if s.opts.DryRun {
			s.logger.Info("dry-run: would submit histogram",
				"flowcell", fc.VendorID, "index_read", payload.IndexReadNo,
				"sequences", len(payload.Histogram))
			continue
		}
		if err := s.client.SubmitHistogram(ctx, s.opts.Project, payload); err != nil {
			return fmt.Errorf("failed to submit histogram for index read %d: %w", payload.IndexReadNo, err)
		}
		s.logger.Info("submitted histogram",
			"flowcell", fc.VendorID, "index_read", payload.IndexReadNo,
			"sequences", len(payload.Histogram))
	}
	return nil
}
