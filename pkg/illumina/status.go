package illumina

// SequencingStatus is the lifecycle state of a flow cell on the tracking
// service.
type SequencingStatus string

// Sequencing status constants.
const (
	StatusInitial    SequencingStatus = "initial"
	StatusInProgress SequencingStatus = "in_progress"
	StatusComplete   SequencingStatus = "complete"
	StatusFailed     SequencingStatus = "failed"
	StatusClosed     SequencingStatus = "closed"
)

// IsFinal reports whether the status protects the record from routine
// updates. Everything past initial/in_progress is final.
func (s SequencingStatus) IsFinal() bool {
	return s != StatusInitial && s != StatusInProgress
}

// DeriveStatus computes the sequencing status to report for d given the
// status currently stored on the tracking service. Operator-set terminal
// states are kept; a read structure diverging from the planned one means
// the run failed; the end-of-run marker means it completed.
func DeriveStatus(d *Descriptor, current SequencingStatus) SequencingStatus {
	switch {
	case current == StatusClosed || current == StatusComplete:
		return current
	case len(d.PlannedReads) > 0 && !ReadsEqual(d.Reads, d.PlannedReads):
		return StatusFailed
	case d.Completed:
		return StatusComplete
	default:
		return StatusInProgress
	}
}
