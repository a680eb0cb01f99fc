package tracker

// Decision is the sync action chosen for one run directory.
type Decision string

const (
	// DecisionRegister creates a new flow-cell record.
	DecisionRegister Decision = "register"
	// DecisionUpdate rewrites the mutable fields of the existing record.
	DecisionUpdate Decision = "update"
	// DecisionSkipFinal leaves the record alone because its sequencing
	// status is final and would be clobbered by an update.
	DecisionSkipFinal Decision = "skip-final"
	// DecisionSkipUpToDate leaves the record alone because the rebuilt
	// fields already match what the service stores.
	DecisionSkipUpToDate Decision = "skip-up-to-date"
	// DecisionSkipDisabled reports that the needed write is not enabled
	// by configuration.
	DecisionSkipDisabled Decision = "skip-disabled"
)

// Mutates reports whether executing the decision writes to the service.
func (d Decision) Mutates() bool {
	return d == DecisionRegister || d == DecisionUpdate
}

// Decide picks the sync action for one run. remote is nil when the
// service does not know the flow cell yet; local is the rebuilt write
// payload. Updates always require the update switch; force additionally
// lifts the final-status protection and the up-to-date short circuit.
// The decision depends only on its inputs.
func Decide(remote *FlowCell, local *FlowCellPayload, register, update, force bool) Decision {
	if remote == nil {
		if register {
			return DecisionRegister
		}
		return DecisionSkipDisabled
	}
	if remote.StatusSequencing.IsFinal() {
		if update && force {
			return DecisionUpdate
		}
		return DecisionSkipFinal
	}
	if !update {
		return DecisionSkipDisabled
	}
	if !force && upToDate(remote, local) {
		return DecisionSkipUpToDate
	}
	return DecisionUpdate
}

// upToDate compares the fields an update would rewrite.
func upToDate(remote *FlowCell, local *FlowCellPayload) bool {
	return remote.PlannedReads == local.PlannedReads &&
		remote.CurrentReads == local.CurrentReads &&
		remote.StatusSequencing == local.StatusSequencing
}
