package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seqstack-labs/flowsync/pkg/illumina"
)

func TestDecide(t *testing.T) {
	existing := &FlowCell{
		StatusSequencing: illumina.StatusInProgress,
		PlannedReads:     "100T8B",
		CurrentReads:     "100T8B",
	}
	final := &FlowCell{StatusSequencing: illumina.StatusComplete}
	matching := &FlowCellPayload{
		StatusSequencing: illumina.StatusInProgress,
		PlannedReads:     "100T8B",
		CurrentReads:     "100T8B",
	}
	changed := &FlowCellPayload{
		StatusSequencing: illumina.StatusComplete,
		PlannedReads:     "100T8B",
		CurrentReads:     "100T8B",
	}

	tests := []struct {
		name                    string
		remote                  *FlowCell
		local                   *FlowCellPayload
		register, update, force bool
		want                    Decision
	}{
		{"missing record registers", nil, changed, true, false, false, DecisionRegister},
		{"missing record without register", nil, changed, false, true, false, DecisionSkipDisabled},
		{"final status protected", final, changed, true, true, false, DecisionSkipFinal},
		{"final status forced", final, changed, false, true, true, DecisionUpdate},
		{"force needs update enabled", final, changed, true, false, true, DecisionSkipFinal},
		{"update disabled", existing, changed, true, false, false, DecisionSkipDisabled},
		{"update disabled despite force", existing, changed, true, false, true, DecisionSkipDisabled},
		{"stored fields up to date", existing, matching, true, true, false, DecisionSkipUpToDate},
		{"up to date forced", existing, matching, false, true, true, DecisionUpdate},
		{"changed fields update", existing, changed, true, true, false, DecisionUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.remote, tt.local, tt.register, tt.update, tt.force)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecide_IsPure(t *testing.T) {
	remote := &FlowCell{
		StatusSequencing: illumina.StatusInProgress,
		PlannedReads:     "100T8B",
		CurrentReads:     "100T",
	}
	local := &FlowCellPayload{
		StatusSequencing: illumina.StatusComplete,
		PlannedReads:     "100T8B",
		CurrentReads:     "100T8B",
	}

	first := Decide(remote, local, true, true, false)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Decide(remote, local, true, true, false))
	}
	assert.Equal(t, DecisionUpdate, first)
}

func TestDecision_Mutates(t *testing.T) {
	assert.True(t, DecisionRegister.Mutates())
	assert.True(t, DecisionUpdate.Mutates())
	assert.False(t, DecisionSkipFinal.Mutates())
	assert.False(t, DecisionSkipUpToDate.Mutates())
	assert.False(t, DecisionSkipDisabled.Mutates())
}
