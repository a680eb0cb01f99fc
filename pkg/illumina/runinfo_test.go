package illumina

import (
	"strings"
	"testing"
)

const miseqRunInfo = `<?xml version="1.0"?>
<RunInfo xmlns:xsd="http://www.w3.org/2001/XMLSchema" Version="2">
  <Run Id="160503_M00528_0207_000000000-AR4UF" Number="207">
    <Flowcell>000000000-AR4UF</Flowcell>
    <Instrument>M00528</Instrument>
    <Date>160503</Date>
    <Reads>
      <Read NumCycles="300" Number="1" IsIndexedRead="N" />
      <Read NumCycles="8" Number="2" IsIndexedRead="Y" />
      <Read NumCycles="8" Number="3" IsIndexedRead="Y" />
      <Read NumCycles="300" Number="4" IsIndexedRead="N" />
    </Reads>
    <FlowcellLayout LaneCount="1" SurfaceCount="2" SwathCount="1" TileCount="19" />
  </Run>
</RunInfo>`

func TestParseRunInfo_MiSeq(t *testing.T) {
	info, err := parseRunInfo(strings.NewReader(miseqRunInfo))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.RunID != "160503_M00528_0207_000000000-AR4UF" {
		t.Errorf("expected full run id, got %q", info.RunID)
	}
	if info.RunNumber != 207 {
		t.Errorf("expected run number 207, got %d", info.RunNumber)
	}
	if info.FlowCell != "000000000-AR4UF" {
		t.Errorf("expected flowcell '000000000-AR4UF', got %q", info.FlowCell)
	}
	if info.Instrument != "M00528" {
		t.Errorf("expected instrument 'M00528', got %q", info.Instrument)
	}
	if info.Date != "2016-05-03" {
		t.Errorf("expected date '2016-05-03', got %q", info.Date)
	}
	if info.Topology.Lanes != 1 {
		t.Errorf("expected 1 lane, got %d", info.Topology.Lanes)
	}
	if got := len(info.Topology.TileNames()); got != 38 {
		t.Errorf("expected 38 tiles from 2x1x19 layout, got %d", got)
	}
}

func TestParseRunInfo_ReadOrderPreserved(t *testing.T) {
	info, err := parseRunInfo(strings.NewReader(miseqRunInfo))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []ReadDescription{
		{Number: 1, NumCycles: 300, IsIndex: false},
		{Number: 2, NumCycles: 8, IsIndex: true},
		{Number: 3, NumCycles: 8, IsIndex: true},
		{Number: 4, NumCycles: 300, IsIndex: false},
	}
	if !ReadsEqual(info.Reads, want) {
		t.Errorf("expected reads %v, got %v", want, info.Reads)
	}
}

func TestParseRunInfo_SkipsZeroCycleReads(t *testing.T) {
	content := `<RunInfo>
  <Run Id="200114_NS501234_0042_AHVK7YBGXC" Number="42">
    <Flowcell>HVK7YBGXC</Flowcell>
    <Instrument>NS501234</Instrument>
    <Date>200114</Date>
    <Reads>
      <Read NumCycles="75" Number="1" IsIndexedRead="N" />
      <Read NumCycles="0" Number="2" IsIndexedRead="Y" />
      <Read NumCycles="75" Number="3" IsIndexedRead="N" />
    </Reads>
    <FlowcellLayout LaneCount="4" SurfaceCount="2" SwathCount="3" TileCount="12" />
  </Run>
</RunInfo>`

	info, err := parseRunInfo(strings.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Reads) != 2 {
		t.Fatalf("expected zero-cycle read dropped, got %v", info.Reads)
	}
	if info.Reads[1].Number != 3 {
		t.Errorf("expected declared number kept, got %d", info.Reads[1].Number)
	}
}

func TestParseRunInfo_DateFormats(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"yymmdd", "160503", "2016-05-03"},
		{"us datetime", "1/6/2012 2:03:04 PM", "2012-01-06"},
		{"rfc3339", "2023-03-01T21:16:21Z", "2023-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeDate(tt.date)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseRunInfo_BadDate(t *testing.T) {
	if _, err := normalizeDate("someday"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestParseRunInfo_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no run element", `<RunInfo></RunInfo>`},
		{"no run id", `<RunInfo><Run Number="1"><Flowcell>F</Flowcell><Instrument>I</Instrument><Date>160503</Date><Reads><Read NumCycles="10" Number="1" IsIndexedRead="N"/></Reads><FlowcellLayout LaneCount="1"/></Run></RunInfo>`},
		{"no flowcell", `<RunInfo><Run Id="X" Number="1"><Instrument>I</Instrument><Date>160503</Date><Reads><Read NumCycles="10" Number="1" IsIndexedRead="N"/></Reads><FlowcellLayout LaneCount="1"/></Run></RunInfo>`},
		{"no reads", `<RunInfo><Run Id="X" Number="1"><Flowcell>F</Flowcell><Instrument>I</Instrument><Date>160503</Date><FlowcellLayout LaneCount="1"/></Run></RunInfo>`},
		{"no lane count", `<RunInfo><Run Id="X" Number="1"><Flowcell>F</Flowcell><Instrument>I</Instrument><Date>160503</Date><Reads><Read NumCycles="10" Number="1" IsIndexedRead="N"/></Reads></Run></RunInfo>`},
		{"malformed xml", `<RunInfo><Run`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseRunInfo(strings.NewReader(tt.content)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParseRunInfo_IgnoresUnknownElements(t *testing.T) {
	content := `<RunInfo>
  <Run Id="X" Number="9">
    <Flowcell>F</Flowcell>
    <Instrument>I</Instrument>
    <Date>160503</Date>
    <VendorExtension><Nested>ignored</Nested></VendorExtension>
    <Reads>
      <Read NumCycles="10" Number="1" IsIndexedRead="N" />
    </Reads>
    <FlowcellLayout LaneCount="2" SurfaceCount="1" SwathCount="1" TileCount="4" />
    <AlignToPhiX><Lane>1</Lane></AlignToPhiX>
  </Run>
</RunInfo>`

	info, err := parseRunInfo(strings.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.RunNumber != 9 || info.Topology.Lanes != 2 {
		t.Errorf("unexpected descriptor: %+v", info)
	}
}
