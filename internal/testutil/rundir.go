package testutil

// rundir.go - Builders for synthetic Illumina run directories.

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// RunRead is one segment of the generated read structure.
type RunRead struct {
	NumCycles int
	IsIndex   bool
}

// RunConfig describes the synthetic run directory to generate. The zero
// value is not usable; start from MiSeqRunConfig.
type RunConfig struct {
	RunID          string
	RunNumber      int
	FlowCell       string
	Instrument     string
	Date           string // yymmdd
	ExperimentName string
	RTAVersion     string
	Reads          []RunRead
	Lanes          int
	Surfaces       int
	Swaths         int
	Tiles          int
}

// MiSeqRunConfig returns a small single-lane MiSeq run with a 2T4B read
// structure and two tiles (1101, 1102).
func MiSeqRunConfig() RunConfig {
	return RunConfig{
		RunID:          "160503_M00528_0207_000000000-AR4UF",
		RunNumber:      207,
		FlowCell:       "000000000-AR4UF",
		Instrument:     "M00528",
		Date:           "160503",
		ExperimentName: "Validation run 12",
		RTAVersion:     "1.18.54",
		Reads: []RunRead{
			{NumCycles: 2},
			{NumCycles: 4, IsIndex: true},
		},
		Lanes:    1,
		Surfaces: 1,
		Swaths:   1,
		Tiles:    2,
	}
}

// RunDir is a synthetic MiSeq-layout run directory rooted in a test
// temp dir.
type RunDir struct {
	t   testing.TB
	cfg RunConfig
	dir string
}

// NewMiSeqRunDir writes the metadata documents of cfg into a fresh temp
// directory. Base calls and the end-of-run marker are added through the
// builder methods.
func NewMiSeqRunDir(t testing.TB, cfg RunConfig) *RunDir {
	t.Helper()
	r := &RunDir{t: t, cfg: cfg, dir: t.TempDir()}
	r.write("RunInfo.xml", r.runInfoXML())
	r.write("RunParameters.xml", r.runParametersXML())

	// The layout marker: MiSeq runs carry per-cycle directories.
	cycleDir := filepath.Join(r.dir, "Data", "Intensities", "BaseCalls", "L001", "C1.1")
	if err := os.MkdirAll(cycleDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return r
}

// Path returns the run directory root.
func (r *RunDir) Path() string {
	return r.dir
}

// Complete writes the end-of-run marker.
func (r *RunDir) Complete() *RunDir {
	r.write("RTAComplete.txt", "RTA completed")
	return r
}

// WriteTile writes one tile's per-cycle base-call containers. Each
// entry of seqs is the base sequence of one cluster, covering every
// declared cycle starting at cycle 1.
func (r *RunDir) WriteTile(lane, tile int, seqs []string) *RunDir {
	r.t.Helper()
	for c := 0; c < len(seqs[0]); c++ {
		col := make([]byte, len(seqs))
		for i, s := range seqs {
			col[i] = s[c]
		}
		dir := filepath.Join(r.dir, "Data", "Intensities", "BaseCalls",
			fmt.Sprintf("L%03d", lane), fmt.Sprintf("C%d.1", c+1))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.t.Fatal(err)
		}
		path := filepath.Join(dir, fmt.Sprintf("s_%d_%d.bcl", lane, tile))
		if err := os.WriteFile(path, EncodeBCL(col), 0o644); err != nil {
			r.t.Fatal(err)
		}
	}
	return r
}

// WriteCorruptTile writes containers for every declared cycle whose
// headers claim far more clusters than the bodies hold.
func (r *RunDir) WriteCorruptTile(lane, tile int) *RunDir {
	r.t.Helper()
	total := 0
	for _, read := range r.cfg.Reads {
		total += read.NumCycles
	}
	forged := make([]byte, 6)
	binary.LittleEndian.PutUint32(forged, 5000)
	for c := 1; c <= total; c++ {
		dir := filepath.Join(r.dir, "Data", "Intensities", "BaseCalls",
			fmt.Sprintf("L%03d", lane), fmt.Sprintf("C%d.1", c))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.t.Fatal(err)
		}
		path := filepath.Join(dir, fmt.Sprintf("s_%d_%d.bcl", lane, tile))
		if err := os.WriteFile(path, forged, 0o644); err != nil {
			r.t.Fatal(err)
		}
	}
	return r
}

// EncodeBCL packs one call byte per base with a mid-range quality, so
// no call collides with the zero no-call byte, and prepends the cluster
// count header.
func EncodeBCL(bases []byte) []byte {
	codes := map[byte]byte{'A': 0, 'C': 1, 'G': 2, 'T': 3}
	buf := make([]byte, 4+len(bases))
	binary.LittleEndian.PutUint32(buf, uint32(len(bases)))
	for i, b := range bases {
		buf[4+i] = codes[b] | 30<<2
	}
	return buf
}

func (r *RunDir) write(name, content string) {
	r.t.Helper()
	if err := os.WriteFile(filepath.Join(r.dir, name), []byte(content), 0o644); err != nil {
		r.t.Fatal(err)
	}
}

func (r *RunDir) readElements(elem string) string {
	var b strings.Builder
	for i, read := range r.cfg.Reads {
		indexed := "N"
		if read.IsIndex {
			indexed = "Y"
		}
		fmt.Fprintf(&b, "      <%s Number=\"%d\" NumCycles=\"%d\" IsIndexedRead=\"%s\" />\n",
			elem, i+1, read.NumCycles, indexed)
	}
	return b.String()
}

func (r *RunDir) runInfoXML() string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<RunInfo Version="2">
  <Run Id=%q Number="%d">
    <Flowcell>%s</Flowcell>
    <Instrument>%s</Instrument>
    <Date>%s</Date>
    <Reads>
%s    </Reads>
    <FlowcellLayout LaneCount="%d" SurfaceCount="%d" SwathCount="%d" TileCount="%d" />
  </Run>
</RunInfo>
`, r.cfg.RunID, r.cfg.RunNumber, r.cfg.FlowCell, r.cfg.Instrument, r.cfg.Date,
		r.readElements("Read"), r.cfg.Lanes, r.cfg.Surfaces, r.cfg.Swaths, r.cfg.Tiles)
}

func (r *RunDir) runParametersXML() string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<RunParameters>
  <RTAVersion>%s</RTAVersion>
  <ScanNumber>%d</ScanNumber>
  <FCPosition>A</FCPosition>
  <ExperimentName>%s</ExperimentName>
  <Reads>
%s  </Reads>
</RunParameters>
`, r.cfg.RTAVersion, r.cfg.RunNumber, r.cfg.ExperimentName, r.readElements("RunInfoRead"))
}
