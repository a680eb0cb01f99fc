// Package illumina parses Illumina sequencer run directories: folder layout
// detection from marker files, run metadata from RunInfo.xml and the
// instrument-specific RunParameters.xml variants, and sequencing status
// derivation. Parsing is read-only and tolerant of vendor extensions:
// unknown elements are skipped rather than rejected.
package illumina

import (
	"fmt"
	"os"
	"path/filepath"
)

// Descriptor is the merged, immutable view of a run directory's metadata.
// It is built once per ingestion pass by ReadFolder and shared read-only
// afterwards.
type Descriptor struct {
	// Path is the run directory the descriptor was read from.
	Path string
	// Layout is the detected on-disk folder layout.
	Layout FolderLayout
	// RunID is the long vendor run identifier (e.g. "160503_M00528_0207_000000000-AR4UF").
	RunID string
	// RunNumber is the per-instrument run counter.
	RunNumber int
	// FlowCell is the flow-cell vendor identifier.
	FlowCell string
	// Instrument is the sequencing machine identifier.
	Instrument string
	// RunDate is the normalized run date (YYYY-MM-DD).
	RunDate string
	// Slot is the flow-cell position in the instrument ("A" when the
	// instrument has a single slot).
	Slot string
	// Label is the operator-chosen experiment name, may be empty.
	Label string
	// RTAVersion is the real-time analysis software version string.
	RTAVersion string
	// Reads is the read structure in declared order, as currently written
	// by the instrument.
	Reads []ReadDescription
	// PlannedReads is the read structure the run was configured with.
	// Empty when the parameter document does not declare one.
	PlannedReads []ReadDescription
	// Topology describes the lane/tile grid of the flow cell.
	Topology Topology
	// Completed reports whether the instrument has written its
	// end-of-run marker (RTAComplete.txt).
	Completed bool
}

// Topology is the lane/tile grid declared by RunInfo.xml.
type Topology struct {
	Lanes    int
	Surfaces int
	Swaths   int
	Tiles    int
}

// TileNames enumerates the four-digit tile names of one lane in
// surface-major order (surface*1000 + swath*100 + tile).
func (t Topology) TileNames() []int {
	if t.Surfaces <= 0 || t.Swaths <= 0 || t.Tiles <= 0 {
		return nil
	}
	names := make([]int, 0, t.Surfaces*t.Swaths*t.Tiles)
	for s := 1; s <= t.Surfaces; s++ {
		for w := 1; w <= t.Swaths; w++ {
			for n := 1; n <= t.Tiles; n++ {
				names = append(names, s*1000+w*100+n)
			}
		}
	}
	return names
}

// RTAMajorVersion returns the leading component of the RTA version as an
// integer, or 0 if it cannot be determined.
func (d *Descriptor) RTAMajorVersion() int {
	var major int
	for _, r := range d.RTAVersion {
		if r < '0' || r > '9' {
			break
		}
		major = major*10 + int(r-'0')
	}
	return major
}

// ReadFolder reads and merges the metadata of the run directory at path.
// It detects the folder layout, parses RunInfo.xml and the layout's
// parameter document, and records whether the end-of-run marker exists.
// All failures are reported as *MetadataError.
func ReadFolder(path string) (*Descriptor, error) {
	if _, err := os.Stat(filepath.Join(path, "RunInfo.xml")); err != nil {
		return nil, &MetadataError{Path: path, Err: fmt.Errorf("no RunInfo.xml: %w", err)}
	}

	layout, err := DetectLayout(path)
	if err != nil {
		return nil, &MetadataError{Path: path, Err: err}
	}

	info, err := parseRunInfoFile(filepath.Join(path, "RunInfo.xml"))
	if err != nil {
		return nil, &MetadataError{Path: path, Err: err}
	}

	params, err := parseRunParametersFile(path, layout)
	if err != nil {
		return nil, &MetadataError{Path: path, Err: err}
	}

	completed := false
	if _, err := os.Stat(filepath.Join(path, "RTAComplete.txt")); err == nil {
		completed = true
	}

	return &Descriptor{
		Path:         path,
		Layout:       layout,
		RunID:        info.RunID,
		RunNumber:    info.RunNumber,
		FlowCell:     info.FlowCell,
		Instrument:   info.Instrument,
		RunDate:      info.Date,
		Slot:         params.Slot,
		Label:        params.ExperimentName,
		RTAVersion:   params.RTAVersion,
		Reads:        info.Reads,
		PlannedReads: params.PlannedReads,
		Topology:     info.Topology,
		Completed:    completed,
	}, nil
}

// MetadataError reports an unreadable or malformed run configuration.
// It is fatal for the affected run directory.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }
