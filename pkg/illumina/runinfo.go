package illumina

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// runInfo is the parsed content of RunInfo.xml.
type runInfo struct {
	RunID      string
	RunNumber  int
	FlowCell   string
	Instrument string
	Date       string
	Reads      []ReadDescription
	Topology   Topology
}

func parseRunInfoFile(path string) (*runInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open RunInfo.xml: %w", err)
	}
	defer f.Close()

	info, err := parseRunInfo(f)
	if err != nil {
		return nil, fmt.Errorf("RunInfo.xml: %w", err)
	}
	return info, nil
}

func parseRunInfo(r io.Reader) (*runInfo, error) {
	scan, err := scanDocument(r)
	if err != nil {
		return nil, err
	}
	if scan.runAttrs == nil {
		return nil, fmt.Errorf("missing Run element")
	}

	runID := scan.runAttrs["Id"]
	if runID == "" {
		return nil, fmt.Errorf("missing Run Id attribute")
	}
	runNumber, _ := strconv.Atoi(scan.runAttrs["Number"])

	flowCell := scan.textOf("Flowcell")
	if flowCell == "" {
		return nil, fmt.Errorf("missing Flowcell element")
	}
	instrument := scan.textOf("Instrument")
	if instrument == "" {
		return nil, fmt.Errorf("missing Instrument element")
	}

	date, err := normalizeDate(scan.textOf("Date"))
	if err != nil {
		return nil, err
	}

	reads, err := readsFromNumberedElements(scan.reads)
	if err != nil {
		return nil, err
	}
	if len(reads) == 0 {
		return nil, fmt.Errorf("no reads declared")
	}

	topo := Topology{
		Lanes:    layoutCount(scan, "LaneCount"),
		Surfaces: layoutCount(scan, "SurfaceCount"),
		Swaths:   layoutCount(scan, "SwathCount"),
		Tiles:    layoutCount(scan, "TileCount"),
	}
	if topo.Lanes <= 0 {
		return nil, fmt.Errorf("missing FlowcellLayout LaneCount")
	}

	return &runInfo{
		RunID:      runID,
		RunNumber:  runNumber,
		FlowCell:   flowCell,
		Instrument: instrument,
		Date:       date,
		Reads:      reads,
		Topology:   topo,
	}, nil
}

// readsFromNumberedElements builds the read structure from Read or
// RunInfoRead elements carrying Number/NumCycles/IsIndexedRead
// attributes. Declared order is preserved; zero-cycle entries are
// dropped.
func readsFromNumberedElements(elems []map[string]string) ([]ReadDescription, error) {
	var reads []ReadDescription
	for _, attrs := range elems {
		numCycles, err := attrInt(attrs, "NumCycles")
		if err != nil {
			return nil, fmt.Errorf("bad read declaration: %w", err)
		}
		if numCycles == 0 {
			continue
		}
		number, err := attrInt(attrs, "Number")
		if err != nil {
			return nil, fmt.Errorf("bad read declaration: %w", err)
		}
		reads = append(reads, ReadDescription{
			Number:    number,
			NumCycles: numCycles,
			IsIndex:   attrs["IsIndexedRead"] == "Y",
		})
	}
	return reads, nil
}

func layoutCount(scan *docScan, name string) int {
	if scan.layoutAttrs == nil {
		return 0
	}
	n, _ := strconv.Atoi(scan.layoutAttrs[name])
	return n
}

// runDateFormats are the date spellings seen across instrument
// generations: bare yymmdd, the US datetime of Windows-based instruments,
// and RFC 3339 on the Linux-based ones.
var runDateFormats = []string{
	"060102",
	"1/2/2006 3:04:05 PM",
	"2006-01-02T15:04:05Z",
}

func normalizeDate(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("missing Date element")
	}
	for _, layout := range runDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", value)
}
