package illumina

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// runParameters is the parsed content of the layout's parameter document.
// Fields the instrument family does not declare stay at their zero value
// (Slot defaults to "A").
type runParameters struct {
	PlannedReads   []ReadDescription
	RTAVersion     string
	RunNumber      int
	Slot           string
	ExperimentName string
}

func parseRunParametersFile(dir string, layout FolderLayout) (*runParameters, error) {
	name := layout.parameterFile()
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	params, err := parseRunParameters(f, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return params, nil
}

func parseRunParameters(r io.Reader, layout FolderLayout) (*runParameters, error) {
	scan, err := scanDocument(r)
	if err != nil {
		return nil, err
	}
	switch layout {
	case LayoutMiSeqDep, LayoutMiSeq, LayoutHiSeqX:
		return miseqParams(scan)
	case LayoutMiniSeq, LayoutNovaSeq:
		return miniseqParams(scan)
	case LayoutNovaSeqXplus:
		return novaseqXplusParams(scan)
	case LayoutNextSeq2000:
		return nextseq2000Params(scan)
	default:
		return nil, fmt.Errorf("no parameter parser for layout %s", layout)
	}
}

// miseqParams reads the MiSeq/HiSeq document family: the planned reads
// are Read/RunInfoRead elements like in RunInfo.xml, the run counter is
// called ScanNumber, and the slot FCPosition.
func miseqParams(scan *docScan) (*runParameters, error) {
	reads, err := readsFromNumberedElements(scan.reads)
	if err != nil {
		return nil, err
	}
	return &runParameters{
		PlannedReads:   reads,
		RTAVersion:     rtaVersionOf(scan),
		RunNumber:      scan.intOf("ScanNumber"),
		Slot:           scan.textOr("FCPosition", "A"),
		ExperimentName: scan.textOf("ExperimentName"),
	}, nil
}

// miniseqParams reads the MiniSeq/NextSeq 500/NovaSeq document family:
// planned cycles are scalar elements in fixed R1, I1, I2, R2 order.
func miniseqParams(scan *docScan) (*runParameters, error) {
	var reads []ReadDescription
	appendPlanned(&reads, scan.intOf("PlannedRead1Cycles"), false)
	appendPlanned(&reads, scan.intOf("PlannedIndex1ReadCycles"), true)
	appendPlanned(&reads, scan.intOf("PlannedIndex2ReadCycles"), true)
	appendPlanned(&reads, scan.intOf("PlannedRead2Cycles"), false)

	return &runParameters{
		PlannedReads:   reads,
		RTAVersion:     rtaVersionOf(scan),
		RunNumber:      scan.intOf("RunNumber"),
		Slot:           scan.textOr("Side", "A"),
		ExperimentName: scan.textOf("ExperimentName"),
	}, nil
}

// novaseqXplusParams reads the NovaSeq X Plus document: planned reads are
// Read elements with Cycles/ReadName attributes, and the instrument
// reports a system suite version instead of an RTA version.
func novaseqXplusParams(scan *docScan) (*runParameters, error) {
	var reads []ReadDescription
	number := 1
	for _, attrs := range scan.reads {
		numCycles, err := attrInt(attrs, "Cycles")
		if err != nil {
			return nil, fmt.Errorf("bad planned read: %w", err)
		}
		if numCycles == 0 {
			continue
		}
		reads = append(reads, ReadDescription{
			Number:    number,
			NumCycles: numCycles,
			IsIndex:   strings.HasPrefix(attrs["ReadName"], "Index"),
		})
		number++
	}

	return &runParameters{
		PlannedReads:   reads,
		RTAVersion:     "3." + scan.textOf("SystemSuiteVersion"),
		RunNumber:      scan.intOf("RunNumber"),
		Slot:           scan.textOr("Side", "A"),
		ExperimentName: scan.textOf("ExperimentName"),
	}, nil
}

// nextseq2000Params reads the NextSeq 1000/2000 document: planned cycles
// are Read1/Index1/Index2/Read2 scalars and the run counter is called
// RunCounter. RTA 4.x identifies itself as 3 towards the tracking
// service, which predates version 4.
func nextseq2000Params(scan *docScan) (*runParameters, error) {
	var reads []ReadDescription
	appendPlanned(&reads, scan.intOf("Read1"), false)
	appendPlanned(&reads, scan.intOf("Index1"), true)
	appendPlanned(&reads, scan.intOf("Index2"), true)
	appendPlanned(&reads, scan.intOf("Read2"), false)
	if len(reads) == 0 {
		return nil, fmt.Errorf("no planned read cycles declared")
	}

	rta := rtaVersionOf(scan)
	if strings.HasPrefix(rta, "4") {
		rta = "3"
	}

	return &runParameters{
		PlannedReads:   reads,
		RTAVersion:     rta,
		RunNumber:      scan.intOf("RunCounter"),
		Slot:           scan.textOr("Side", "A"),
		ExperimentName: scan.textOf("ExperimentName"),
	}, nil
}

func appendPlanned(reads *[]ReadDescription, numCycles int, isIndex bool) {
	if numCycles == 0 {
		return
	}
	*reads = append(*reads, ReadDescription{
		Number:    len(*reads) + 1,
		NumCycles: numCycles,
		IsIndex:   isIndex,
	})
}

// rtaVersionOf prefers the RTA 3 era spelling RtaVersion (value prefixed
// with "v") over the older RTAVersion element.
func rtaVersionOf(scan *docScan) string {
	if v := scan.textOf("RtaVersion"); v != "" {
		return strings.TrimPrefix(v, "v")
	}
	return scan.textOf("RTAVersion")
}
