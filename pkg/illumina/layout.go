package illumina

import (
	"fmt"
	"os"
	"path/filepath"
)

// FolderLayout identifies the on-disk structure of a run directory, which
// determines where base calls live and which parameter document to parse.
type FolderLayout string

const (
	// LayoutMiSeqDep is the legacy MiSeq/HiSeq 2000 layout with a
	// lowercase runParameters.xml and per-cycle tile files.
	LayoutMiSeqDep FolderLayout = "miseq-legacy"
	// LayoutMiSeq is the current MiSeq layout (RunParameters.xml,
	// per-cycle tile files).
	LayoutMiSeq FolderLayout = "miseq"
	// LayoutMiniSeq covers MiniSeq and NextSeq 500/550 runs with
	// lane-aggregated base-call files.
	LayoutMiniSeq FolderLayout = "miniseq"
	// LayoutHiSeqX is the HiSeq X layout.
	LayoutHiSeqX FolderLayout = "hiseq-x"
	// LayoutNovaSeq is the NovaSeq layout with concatenated cbcl files.
	LayoutNovaSeq FolderLayout = "novaseq"
	// LayoutNovaSeqXplus is the NovaSeq X Plus layout.
	LayoutNovaSeqXplus FolderLayout = "novaseq-xplus"
	// LayoutNextSeq2000 is the NextSeq 1000/2000 layout.
	LayoutNextSeq2000 FolderLayout = "nextseq-2000"
)

// SupportsAdapterSampling reports whether base-call containers of this
// layout can be sampled for index histograms. The cbcl-based layouts are
// synchronized metadata-only.
func (l FolderLayout) SupportsAdapterSampling() bool {
	switch l {
	case LayoutMiSeqDep, LayoutMiSeq, LayoutMiniSeq:
		return true
	default:
		return false
	}
}

// parameterFile returns the parameter document filename for the layout.
func (l FolderLayout) parameterFile() string {
	if l == LayoutMiSeqDep {
		return "runParameters.xml"
	}
	return "RunParameters.xml"
}

// DetectLayout inspects marker files below path and returns the folder
// layout. The cbcl-based layouts are probed first since they share the
// per-cycle directory markers with MiSeq.
func DetectLayout(path string) (FolderLayout, error) {
	baseCalls := filepath.Join(path, "Data", "Intensities", "BaseCalls")
	cycleDir := filepath.Join(baseCalls, "L001", "C1.1")

	hasParams := exists(filepath.Join(path, "RunParameters.xml"))
	hasCBCL := exists(filepath.Join(cycleDir, "L001_1.cbcl")) ||
		exists(filepath.Join(cycleDir, "L001_2.cbcl"))

	switch {
	case hasParams && hasCBCL:
		// Linux-based instruments ship an analytics log directory; the
		// X Plus additionally writes an RTA exit marker.
		if exists(filepath.Join(path, "InstrumentAnalyticsLogs")) {
			if exists(filepath.Join(path, "RTAExited.txt")) {
				return LayoutNovaSeqXplus, nil
			}
			return LayoutNextSeq2000, nil
		}
		return LayoutNovaSeq, nil
	case exists(cycleDir) && exists(filepath.Join(path, "runParameters.xml")):
		return LayoutMiSeqDep, nil
	case exists(cycleDir) && hasParams:
		return LayoutMiSeq, nil
	case exists(filepath.Join(baseCalls, "L001")) && hasParams:
		return LayoutMiniSeq, nil
	case exists(filepath.Join(path, "Data", "Intensities", "s.locs")) && hasParams:
		return LayoutHiSeqX, nil
	default:
		return "", fmt.Errorf("could not determine folder layout of %s", path)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
