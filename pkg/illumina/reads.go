package illumina

import (
	"fmt"
	"strings"
)

// ReadDescription is one segment of the read structure.
type ReadDescription struct {
	// Number is the 1-based position of the read in the declared order.
	Number int
	// NumCycles is the segment length in cycles.
	NumCycles int
	// IsIndex marks barcode reads as opposed to template reads.
	IsIndex bool
}

// DescribeReads renders a read structure in the compact form used by the
// tracking service, e.g. "100T8B8B100T" for a paired-end dual-index run
// (T = template, B = barcode).
func DescribeReads(reads []ReadDescription) string {
	var b strings.Builder
	for _, r := range reads {
		kind := "T"
		if r.IsIndex {
			kind = "B"
		}
		fmt.Fprintf(&b, "%d%s", r.NumCycles, kind)
	}
	return b.String()
}

// ReadsEqual reports whether two read structures are identical segment by
// segment, in order.
func ReadsEqual(a, b []ReadDescription) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IndexReads returns the index segments of reads along with the 1-based
// cycle at which each begins. Cycle offsets accumulate over the declared
// order, so a "100T8B8B100T" structure yields index reads starting at
// cycles 101 and 109, numbered 1 and 2.
func IndexReads(reads []ReadDescription) []IndexRead {
	var out []IndexRead
	cycle := 1
	for _, r := range reads {
		if r.IsIndex {
			out = append(out, IndexRead{
				Number:     len(out) + 1,
				StartCycle: cycle,
				NumCycles:  r.NumCycles,
			})
		}
		cycle += r.NumCycles
	}
	return out
}

// IndexRead locates one barcode read within the cycle space of a run.
type IndexRead struct {
	// Number is the 1-based ordinal among the index reads only; the
	// tracking service keys histograms by it.
	Number int
	// StartCycle is the 1-based first cycle of the read.
	StartCycle int
	// NumCycles is the read length.
	NumCycles int
}
