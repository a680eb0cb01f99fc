package adapters

// Histogram is the aggregated index-sequence distribution for one index
// read position. SampleCount is the number of successfully decoded
// samples; the raw per-sequence counts sum to it exactly. Counts only
// exposes sequences whose observed fraction reached the configured
// minimum, but dropped sequences still contribute to SampleCount.
type Histogram struct {
	// IndexRead is the 1-based ordinal among the index reads of the run.
	IndexRead int
	// StartCycle is the 1-based first cycle of the index read.
	StartCycle int
	// NumCycles is the index read length.
	NumCycles int
	// SampleCount is the number of samples decoded at this position.
	SampleCount int
	// Counts maps index sequence to occurrences, threshold-filtered.
	Counts map[string]int
}

// mergeCounts adds src into dst. Addition of counts is commutative and
// associative, so partial histograms can be merged in any order.
func mergeCounts(dst, src map[string]int) {
	for seq, n := range src {
		dst[seq] += n
	}
}

// filterCounts keeps the sequences whose fraction of total meets
// minFraction. Filtering runs once, after all partials are merged;
// the denominator stays the unfiltered total.
func filterCounts(raw map[string]int, total int, minFraction float64) map[string]int {
	out := make(map[string]int, len(raw))
	if total <= 0 {
		return out
	}
	for seq, n := range raw {
		if float64(n)/float64(total) >= minFraction {
			out[seq] = n
		}
	}
	return out
}
