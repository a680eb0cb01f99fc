// Package adapters computes index/adapter histograms for a run by
// sampling a bounded number of reads per tile and decoding only the
// base-call bytes those samples need.
package adapters

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"
)

// DefaultSampleSize is the per-tile sample cap used when the
// configuration does not set one.
const DefaultSampleSize = 1000

// TileSeed derives the sampling seed for one tile. It is a pure function
// of the run identity, the tile coordinate, and the base seed, so a
// pinned base seed reproduces the same sample on every invocation.
func TileSeed(runID string, lane, tile int, base uint64) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/L%03d/T%d", runID, lane, tile)
	return h.Sum64() ^ base
}

// SampleOffsets selects min(sampleSize, clusterCount) distinct cluster
// offsets from [0, clusterCount), ascending, using a generator seeded by
// seed. The selection is a sparse partial shuffle, so memory is bounded
// by the sample size rather than the tile size.
func SampleOffsets(clusterCount, sampleSize int, seed uint64) []int {
	if clusterCount <= 0 {
		return nil
	}
	if sampleSize <= 0 || sampleSize >= clusterCount {
		offsets := make([]int, clusterCount)
		for i := range offsets {
			offsets[i] = i
		}
		return offsets
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	swapped := make(map[int]int, sampleSize)
	offsets := make([]int, sampleSize)
	for i := 0; i < sampleSize; i++ {
		j := i + rng.IntN(clusterCount-i)
		vj, ok := swapped[j]
		if !ok {
			vj = j
		}
		vi, ok := swapped[i]
		if !ok {
			vi = i
		}
		offsets[i] = vj
		swapped[j] = vi
	}
	sort.Ints(offsets)
	return offsets
}

// TopologyError reports a run whose lane/tile layout cannot be derived,
// either from the declared flow-cell geometry or from the lane tile
// index. It is fatal for the affected run directory.
type TopologyError struct {
	Path string
	Err  error
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *TopologyError) Unwrap() error { return e.Err }
