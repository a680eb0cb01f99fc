// analyzer.go - Sampling-based histogram computation over base-call containers.

package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seqstack-labs/flowsync/pkg/bcl"
	"github.com/seqstack-labs/flowsync/pkg/illumina"
)

// Config configures an Analyzer.
type Config struct {
	// Logger receives progress and warning logs. Defaults to a discard
	// logger when nil.
	Logger *slog.Logger
	// SampleSize caps the sampled reads per tile. 0 means
	// DefaultSampleSize.
	SampleSize int
	// MinFraction is the smallest observed fraction an index sequence
	// needs to appear in a histogram (0.0-1.0).
	MinFraction float64
	// Seed is the base sampling seed. Pinning it reproduces the same
	// samples across invocations.
	Seed uint64
	// Threads bounds the parallel container decode. 0 runs sequentially.
	Threads int
}

// Analyzer samples tiles of a run and aggregates per-position index
// histograms. The run descriptor and the selected samples are read-only
// once built; workers produce independent partial counts that a single
// merge step combines, so tile processing order never affects the
// result.
type Analyzer struct {
	logger *slog.Logger
	cfg    Config
}

// New creates an Analyzer, applying defaults for the logger and sample
// size.
func New(cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	return &Analyzer{logger: logger, cfg: cfg}
}

// Result is the outcome of one analysis pass.
type Result struct {
	// Histograms holds one entry per computed index read position,
	// ascending by position.
	Histograms []Histogram
	// TilesSampled is the number of tiles samples were drawn from.
	TilesSampled int
	// SkippedSamples counts selected samples lost to decode failures.
	SkippedSamples int
	// Warnings lists non-fatal decode problems, one per affected
	// tile/position.
	Warnings []string
	// Duration is the wall time of the pass.
	Duration time.Duration
}

// HasWarnings reports whether any samples were skipped or tiles dropped.
func (r *Result) HasWarnings() bool { return len(r.Warnings) > 0 }

// Summary returns a human-readable one-liner.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d positions | %d tiles | %d samples skipped | %s",
		len(r.Histograms), r.TilesSampled, r.SkippedSamples,
		r.Duration.Round(time.Millisecond))
}

// sampleUnit is one decode work unit: the ascending container offsets of
// one tile (per-tile layouts) or one whole lane (lane-aggregated
// layouts), plus the container path for any cycle.
type sampleUnit struct {
	label   string
	tiles   int
	offsets []int
	path    func(cycle int) (string, error)
}

// partial is one worker's contribution: the counts of one sample unit at
// one index read position.
type partial struct {
	position int
	counts   map[string]int
	decoded  int
	skipped  int
	warning  string
}

// Analyze computes histograms for the index read positions listed in
// positions (1-based ordinals among the index reads; nil means all of
// them). A run without index reads yields an empty result. Decode
// failures are absorbed per unit and surfaced as warnings; only a
// layout whose tile geometry cannot be derived fails the pass.
func (a *Analyzer) Analyze(ctx context.Context, desc *illumina.Descriptor, positions []int) (*Result, error) {
	start := time.Now()
	result := &Result{}

	// 1. Locate the index reads and keep the requested positions.
	indexReads := wantedIndexReads(desc.Reads, positions)
	if len(indexReads) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	// 2. Enumerate tiles and select each tile's sample.
	units, err := a.buildUnits(desc, result)
	if err != nil {
		return nil, err
	}
	for i := range units {
		result.TilesSampled += units[i].tiles
	}

	a.logger.Debug("sampling run",
		"run", desc.RunID,
		"units", len(units),
		"positions", len(indexReads),
		"sample_size", a.cfg.SampleSize)

	// 3. Decode every (unit, position) pair across the worker pool.
	//    Each task owns one slot of the partials slice, so no locking
	//    is needed.
	type decodeTask struct {
		unit *sampleUnit
		read illumina.IndexRead
	}
	var tasks []decodeTask
	for i := range units {
		for _, ir := range indexReads {
			tasks = append(tasks, decodeTask{unit: &units[i], read: ir})
		}
	}

	partials := make([]partial, len(tasks))
	limit := a.cfg.Threads
	if limit <= 0 {
		limit = 1
	}
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, tk := range tasks {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			partials[i] = a.decodeUnit(tk.unit, tk.read)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 4. Merge the partial counts per position.
	raw := make(map[int]map[string]int, len(indexReads))
	decoded := make(map[int]int, len(indexReads))
	for _, p := range partials {
		if p.warning != "" {
			result.Warnings = append(result.Warnings, p.warning)
			result.SkippedSamples += p.skipped
			continue
		}
		m, ok := raw[p.position]
		if !ok {
			m = make(map[string]int)
			raw[p.position] = m
		}
		mergeCounts(m, p.counts)
		decoded[p.position] += p.decoded
	}

	// 5. Threshold-filter once, after aggregation is complete. A
	//    position with zero decoded samples keeps an empty histogram.
	for _, ir := range indexReads {
		total := decoded[ir.Number]
		result.Histograms = append(result.Histograms, Histogram{
			IndexRead:   ir.Number,
			StartCycle:  ir.StartCycle,
			NumCycles:   ir.NumCycles,
			SampleCount: total,
			Counts:      filterCounts(raw[ir.Number], total, a.cfg.MinFraction),
		})
	}

	result.Duration = time.Since(start)
	a.logger.Debug("analysis complete", "run", desc.RunID, "summary", result.Summary())
	return result, nil
}

// wantedIndexReads returns the run's index reads, filtered to the
// requested 1-based positions (nil keeps all), in declared order.
func wantedIndexReads(reads []illumina.ReadDescription, positions []int) []illumina.IndexRead {
	all := illumina.IndexReads(reads)
	if positions == nil {
		return all
	}
	want := make(map[int]bool, len(positions))
	for _, p := range positions {
		want[p] = true
	}
	var out []illumina.IndexRead
	for _, ir := range all {
		if want[ir.Number] {
			out = append(out, ir)
		}
	}
	return out
}

// buildUnits enumerates the run's sample units. Per-tile layouts yield
// one unit per tile with tile-local offsets; lane-aggregated layouts
// yield one unit per lane whose offsets are global to the lane
// container. Unreadable tiles are dropped with a warning.
func (a *Analyzer) buildUnits(desc *illumina.Descriptor, result *Result) ([]sampleUnit, error) {
	switch {
	case desc.Layout == illumina.LayoutMiniSeq:
		return a.laneUnits(desc)
	case desc.Layout.SupportsAdapterSampling():
		return a.tileUnits(desc, result)
	default:
		return nil, fmt.Errorf("layout %s does not support adapter sampling", desc.Layout)
	}
}

func (a *Analyzer) tileUnits(desc *illumina.Descriptor, result *Result) ([]sampleUnit, error) {
	tiles := desc.Topology.TileNames()
	if desc.Topology.Lanes <= 0 || len(tiles) == 0 {
		return nil, &TopologyError{
			Path: desc.Path,
			Err:  fmt.Errorf("flow-cell geometry %+v does not enumerate tiles", desc.Topology),
		}
	}

	runDir := desc.Path
	var units []sampleUnit
	for lane := 1; lane <= desc.Topology.Lanes; lane++ {
		for _, tile := range tiles {
			path, err := bcl.TilePath(runDir, lane, 1, tile)
			var count int
			if err == nil {
				count, err = bcl.ClusterCount(path)
			}
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("lane %d tile %d: %v", lane, tile, err))
				continue
			}
			units = append(units, sampleUnit{
				label:   fmt.Sprintf("lane %d tile %d", lane, tile),
				tiles:   1,
				offsets: SampleOffsets(count, a.cfg.SampleSize, TileSeed(desc.RunID, lane, tile, a.cfg.Seed)),
				path: func(cycle int) (string, error) {
					return bcl.TilePath(runDir, lane, cycle, tile)
				},
			})
		}
	}
	return units, nil
}

func (a *Analyzer) laneUnits(desc *illumina.Descriptor) ([]sampleUnit, error) {
	if desc.Topology.Lanes <= 0 {
		return nil, &TopologyError{Path: desc.Path, Err: fmt.Errorf("no lanes declared")}
	}

	runDir := desc.Path
	var units []sampleUnit
	for lane := 1; lane <= desc.Topology.Lanes; lane++ {
		records, err := bcl.ReadBCI(bcl.BCIPath(runDir, lane))
		if err != nil {
			return nil, &TopologyError{
				Path: desc.Path,
				Err:  fmt.Errorf("failed to read tile index of lane %d: %w", lane, err),
			}
		}

		var offsets []int
		base := 0
		tiles := 0
		for _, rec := range records {
			for _, off := range SampleOffsets(rec.Count, a.cfg.SampleSize, TileSeed(desc.RunID, lane, rec.Tile, a.cfg.Seed)) {
				offsets = append(offsets, base+off)
			}
			base += rec.Count
			if rec.Count > 0 {
				tiles++
			}
		}
		units = append(units, sampleUnit{
			label:   fmt.Sprintf("lane %d", lane),
			tiles:   tiles,
			offsets: offsets,
			path: func(cycle int) (string, error) {
				return bcl.LanePath(runDir, lane, cycle), nil
			},
		})
	}
	return units, nil
}

// decodeUnit reads the unit's sampled clusters across the cycles of one
// index read and counts the assembled sequences. Any decode failure
// drops the whole unit at this position: its samples are reported as
// skipped and excluded from both numerator and denominator.
func (a *Analyzer) decodeUnit(u *sampleUnit, read illumina.IndexRead) partial {
	p := partial{position: read.Number, counts: make(map[string]int)}
	if len(u.offsets) == 0 {
		return p
	}

	columns := make([][]byte, read.NumCycles)
	for c := 0; c < read.NumCycles; c++ {
		path, err := u.path(read.StartCycle + c)
		if err == nil {
			columns[c], err = bcl.BasesAt(path, u.offsets)
		}
		if err != nil {
			a.logger.Debug("skipping samples",
				"unit", u.label, "index_read", read.Number, "error", err)
			return partial{
				position: read.Number,
				skipped:  len(u.offsets),
				warning:  fmt.Sprintf("%s index read %d: %v", u.label, read.Number, err),
			}
		}
	}

	seq := make([]byte, read.NumCycles)
	for i := range u.offsets {
		for c := range columns {
			seq[c] = columns[c][i]
		}
		p.counts[string(seq)]++
	}
	p.decoded = len(u.offsets)
	return p
}
