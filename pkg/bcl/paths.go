package bcl

import (
	"fmt"
	"os"
	"path/filepath"
)

// BaseCallsDir returns the base-call root of a run directory.
func BaseCallsDir(runDir string) string {
	return filepath.Join(runDir, "Data", "Intensities", "BaseCalls")
}

func laneDir(runDir string, lane int) string {
	return filepath.Join(BaseCallsDir(runDir), fmt.Sprintf("L%03d", lane))
}

// TilePath returns the per-tile container for one (lane, cycle, tile),
// preferring the uncompressed spelling over .bcl.gz.
func TilePath(runDir string, lane, cycle, tile int) (string, error) {
	dir := filepath.Join(laneDir(runDir, lane), fmt.Sprintf("C%d.1", cycle))
	plain := filepath.Join(dir, fmt.Sprintf("s_%d_%d.bcl", lane, tile))
	if _, err := os.Stat(plain); err == nil {
		return plain, nil
	}
	compressed := plain + ".gz"
	if _, err := os.Stat(compressed); err == nil {
		return compressed, nil
	}
	return "", &DecodeError{Path: plain, Err: fmt.Errorf("no container for lane %d tile %d cycle %d", lane, tile, cycle)}
}

// LanePath returns the lane-aggregated container for one cycle.
func LanePath(runDir string, lane, cycle int) string {
	return filepath.Join(laneDir(runDir, lane), fmt.Sprintf("%04d.bcl.bgzf", cycle))
}

// BCIPath returns the tile index of a lane.
func BCIPath(runDir string, lane int) string {
	return filepath.Join(laneDir(runDir, lane), fmt.Sprintf("s_%d.bci", lane))
}
