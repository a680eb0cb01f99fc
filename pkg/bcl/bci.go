package bcl

import (
	"encoding/binary"
	"fmt"
	"os"
)

// TileRecord is one entry of a lane's .bci tile index. Clusters of the
// lane-aggregated container are concatenated in index order, so the
// global offset of a tile is the sum of the counts before it.
type TileRecord struct {
	// Tile is the tile number.
	Tile int
	// Count is the number of clusters the tile contributes.
	Count int
}

// ReadBCI reads a lane tile index: consecutive little-endian
// (tile number, cluster count) uint32 pairs.
func ReadBCI(path string) ([]TileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if len(data)%8 != 0 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("index size %d is not a multiple of 8", len(data))}
	}

	records := make([]TileRecord, 0, len(data)/8)
	for i := 0; i < len(data); i += 8 {
		records = append(records, TileRecord{
			Tile:  int(binary.LittleEndian.Uint32(data[i:])),
			Count: int(binary.LittleEndian.Uint32(data[i+4:])),
		})
	}
	return records, nil
}
