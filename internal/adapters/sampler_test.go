package adapters

import (
	"reflect"
	"testing"
)

func checkOffsets(t *testing.T, offsets []int, clusterCount int) {
	t.Helper()
	seen := make(map[int]bool, len(offsets))
	prev := -1
	for _, off := range offsets {
		if off < 0 || off >= clusterCount {
			t.Errorf("offset %d outside [0, %d)", off, clusterCount)
		}
		if off <= prev {
			t.Errorf("offsets not strictly ascending at %d", off)
		}
		if seen[off] {
			t.Errorf("duplicate offset %d", off)
		}
		seen[off] = true
		prev = off
	}
}

func TestSampleOffsets_Deterministic(t *testing.T) {
	a := SampleOffsets(100000, 50, 42)
	b := SampleOffsets(100000, 50, 42)

	if len(a) != 50 {
		t.Fatalf("expected 50 offsets, got %d", len(a))
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical seeds to reproduce the same sample")
	}
	checkOffsets(t, a, 100000)
}

func TestSampleOffsets_SeedChangesSelection(t *testing.T) {
	a := SampleOffsets(100000, 50, 1)
	b := SampleOffsets(100000, 50, 2)

	if reflect.DeepEqual(a, b) {
		t.Error("expected different seeds to select different offsets")
	}
}

func TestSampleOffsets_SmallTile(t *testing.T) {
	offsets := SampleOffsets(10, 50, 7)

	if len(offsets) != 10 {
		t.Fatalf("expected all 10 clusters, got %d", len(offsets))
	}
	for i, off := range offsets {
		if off != i {
			t.Fatalf("expected identity selection, got %v", offsets)
		}
	}
}

func TestSampleOffsets_NoCap(t *testing.T) {
	if got := SampleOffsets(5, 0, 7); len(got) != 5 {
		t.Errorf("expected uncapped selection of 5, got %v", got)
	}
}

func TestSampleOffsets_EmptyTile(t *testing.T) {
	if got := SampleOffsets(0, 50, 7); got != nil {
		t.Errorf("expected nil for empty tile, got %v", got)
	}
}

func TestTileSeed(t *testing.T) {
	base := TileSeed("160503_M00528_0207_000000000-AR4UF", 1, 1101, 0)

	if TileSeed("160503_M00528_0207_000000000-AR4UF", 1, 1101, 0) != base {
		t.Error("expected seed to be a pure function of its inputs")
	}
	if TileSeed("160503_M00528_0207_000000000-AR4UF", 1, 1102, 0) == base {
		t.Error("expected different tiles to derive different seeds")
	}
	if TileSeed("160503_M00528_0207_000000000-AR4UF", 2, 1101, 0) == base {
		t.Error("expected different lanes to derive different seeds")
	}
	if TileSeed("160503_M00528_0207_000000000-AR4UF", 1, 1101, 99) == base {
		t.Error("expected the base seed to alter the derived seed")
	}
}
