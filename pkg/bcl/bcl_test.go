package bcl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

const testQuality = 30

func encodeBase(base byte) byte {
	switch base {
	case 'A':
		return 0 | testQuality<<2
	case 'C':
		return 1 | testQuality<<2
	case 'G':
		return 2 | testQuality<<2
	case 'T':
		return 3 | testQuality<<2
	case 'N':
		return 0
	default:
		panic("unknown base " + string(base))
	}
}

// encodeBCL packs bases into container bytes: uint32 LE cluster count
// followed by one call byte per cluster.
func encodeBCL(bases string) []byte {
	buf := make([]byte, 4+len(bases))
	binary.LittleEndian.PutUint32(buf, uint32(len(bases)))
	for i := 0; i < len(bases); i++ {
		buf[4+i] = encodeBase(bases[i])
	}
	return buf
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		t.Fatalf("failed to compress: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBase(t *testing.T) {
	tests := []struct {
		in   byte
		want byte
	}{
		{0x00, 'N'},
		{0x01, 'C'},
		{0x02, 'G'},
		{0x03, 'T'},
		{0 | testQuality<<2, 'A'},
		{1 | testQuality<<2, 'C'},
		{2 | testQuality<<2, 'G'},
		{3 | testQuality<<2, 'T'},
	}
	for _, tt := range tests {
		if got := DecodeBase(tt.in); got != tt.want {
			t.Errorf("DecodeBase(%#x): expected %c, got %c", tt.in, tt.want, got)
		}
	}
}

func TestClusterCount(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "s_1_1101.bcl")
	writeFile(t, plain, encodeBCL("ACGTACGT"))
	count, err := ClusterCount(plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 8 {
		t.Errorf("expected 8 clusters, got %d", count)
	}

	compressed := filepath.Join(dir, "s_1_1102.bcl.gz")
	writeFile(t, compressed, gzipBytes(t, encodeBCL("ACG")))
	count, err = ClusterCount(compressed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 clusters, got %d", count)
	}
}

func TestBasesAt_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s_1_1101.bcl")
	writeFile(t, path, encodeBCL("ACGTNACGT"))

	got, err := BasesAt(path, []int{0, 3, 4, 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "ATNT" {
		t.Errorf("expected bases 'ATNT', got %q", got)
	}
}

func TestBasesAt_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s_1_1101.bcl.gz")
	writeFile(t, path, gzipBytes(t, encodeBCL("ACGTNACGT")))

	got, err := BasesAt(path, []int{1, 2, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "CGN" {
		t.Errorf("expected bases 'CGN', got %q", got)
	}
}

func TestBasesAt_MultiMemberBGZF(t *testing.T) {
	// BGZF files are gzip members back to back; the reader must carry
	// on across member boundaries.
	payload := encodeBCL("ACGTACGTAC")
	var buf bytes.Buffer
	buf.Write(gzipBytes(t, payload[:7]))
	buf.Write(gzipBytes(t, payload[7:]))

	path := filepath.Join(t.TempDir(), "0001.bcl.bgzf")
	writeFile(t, path, buf.Bytes())

	got, err := BasesAt(path, []int{0, 5, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "ACC" {
		t.Errorf("expected bases 'ACC', got %q", got)
	}
}

func TestBasesAt_OffsetBeyondCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s_1_1101.bcl")
	writeFile(t, path, encodeBCL("ACGT"))

	_, err := BasesAt(path, []int{4})
	if err == nil {
		t.Fatal("expected error for offset beyond cluster count")
	}
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Errorf("expected *DecodeError, got %T", err)
	}
}

func TestBasesAt_TruncatedContainer(t *testing.T) {
	// Header declares 100 clusters but only 4 bytes of calls follow.
	data := encodeBCL("ACGT")
	binary.LittleEndian.PutUint32(data, 100)

	dir := t.TempDir()
	plain := filepath.Join(dir, "s_1_1101.bcl")
	writeFile(t, plain, data)
	if _, err := BasesAt(plain, []int{50}); err == nil {
		t.Error("expected truncation error on plain container")
	}

	compressed := filepath.Join(dir, "s_1_1102.bcl.gz")
	writeFile(t, compressed, gzipBytes(t, data))
	if _, err := BasesAt(compressed, []int{50}); err == nil {
		t.Error("expected truncation error on compressed container")
	}
}

func TestBasesAt_NotAscending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s_1_1101.bcl.gz")
	writeFile(t, path, gzipBytes(t, encodeBCL("ACGTACGT")))

	if _, err := BasesAt(path, []int{3, 1}); err == nil {
		t.Error("expected error for unsorted offsets on a stream")
	}
}

func TestBasesAt_MissingFile(t *testing.T) {
	_, err := BasesAt(filepath.Join(t.TempDir(), "absent.bcl"), []int{0})
	if err == nil {
		t.Fatal("expected error for missing container")
	}
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Errorf("expected *DecodeError, got %T", err)
	}
}

func TestReadBCI(t *testing.T) {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:], 1101)
	binary.LittleEndian.PutUint32(buf[4:], 250)
	binary.LittleEndian.PutUint32(buf[8:], 1102)
	binary.LittleEndian.PutUint32(buf[12:], 300)

	path := filepath.Join(t.TempDir(), "s_1.bci")
	writeFile(t, path, buf)

	records, err := ReadBCI(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TileRecord{{Tile: 1101, Count: 250}, {Tile: 1102, Count: 300}}
	if len(records) != 2 || records[0] != want[0] || records[1] != want[1] {
		t.Errorf("expected %v, got %v", want, records)
	}
}

func TestReadBCI_OddSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s_1.bci")
	writeFile(t, path, make([]byte, 5))

	_, err := ReadBCI(path)
	if err == nil {
		t.Fatal("expected error for truncated index")
	}
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Errorf("expected *DecodeError, got %T", err)
	}
}

func TestTilePath(t *testing.T) {
	runDir := t.TempDir()
	cycleDir := filepath.Join(BaseCallsDir(runDir), "L001", "C101.1")

	// Only the compressed spelling exists.
	writeFile(t, filepath.Join(cycleDir, "s_1_1101.bcl.gz"), gzipBytes(t, encodeBCL("A")))
	path, err := TilePath(runDir, 1, 101, 1101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "s_1_1101.bcl.gz" {
		t.Errorf("expected compressed container, got %s", path)
	}

	// The plain spelling wins once present.
	writeFile(t, filepath.Join(cycleDir, "s_1_1101.bcl"), encodeBCL("A"))
	path, err = TilePath(runDir, 1, 101, 1101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "s_1_1101.bcl" {
		t.Errorf("expected plain container preferred, got %s", path)
	}

	if _, err := TilePath(runDir, 1, 101, 2101); err == nil {
		t.Error("expected error for missing tile")
	}
}
