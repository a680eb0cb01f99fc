// Package bcl reads Illumina base-call containers: per-tile .bcl files
// (optionally gzip-compressed) and lane-aggregated .bcl.bgzf files with
// their .bci tile index. A container starts with a uint32 little-endian
// cluster count; every following byte packs one call, bits 0-1 holding
// the base (A, C, G, T) and bits 2-7 the quality. A zero byte is a
// no-call.
package bcl

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var baseLetters = [4]byte{'A', 'C', 'G', 'T'}

// DecodeBase maps one packed call byte to its base letter. A zero byte
// decodes to 'N'.
func DecodeBase(b byte) byte {
	if b == 0 {
		return 'N'
	}
	return baseLetters[b&0x03]
}

// ClusterCount returns the cluster count declared by the container
// header at path.
func ClusterCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(path) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, &DecodeError{Path: path, Err: fmt.Errorf("failed to open gzip stream: %w", err)}
		}
		defer gz.Close()
		r = gz
	}

	count, err := readHeader(r)
	if err != nil {
		return 0, &DecodeError{Path: path, Err: err}
	}
	return count, nil
}

// BasesAt returns the decoded base letters of the clusters at the given
// offsets. Offsets must be ascending: plain containers are read with
// positional access, compressed ones in a single forward pass that skips
// between offsets, so I/O is bounded by the furthest requested cluster.
func BasesAt(path string, offsets []int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	if !isCompressed(path) {
		return basesAtPlain(f, path, offsets)
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to open gzip stream: %w", err)}
	}
	defer gz.Close()
	return basesAtStream(gz, path, offsets)
}

func basesAtPlain(f *os.File, path string, offsets []int) ([]byte, error) {
	var header [4]byte
	if _, err := f.ReadAt(header[:], 0); err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to read header: %w", err)}
	}
	count := int(binary.LittleEndian.Uint32(header[:]))

	out := make([]byte, len(offsets))
	var b [1]byte
	for i, off := range offsets {
		if off < 0 || off >= count {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("cluster %d outside declared count %d", off, count)}
		}
		if _, err := f.ReadAt(b[:], int64(4+off)); err != nil {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("truncated at cluster %d: %w", off, err)}
		}
		out[i] = DecodeBase(b[0])
	}
	return out, nil
}

func basesAtStream(r io.Reader, path string, offsets []int) ([]byte, error) {
	count, err := readHeader(r)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	out := make([]byte, len(offsets))
	pos := 0
	var b [1]byte
	for i, off := range offsets {
		if off < pos {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("offsets not ascending at %d", off)}
		}
		if off >= count {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("cluster %d outside declared count %d", off, count)}
		}
		if off > pos {
			if _, err := io.CopyN(io.Discard, r, int64(off-pos)); err != nil {
				return nil, &DecodeError{Path: path, Err: fmt.Errorf("truncated before cluster %d: %w", off, err)}
			}
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("truncated at cluster %d: %w", off, err)}
		}
		pos = off + 1
		out[i] = DecodeBase(b[0])
	}
	return out, nil
}

func readHeader(r io.Reader) (int, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	return int(binary.LittleEndian.Uint32(header[:])), nil
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".bgzf")
}

// DecodeError reports a missing, corrupt, or truncated base-call
// container. Decode errors degrade the affected samples to warnings
// rather than failing a run.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
