// Package snapshot writes score matrices and their item labels to a compact
// zstd-compressed binary file.
//
// Layout: the 4-byte magic "CSRZ", a version byte, then a zstd stream of
// little-endian uint64 fields: rows, cols, nnz, item count, each label as
// length + bytes, indptr, indices, and the float64 values.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
	"github.com/cognicore/cooccur/pkg/cooccur/sparse"
)

const version = 1

var magic = [4]byte{'C', 'S', 'R', 'Z'}

// maxLabel bounds a single label so corrupt input cannot force a huge
// allocation.
const maxLabel = 1 << 20

// chunk bounds the up-front capacity of decoded arrays; they grow as values
// actually arrive, so a header claiming huge sizes costs nothing.
const chunk = 1 << 16

// Snapshot is a score matrix with optional item labels.
type Snapshot struct {
	Items  []string
	Scores *sparse.CSR
}

// Write encodes s to w.
func Write(w io.Writer, s Snapshot) error {
	if s.Scores == nil {
		return fmt.Errorf("snapshot has no scores: %w", internalerr.ErrInvalidInput)
	}
	r, c := s.Scores.Dims()
	if s.Items != nil && len(s.Items) != r {
		return fmt.Errorf("%d labels for %d rows: %w", len(s.Items), r, internalerr.ErrInvalidInput)
	}

	if _, err := w.Write(append(magic[:], version)); err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			enc.Close()
		}
	}()
	bw := bufio.NewWriter(enc)

	indptr, indices, data := s.Scores.Raw()
	put := func(v uint64) error { return binary.Write(bw, binary.LittleEndian, v) }

	for _, v := range []uint64{uint64(r), uint64(c), uint64(len(data)), uint64(len(s.Items))} {
		if err := put(v); err != nil {
			return err
		}
	}
	for _, label := range s.Items {
		if err := put(uint64(len(label))); err != nil {
			return err
		}
		if _, err := bw.WriteString(label); err != nil {
			return err
		}
	}
	for _, p := range indptr {
		if err := put(uint64(p)); err != nil {
			return err
		}
	}
	for _, j := range indices {
		if err := put(uint64(j)); err != nil {
			return err
		}
	}
	for _, v := range data {
		if err := put(math.Float64bits(v)); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}
	closed = true
	return enc.Close()
}

// Read decodes a snapshot written by Write. Corrupt or truncated input
// yields an error wrapping internalerr.ErrInvalidInput.
func Read(rd io.Reader) (Snapshot, error) {
	var header [5]byte
	if _, err := io.ReadFull(rd, header[:]); err != nil {
		return Snapshot{}, invalid("read header", err)
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return Snapshot{}, invalid("bad magic", nil)
	}
	if header[4] != version {
		return Snapshot{}, invalid(fmt.Sprintf("unsupported version %d", header[4]), nil)
	}

	dec, err := zstd.NewReader(rd)
	if err != nil {
		return Snapshot{}, err
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	get := func() (uint64, error) {
		var v uint64
		err := binary.Read(br, binary.LittleEndian, &v)
		return v, err
	}

	var dims [4]uint64
	for i := range dims {
		if dims[i], err = get(); err != nil {
			return Snapshot{}, invalid("read dimensions", err)
		}
	}
	rows, cols, nnz, nItems := dims[0], dims[1], dims[2], dims[3]
	if rows > math.MaxInt32 || cols > math.MaxInt32 || nnz > math.MaxInt32 {
		return Snapshot{}, invalid("dimensions out of range", nil)
	}
	if nItems != 0 && nItems != rows {
		return Snapshot{}, invalid(fmt.Sprintf("%d labels for %d rows", nItems, rows), nil)
	}

	var items []string
	if nItems > 0 {
		items = make([]string, 0, min(nItems, chunk))
		for uint64(len(items)) < nItems {
			n, err := get()
			if err != nil {
				return Snapshot{}, invalid("read label length", err)
			}
			if n > maxLabel {
				return Snapshot{}, invalid("label too long", nil)
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(br, buf); err != nil {
				return Snapshot{}, invalid("read label", err)
			}
			items = append(items, string(buf))
		}
	}

	readInts := func(n uint64) ([]int, error) {
		out := make([]int, 0, min(n, chunk))
		for uint64(len(out)) < n {
			v, err := get()
			if err != nil {
				return nil, err
			}
			if v > math.MaxInt32 {
				return nil, errors.New("index out of range")
			}
			out = append(out, int(v))
		}
		return out, nil
	}
	indptr, err := readInts(rows + 1)
	if err != nil {
		return Snapshot{}, invalid("read indptr", err)
	}
	indices, err := readInts(nnz)
	if err != nil {
		return Snapshot{}, invalid("read indices", err)
	}
	data := make([]float64, 0, min(nnz, chunk))
	for uint64(len(data)) < nnz {
		v, err := get()
		if err != nil {
			return Snapshot{}, invalid("read values", err)
		}
		data = append(data, math.Float64frombits(v))
	}

	m, err := sparse.NewCSR(int(rows), int(cols), indptr, indices, data)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Items: items, Scores: m}, nil
}

func invalid(msg string, err error) error {
	if err != nil {
		return fmt.Errorf("snapshot: %s: %w", msg, errors.Join(err, internalerr.ErrInvalidInput))
	}
	return fmt.Errorf("snapshot: %s: %w", msg, internalerr.ErrInvalidInput)
}

// SaveFile writes s to path.
func SaveFile(path string, s Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a snapshot from path.
func LoadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return Read(f)
}
