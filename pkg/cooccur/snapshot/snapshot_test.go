package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
	"github.com/cognicore/cooccur/pkg/cooccur/sparse"
)

func scores() *sparse.CSR {
	return sparse.FromTriplets(3, 3, []sparse.Triplet{
		{Row: 0, Col: 1, Value: 1.25}, {Row: 1, Col: 0, Value: 1.25},
		{Row: 1, Col: 2, Value: -0.5}, {Row: 2, Col: 1, Value: -0.5},
	})
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Snapshot{Items: []string{"alpha", "", "γ"}, Scores: scores()}
	require.NoError(t, Write(&buf, in))

	out, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.Items, out.Items)
	assert.True(t, sparse.Equal(in.Scores, out.Scores))
}

func TestRoundTripWithoutLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.zst")
	require.NoError(t, SaveFile(path, Snapshot{Scores: scores()}))

	out, err := LoadFile(path)
	require.NoError(t, err)
	assert.Nil(t, out.Items)
	assert.Equal(t, -0.5, out.Scores.At(2, 1))
}

func TestWriteValidates(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, Snapshot{}), internalerr.ErrInvalidInput)
	assert.ErrorIs(t, Write(&buf, Snapshot{Items: []string{"a"}, Scores: scores()}), internalerr.ErrInvalidInput)
}

func TestReadRejectsCorruptInput(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("nope!")))
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = Read(bytes.NewReader([]byte{'C', 'S', 'R', 'Z', 9}))
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Snapshot{Scores: scores()}))
	truncated := buf.Bytes()[:buf.Len()/2]
	_, err = Read(bytes.NewReader(truncated))
	assert.Error(t, err)
}

func TestReadHugeHeaderDoesNotPreallocate(t *testing.T) {
	var payload bytes.Buffer
	enc, err := zstd.NewWriter(&payload)
	require.NoError(t, err)
	for _, v := range []uint64{1 << 27, 1 << 27, 1 << 30, 0} {
		require.NoError(t, binary.Write(enc, binary.LittleEndian, v))
	}
	require.NoError(t, enc.Close())

	file := append([]byte{'C', 'S', 'R', 'Z', version}, payload.Bytes()...)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = Read(bytes.NewReader(file))
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
}

// failingWriter accepts limit bytes and then fails every write.
type failingWriter struct {
	limit int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		n := w.limit
		w.limit = 0
		return n, errDiskFull
	}
	w.limit -= len(p)
	return len(p), nil
}

func TestWriteReportsWriterErrors(t *testing.T) {
	n := 200_000
	triplets := make([]sparse.Triplet, 0, n)
	for i := 0; i < n; i++ {
		triplets = append(triplets, sparse.Triplet{Row: i % 1000, Col: i / 1000, Value: float64(i) * 0.37})
	}
	big := Snapshot{Scores: sparse.FromTriplets(1000, 1000, triplets)}

	assert.ErrorIs(t, Write(&failingWriter{limit: 2}, big), errDiskFull)
	assert.Error(t, Write(&failingWriter{limit: 64}, big))
}
