// Package sparse provides a compressed sparse row matrix with the operations
// the cooccurrence engine needs: nonzero iteration, transpose, sparse
// products and in-place compaction. A *CSR satisfies gonum's mat.Matrix.
package sparse

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
)

// CSR is a compressed sparse row matrix. Column indices within each row are
// strictly increasing. Stored entries may hold an explicit zero until Compact
// is called.
type CSR struct {
	r, c    int
	indptr  []int
	indices []int
	data    []float64
}

// Triplet is a single (row, column, value) entry.
type Triplet struct {
	Row, Col int
	Value    float64
}

// Zeros returns an r×c matrix with no stored entries.
func Zeros(r, c int) *CSR {
	if r < 0 || c < 0 {
		panic(mat.ErrNegativeDimension)
	}
	return &CSR{r: r, c: c, indptr: make([]int, r+1)}
}

// NewCSR builds a matrix from raw CSR arrays, taking ownership of them. The
// arrays are validated; a malformed layout yields internalerr.ErrInvalidInput.
func NewCSR(r, c int, indptr, indices []int, data []float64) (*CSR, error) {
	if r < 0 || c < 0 {
		return nil, fmt.Errorf("negative dimensions %dx%d: %w", r, c, internalerr.ErrInvalidInput)
	}
	if len(indptr) != r+1 || indptr[0] != 0 {
		return nil, fmt.Errorf("indptr length %d for %d rows: %w", len(indptr), r, internalerr.ErrInvalidInput)
	}
	if len(indices) != len(data) || indptr[r] != len(data) {
		return nil, fmt.Errorf("indptr ends at %d with %d indices and %d values: %w",
			indptr[r], len(indices), len(data), internalerr.ErrInvalidInput)
	}
	for i := 0; i < r; i++ {
		lo, hi := indptr[i], indptr[i+1]
		if lo > hi {
			return nil, fmt.Errorf("row %d has decreasing indptr: %w", i, internalerr.ErrInvalidInput)
		}
		for p := lo; p < hi; p++ {
			j := indices[p]
			if j < 0 || j >= c {
				return nil, fmt.Errorf("row %d column %d out of range: %w", i, j, internalerr.ErrInvalidInput)
			}
			if p > lo && indices[p-1] >= j {
				return nil, fmt.Errorf("row %d columns not strictly increasing: %w", i, internalerr.ErrInvalidInput)
			}
		}
	}
	return &CSR{r: r, c: c, indptr: indptr, indices: indices, data: data}, nil
}

// FromTriplets builds an r×c matrix, summing duplicate coordinates. Entries
// that sum to zero are kept as explicit zeros; call Compact to drop them.
func FromTriplets(r, c int, ts []Triplet) *CSR {
	m := Zeros(r, c)
	for _, t := range ts {
		if t.Row < 0 || t.Row >= r || t.Col < 0 || t.Col >= c {
			panic(mat.ErrIndexOutOfRange)
		}
		m.indptr[t.Row+1]++
	}
	for i := 0; i < r; i++ {
		m.indptr[i+1] += m.indptr[i]
	}

	cols := make([]int, len(ts))
	vals := make([]float64, len(ts))
	next := slices.Clone(m.indptr[:r])
	for _, t := range ts {
		p := next[t.Row]
		cols[p] = t.Col
		vals[p] = t.Value
		next[t.Row]++
	}

	// Sort each row and merge duplicates.
	m.indices = make([]int, 0, len(ts))
	m.data = make([]float64, 0, len(ts))
	order := make([]int, 0)
	for i := 0; i < r; i++ {
		lo, hi := m.indptr[i], m.indptr[i+1]
		order = order[:0]
		for p := lo; p < hi; p++ {
			order = append(order, p)
		}
		slices.SortStableFunc(order, func(a, b int) int { return cols[a] - cols[b] })

		m.indptr[i] = len(m.indices)
		for _, p := range order {
			n := len(m.indices)
			if n > m.indptr[i] && m.indices[n-1] == cols[p] {
				m.data[n-1] += vals[p]
				continue
			}
			m.indices = append(m.indices, cols[p])
			m.data = append(m.data, vals[p])
		}
	}
	m.indptr[r] = len(m.indices)
	return m
}

// FromDense copies the nonzero entries of any matrix.
func FromDense(a mat.Matrix) *CSR {
	r, c := a.Dims()
	m := Zeros(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := a.At(i, j); v != 0 {
				m.indices = append(m.indices, j)
				m.data = append(m.data, v)
			}
		}
		m.indptr[i+1] = len(m.indices)
	}
	return m
}

// Dims implements mat.Matrix.
func (m *CSR) Dims() (r, c int) { return m.r, m.c }

// At implements mat.Matrix.
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		panic(mat.ErrIndexOutOfRange)
	}
	lo, hi := m.indptr[i], m.indptr[i+1]
	if p, ok := slices.BinarySearch(m.indices[lo:hi], j); ok {
		return m.data[lo+p]
	}
	return 0
}

// T implements mat.Matrix. Use Transpose for a materialized CSR.
func (m *CSR) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// NNZ is the number of stored entries, explicit zeros included.
func (m *CSR) NNZ() int { return len(m.data) }

// RowNNZ is the number of stored entries in row i.
func (m *CSR) RowNNZ(i int) int { return m.indptr[i+1] - m.indptr[i] }

// RowSpan returns the storage positions [lo, hi) holding row i.
func (m *CSR) RowSpan(i int) (lo, hi int) { return m.indptr[i], m.indptr[i+1] }

// ColAt returns the column of the entry stored at position p.
func (m *CSR) ColAt(p int) int { return m.indices[p] }

// ValueAt returns the value stored at position p.
func (m *CSR) ValueAt(p int) float64 { return m.data[p] }

// SetValueAt overwrites the value stored at position p. Setting zero keeps
// the entry stored until Compact.
func (m *CSR) SetValueAt(p int, v float64) { m.data[p] = v }

// DoNonZero calls fn for every stored nonzero entry in row-major order.
func (m *CSR) DoNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < m.r; i++ {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			if m.data[p] != 0 {
				fn(i, m.indices[p], m.data[p])
			}
		}
	}
}

// DoRowNonZero calls fn for every stored nonzero entry of row i.
func (m *CSR) DoRowNonZero(i int, fn func(j int, v float64)) {
	for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
		if m.data[p] != 0 {
			fn(m.indices[p], m.data[p])
		}
	}
}

// Raw exposes the underlying arrays. They must not be modified.
func (m *CSR) Raw() (indptr, indices []int, data []float64) {
	return m.indptr, m.indices, m.data
}

// Clone returns a deep copy.
func (m *CSR) Clone() *CSR {
	return &CSR{
		r:       m.r,
		c:       m.c,
		indptr:  slices.Clone(m.indptr),
		indices: slices.Clone(m.indices),
		data:    slices.Clone(m.data),
	}
}

// Binarize sets every stored nonzero value to 1.
func (m *CSR) Binarize() {
	for p, v := range m.data {
		if v != 0 {
			m.data[p] = 1
		}
	}
}

// Compact removes stored zeros in place and returns how many were dropped.
func (m *CSR) Compact() int {
	w := 0
	for i := 0; i < m.r; i++ {
		lo, hi := m.indptr[i], m.indptr[i+1]
		m.indptr[i] = w
		for p := lo; p < hi; p++ {
			if m.data[p] == 0 {
				continue
			}
			m.indices[w] = m.indices[p]
			m.data[w] = m.data[p]
			w++
		}
	}
	dropped := len(m.data) - w
	m.indptr[m.r] = w
	m.indices = m.indices[:w]
	m.data = m.data[:w]
	return dropped
}

// ColSums returns the sum of each column.
func (m *CSR) ColSums() []float64 {
	sums := make([]float64, m.c)
	for p, j := range m.indices {
		sums[j] += m.data[p]
	}
	return sums
}

// Transpose returns a new c×r matrix.
func (m *CSR) Transpose() *CSR {
	t := Zeros(m.c, m.r)
	for _, j := range m.indices {
		t.indptr[j+1]++
	}
	for j := 0; j < m.c; j++ {
		t.indptr[j+1] += t.indptr[j]
	}
	t.indices = make([]int, len(m.indices))
	t.data = make([]float64, len(m.data))
	next := slices.Clone(t.indptr[:m.c])
	for i := 0; i < m.r; i++ {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			j := m.indices[p]
			q := next[j]
			t.indices[q] = i
			t.data[q] = m.data[p]
			next[j]++
		}
	}
	return t
}

// Mul returns the product m·b computed row by row with a sparse
// accumulator, so the cost follows the number of partial products rather
// than the dense size of the result. Zero results are not stored.
func (m *CSR) Mul(b *CSR) *CSR {
	if m.c != b.r {
		panic(mat.ErrShape)
	}
	out := Zeros(m.r, b.c)
	acc := make([]float64, b.c)
	seen := make([]bool, b.c)
	var touched []int
	for i := 0; i < m.r; i++ {
		touched = touched[:0]
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			k, a := m.indices[p], m.data[p]
			if a == 0 {
				continue
			}
			for q := b.indptr[k]; q < b.indptr[k+1]; q++ {
				j := b.indices[q]
				if !seen[j] {
					seen[j] = true
					touched = append(touched, j)
				}
				acc[j] += a * b.data[q]
			}
		}
		slices.Sort(touched)
		for _, j := range touched {
			if acc[j] != 0 {
				out.indices = append(out.indices, j)
				out.data = append(out.data, acc[j])
			}
			acc[j] = 0
			seen[j] = false
		}
		out.indptr[i+1] = len(out.indices)
	}
	return out
}

// Equal reports whether a and b have the same dimensions and the same
// nonzero values, ignoring stored zeros.
func Equal(a, b *CSR) bool {
	if a.r != b.r || a.c != b.c {
		return false
	}
	for i := 0; i < a.r; i++ {
		var ra, rb []Triplet
		a.DoRowNonZero(i, func(j int, v float64) { ra = append(ra, Triplet{i, j, v}) })
		b.DoRowNonZero(i, func(j int, v float64) { rb = append(rb, Triplet{i, j, v}) })
		if !slices.Equal(ra, rb) {
			return false
		}
	}
	return true
}

// ToDense materializes the matrix.
func (m *CSR) ToDense() *mat.Dense {
	if m.r == 0 || m.c == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(m.r, m.c, nil)
	m.DoNonZero(func(i, j int, v float64) { d.Set(i, j, v) })
	return d
}
