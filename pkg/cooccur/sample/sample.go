// Package sample bounds the degree of rows and columns of a sparse matrix by
// dropping excess nonzero entries chosen uniformly at random.
package sample

import (
	"math/rand/v2"

	"github.com/cognicore/cooccur/pkg/cooccur/sparse"
)

// Stats describes what a capping pass removed.
type Stats struct {
	RowsCapped    int // rows that exceeded the row cap
	ColumnsCapped int // columns that exceeded the item cap
	Dropped       int // entries removed in total
}

// Sampler caps nonzero degrees using an injected random source.
type Sampler struct {
	rng *rand.Rand
}

// New creates a sampler drawing from src.
func New(src rand.Source) *Sampler {
	return &Sampler{rng: rand.New(src)}
}

// NewSeeded creates a sampler with a PCG source so runs are reproducible.
func NewSeeded(seed uint64) *Sampler {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Cap limits every row of m to at most rowCap nonzero entries and then every
// column to at most itemCap, modifying m in place. A cap ≤ 0 disables that
// axis. Column capping sees the already row-capped matrix. Dropped entries
// are compacted out of m before Cap returns.
func (s *Sampler) Cap(m *sparse.CSR, rowCap, itemCap int) Stats {
	var st Stats
	if rowCap > 0 {
		st.RowsCapped = s.CapRows(m, rowCap)
	}
	if itemCap > 0 {
		st.ColumnsCapped = s.CapColumns(m, itemCap)
	}
	st.Dropped = m.Compact()
	return st
}

// CapRows zeroes random entries so that no row keeps more than limit
// nonzeros. It returns the number of rows that were over the limit. Zeroed
// entries stay stored until m.Compact is called.
func (s *Sampler) CapRows(m *sparse.CSR, limit int) int {
	if limit <= 0 {
		return 0
	}
	r, _ := m.Dims()
	capped := 0
	var positions []int
	for i := 0; i < r; i++ {
		lo, hi := m.RowSpan(i)
		if hi-lo <= limit {
			continue
		}
		positions = positions[:0]
		for p := lo; p < hi; p++ {
			if m.ValueAt(p) != 0 {
				positions = append(positions, p)
			}
		}
		if s.drop(m, positions, limit) {
			capped++
		}
	}
	return capped
}

// CapColumns zeroes random entries so that no column keeps more than limit
// nonzeros, considering only entries that are currently nonzero. It returns
// the number of columns that were over the limit.
func (s *Sampler) CapColumns(m *sparse.CSR, limit int) int {
	if limit <= 0 {
		return 0
	}
	_, c := m.Dims()
	counts := make([]int, c)
	for p := 0; p < m.NNZ(); p++ {
		if m.ValueAt(p) != 0 {
			counts[m.ColAt(p)]++
		}
	}
	byCol := make([][]int, c)
	for j, n := range counts {
		if n > limit {
			byCol[j] = make([]int, 0, n)
		}
	}
	for p := 0; p < m.NNZ(); p++ {
		j := m.ColAt(p)
		if byCol[j] != nil && m.ValueAt(p) != 0 {
			byCol[j] = append(byCol[j], p)
		}
	}

	capped := 0
	for _, positions := range byCol {
		if positions != nil && s.drop(m, positions, limit) {
			capped++
		}
	}
	return capped
}

// drop zeroes len(positions)-keep of the given positions, chosen uniformly
// without replacement by a partial Fisher-Yates shuffle.
func (s *Sampler) drop(m *sparse.CSR, positions []int, keep int) bool {
	excess := len(positions) - keep
	if excess <= 0 {
		return false
	}
	for k := 0; k < excess; k++ {
		r := k + s.rng.IntN(len(positions)-k)
		positions[k], positions[r] = positions[r], positions[k]
		m.SetValueAt(positions[k], 0)
	}
	return true
}
