package llr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
)

// G2Test returns the log-likelihood ratio statistic of an r×c contingency
// table:
//
//	G² = 2 · (H(row sums) + H(col sums) − H(cells))
//
// where H is the denormalized Entropy. The result is non-negative in exact
// arithmetic but may be slightly negative after rounding; clamp before taking
// a square root.
func G2Test(m mat.Matrix) float64 {
	r, c := m.Dims()
	rows := make([]float64, r)
	cols := make([]float64, c)
	cells := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			rows[i] += v
			cols[j] += v
			cells = append(cells, v)
		}
	}
	return 2 * (Entropy(rows) + Entropy(cols) - Entropy(cells))
}

// SignedG2 returns the signed square root of G2Test for a 2×2 table. The
// sign is positive when m[0][0] exceeds its expected value under
// independence. Any shape other than 2×2 yields internalerr.ErrInvalidShape.
func SignedG2(m mat.Matrix) (float64, error) {
	r, c := m.Dims()
	if r != 2 || c != 2 {
		return 0, fmt.Errorf("signed g2 needs a 2x2 table, got %dx%d: %w", r, c, internalerr.ErrInvalidShape)
	}
	return SignedG2Cells(m.At(0, 0), m.At(0, 1), m.At(1, 0), m.At(1, 1)), nil
}

// SignedG2Cells is SignedG2 over the four cells of a 2×2 table:
//
//	k11 both present   k12 first only
//	k21 second only    k22 neither
//
// It allocates nothing and is the form used for bulk pair scoring. An
// all-zero table scores 0.
func SignedG2Cells(k11, k12, k21, k22 float64) float64 {
	total := k11 + k12 + k21 + k22
	if total == 0 {
		return 0
	}
	rowH := Entropy2(k11+k12, k21+k22)
	colH := Entropy2(k11+k21, k12+k22)
	cellH := Entropy4(k11, k12, k21, k22)
	g2 := 2 * (rowH + colH - cellH)

	expected := (k11 + k12) / total * (k11 + k21)
	return math.Copysign(math.Sqrt(math.Max(0, g2)), k11-expected)
}
