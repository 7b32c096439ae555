package llr

import "gonum.org/v1/gonum/mat"

// Table is a 2×2 contingency table laid out as [[k11, k12], [k21, k22]].
// It satisfies mat.Matrix so it can be passed to G2Test and SignedG2.
type Table [2][2]float64

// NewTable builds a table from its four cells.
func NewTable(k11, k12, k21, k22 float64) Table {
	return Table{{k11, k12}, {k21, k22}}
}

// Dims implements mat.Matrix.
func (t Table) Dims() (r, c int) { return 2, 2 }

// At implements mat.Matrix.
func (t Table) At(i, j int) float64 { return t[i][j] }

// T implements mat.Matrix.
func (t Table) T() mat.Matrix { return mat.Transpose{Matrix: t} }

// Cells returns k11, k12, k21, k22.
func (t Table) Cells() (k11, k12, k21, k22 float64) {
	return t[0][0], t[0][1], t[1][0], t[1][1]
}

// Total is the grand total of the table.
func (t Table) Total() float64 {
	return t[0][0] + t[0][1] + t[1][0] + t[1][1]
}

// Expected11 is the expected value of k11 if rows and columns were
// independent. It is 0 for an empty table.
func (t Table) Expected11() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return (t[0][0] + t[0][1]) / total * (t[0][0] + t[1][0])
}

// Signed returns SignedG2Cells of the table's cells.
func (t Table) Signed() float64 {
	return SignedG2Cells(t.Cells())
}
