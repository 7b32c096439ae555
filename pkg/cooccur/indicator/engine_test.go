package indicator

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/cooccur/pkg/cooccur/llr"
	"github.com/cognicore/cooccur/pkg/cooccur/sparse"
)

func observations() *mat.Dense {
	return mat.NewDense(5, 5, []float64{
		1, 0, 0, 0, 0,
		0, 2, 0, 1, 0,
		0, 0, 0, 1, 1,
		0, 1, 0, 1, 1,
		0, 1, 0, 0, 0,
	})
}

func randomMatrix(seed uint64, rows, items int, density float64) *sparse.CSR {
	rng := rand.New(rand.NewPCG(seed, seed))
	var ts []sparse.Triplet
	for i := 0; i < rows; i++ {
		for j := 0; j < items; j++ {
			if rng.Float64() < density {
				ts = append(ts, sparse.Triplet{Row: i, Col: j, Value: float64(1 + rng.IntN(3))})
			}
		}
	}
	return sparse.FromTriplets(rows, items, ts)
}

func assertSymmetric(t *testing.T, m *sparse.CSR) {
	t.Helper()
	tr := m.Transpose()
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			require.Equal(t, m.At(i, j), tr.At(i, j), "(%d,%d)", i, j)
		}
	}
}

func TestIndicatorsReferenceScenario(t *testing.T) {
	scores, err := Indicators(observations(), 0, 200)
	require.NoError(t, err)

	assert.InDelta(t, llr.SignedG2Cells(2, 1, 1, 1), scores.At(1, 3), 1e-12)
	assert.InDelta(t, llr.SignedG2Cells(1, 2, 1, 1), scores.At(1, 4), 1e-12)
	assert.InDelta(t, llr.SignedG2Cells(2, 1, 0, 2), scores.At(3, 4), 1e-12)
	assertSymmetric(t, scores)

	// Item 0 never cooccurs and item 2 never appears.
	for j := 0; j < 5; j++ {
		assert.Equal(t, 0.0, scores.At(0, j))
		assert.Equal(t, 0.0, scores.At(2, j))
		assert.Equal(t, 0.0, scores.At(j, j))
	}
	assert.Equal(t, 6, scores.NNZ())
}

func TestIndicatorsDenseInputUntouched(t *testing.T) {
	d := observations()
	before := mat.DenseCopyOf(d)
	_, err := New().Indicators(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, mat.Equal(before, d))
}

func TestIndicatorsMutatesSparseInput(t *testing.T) {
	m := sparse.FromDense(observations())
	_, err := New().Indicators(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.At(1, 1), "input is binarized in place")

	m = sparse.FromDense(observations())
	_, err = New(WithCopyInput(true)).Indicators(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 2.0, m.At(1, 1))
}

func TestIndicatorsEmpty(t *testing.T) {
	scores, err := Indicators(sparse.Zeros(0, 3), 0, 200)
	require.NoError(t, err)
	r, c := scores.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 0, scores.NNZ())

	scores, err = Indicators(sparse.Zeros(4, 3), 0, 200)
	require.NoError(t, err)
	assert.Equal(t, 0, scores.NNZ())
}

func TestIndicatorsSymmetricRandom(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		m := randomMatrix(seed, 60, 25, 0.2)
		scores, err := New(WithRowCap(4), WithItemCap(20), WithSeed(seed)).Indicators(context.Background(), m)
		require.NoError(t, err)
		assertSymmetric(t, scores)
	}
}

func TestIndicatorsWorkersAgree(t *testing.T) {
	base := randomMatrix(11, 80, 30, 0.15)
	single, err := New(WithCopyInput(true), WithRowCap(5), WithSeed(3)).Indicators(context.Background(), base)
	require.NoError(t, err)
	for _, w := range []int{2, 3, 8, 64} {
		got, err := New(WithCopyInput(true), WithRowCap(5), WithSeed(3), WithWorkers(w)).Indicators(context.Background(), base)
		require.NoError(t, err)
		assert.True(t, sparse.Equal(single, got), "workers=%d", w)
	}
}

func TestLooseCapMatchesUncapped(t *testing.T) {
	base := randomMatrix(21, 50, 20, 0.3)
	uncapped, err := New(WithCopyInput(true), WithRowCap(0)).Indicators(context.Background(), base)
	require.NoError(t, err)
	loose, err := New(WithCopyInput(true), WithRowCap(20), WithItemCap(50)).Indicators(context.Background(), base)
	require.NoError(t, err)
	assert.True(t, sparse.Equal(uncapped, loose))
}

func TestCappingOnlyRemovesPairs(t *testing.T) {
	base := randomMatrix(31, 50, 20, 0.4)
	uncapped, err := New(WithCopyInput(true), WithRowCap(0)).Indicators(context.Background(), base)
	require.NoError(t, err)
	for _, rc := range []int{1, 2, 4, 8} {
		capped, err := New(WithCopyInput(true), WithRowCap(rc), WithSeed(uint64(rc))).Indicators(context.Background(), base)
		require.NoError(t, err)
		capped.DoNonZero(func(i, j int, v float64) {
			assert.True(t, uncappedHasPair(uncapped, base, i, j), "pair (%d,%d) with row cap %d", i, j, rc)
		})
	}
}

// uncappedHasPair reports whether items i and j cooccur in the raw input;
// a zero uncapped score can still be a real cooccurrence.
func uncappedHasPair(uncapped, base *sparse.CSR, i, j int) bool {
	if uncapped.At(i, j) != 0 {
		return true
	}
	r, _ := base.Dims()
	for row := 0; row < r; row++ {
		if base.At(row, i) != 0 && base.At(row, j) != 0 {
			return true
		}
	}
	return false
}

func TestRunReportsMarginals(t *testing.T) {
	res, err := New().Run(context.Background(), observations())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 0, 3, 2}, res.Marginals)
	assert.Equal(t, 5, res.Stats.Rows)
	assert.Equal(t, 3, res.Stats.Pairs)
	assert.Equal(t, 9, res.Stats.NNZInput)
	assert.Equal(t, 9, res.Stats.NNZCapped)
}

func TestIndependentPairIsAbsent(t *testing.T) {
	// Both items appear in half the observations and together in a quarter,
	// exactly as independence predicts.
	m := mat.NewDense(4, 2, []float64{
		1, 1,
		1, 0,
		0, 1,
		0, 0,
	})
	res, err := New().Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Scores.NNZ())
	assert.Equal(t, 0, res.Stats.Pairs)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Run(ctx, observations())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInjectedSourceIsUsed(t *testing.T) {
	base := randomMatrix(41, 40, 20, 0.5)
	a, err := New(WithCopyInput(true), WithRowCap(3), WithSource(rand.NewPCG(8, 9))).Indicators(context.Background(), base)
	require.NoError(t, err)
	b, err := New(WithCopyInput(true), WithRowCap(3), WithSource(rand.NewPCG(8, 9))).Indicators(context.Background(), base)
	require.NoError(t, err)
	assert.True(t, sparse.Equal(a, b))
}

func TestNeighbors(t *testing.T) {
	scores, err := Indicators(observations(), 0, 0)
	require.NoError(t, err)

	all := Neighbors(scores, 3, 0, -1e9)
	require.Len(t, all, 2)
	assert.GreaterOrEqual(t, all[0].Score, all[1].Score)

	top := Neighbors(scores, 3, 1, -1e9)
	require.Len(t, top, 1)
	assert.Equal(t, all[0], top[0])

	assert.Empty(t, Neighbors(scores, 0, 5, 0))
}
