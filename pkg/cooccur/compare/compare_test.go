package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/cooccur/pkg/cooccur/llr"
)

func TestCompareUnionOfKeys(t *testing.T) {
	a := map[string]int{"go": 10, "rust": 2, "zig": 1}
	b := map[string]int{"go": 3, "rust": 9, "c": 4}

	got := Compare(a, b)
	require.Len(t, got, 4)

	// Totals: a = 13, b = 16.
	assert.InDelta(t, llr.SignedG2Cells(10, 3, 3, 13), got["go"], 1e-12)
	assert.InDelta(t, llr.SignedG2Cells(0, 13, 4, 12), got["c"], 1e-12)
	assert.Positive(t, got["go"])
	assert.Negative(t, got["rust"])
	assert.Negative(t, got["c"])
}

func TestCompareAntisymmetric(t *testing.T) {
	a := map[int]float64{1: 5, 2: 7, 3: 0.5, 4: 100}
	b := map[int]float64{1: 50, 2: 7, 4: 3, 5: 8}

	ab := Compare(a, b)
	ba := Compare(b, a)
	require.Equal(t, len(ab), len(ba))
	for k, v := range ab {
		assert.InDelta(t, -v, ba[k], 1e-9, "key %d", k)
	}
}

func TestCompareEmpty(t *testing.T) {
	got := Compare(map[string]int{}, map[string]int(nil))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCompareIdenticalIsZero(t *testing.T) {
	a := map[string]uint32{"x": 4, "y": 6}
	for _, v := range Compare(a, a) {
		assert.InDelta(t, 0, v, 1e-6)
		assert.False(t, math.IsNaN(v))
	}
}

func TestRanked(t *testing.T) {
	ranked := Ranked(map[string]float64{"b": 1, "a": 1, "c": 3, "d": -2})
	keys := make([]string, len(ranked))
	for i, r := range ranked {
		keys[i] = r.Key
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, keys)
}
