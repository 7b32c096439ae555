// Package compare scores how much more or less frequent each key is in one
// frequency table than in another.
package compare

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/cognicore/cooccur/pkg/cooccur/llr"
)

// Count is any numeric type usable as a frequency.
type Count interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Compare returns, for every key in either a or b, the signed G² of the
// table [[a[k], Ta−a[k]], [b[k], Tb−b[k]]] where Ta and Tb are the totals of
// a and b. A missing key counts as 0. Positive scores mean k is
// over-represented in a.
func Compare[K comparable, V Count](a, b map[K]V) map[K]float64 {
	ta, tb := total(a), total(b)
	out := make(map[K]float64, max(len(a), len(b)))
	score := func(k K) {
		if _, done := out[k]; done {
			return
		}
		va, vb := float64(a[k]), float64(b[k])
		out[k] = llr.SignedG2Cells(va, ta-va, vb, tb-vb)
	}
	for k := range a {
		score(k)
	}
	for k := range b {
		score(k)
	}
	return out
}

func total[K comparable, V Count](m map[K]V) float64 {
	var t float64
	for _, v := range m {
		t += float64(v)
	}
	return t
}

// Scored is one entry of a ranked comparison.
type Scored[K comparable] struct {
	Key   K
	Score float64
}

// Ranked orders a comparison by descending score. Ties are broken by the
// keys' printed form so the order is stable.
func Ranked[K comparable](scores map[K]float64) []Scored[K] {
	out := make([]Scored[K], 0, len(scores))
	for k, s := range scores {
		out = append(out, Scored[K]{Key: k, Score: s})
	}
	slices.SortFunc(out, func(x, y Scored[K]) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		return cmp.Compare(fmt.Sprint(x.Key), fmt.Sprint(y.Key))
	})
	return out
}
