package indicator

import (
	"cmp"
	"slices"

	"github.com/cognicore/cooccur/pkg/cooccur/sparse"
)

// Neighbor is one scored partner of an item.
type Neighbor struct {
	Item  int
	Score float64
}

// Neighbors returns up to k partners of item whose score exceeds minScore,
// strongest first with ties broken by item index. k ≤ 0 returns them all.
func Neighbors(scores *sparse.CSR, item, k int, minScore float64) []Neighbor {
	var out []Neighbor
	scores.DoRowNonZero(item, func(j int, v float64) {
		if v > minScore {
			out = append(out, Neighbor{Item: j, Score: v})
		}
	})
	slices.SortFunc(out, func(a, b Neighbor) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Item, b.Item)
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
