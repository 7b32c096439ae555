// Package storetest holds behavior tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
	"github.com/cognicore/cooccur/pkg/cooccur/sparse"
	"github.com/cognicore/cooccur/pkg/cooccur/store"
)

// SampleRun returns a small run over items a, b, c, d where a–b is strongly
// positive, a–c weakly positive, b–c negative and d is isolated.
func SampleRun() store.Run {
	return store.Run{
		Config:    "row_cap=200",
		Rows:      12,
		Items:     []string{"a", "b", "c", "d"},
		Marginals: []float64{6, 5, 4, 1},
		Scores: sparse.FromTriplets(4, 4, []sparse.Triplet{
			{Row: 0, Col: 1, Value: 3.5}, {Row: 1, Col: 0, Value: 3.5},
			{Row: 0, Col: 2, Value: 0.8}, {Row: 2, Col: 0, Value: 0.8},
			{Row: 1, Col: 2, Value: -1.2}, {Row: 2, Col: 1, Value: -1.2},
		}),
	}
}

// Run exercises the Store contract against stores returned by open.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	ctx := context.Background()

	t.Run("SaveAndGet", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		id, err := st.SaveRun(ctx, SampleRun())
		require.NoError(t, err)
		require.NotEmpty(t, id)

		info, err := st.GetRun(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, info.ID)
		assert.Equal(t, 12, info.Rows)
		assert.Equal(t, 4, info.Items)
		assert.Equal(t, 3, info.Pairs)
		assert.Equal(t, "row_cap=200", info.Config)
		assert.False(t, info.CreatedAt.IsZero())
	})

	t.Run("GetMissing", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		_, err := st.GetRun(ctx, "nope")
		assert.ErrorIs(t, err, internalerr.ErrNotFound)
	})

	t.Run("ExplicitIDAndOrder", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		first := SampleRun()
		first.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		id1, err := st.SaveRun(ctx, first)
		require.NoError(t, err)

		second := SampleRun()
		second.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		id2, err := st.SaveRun(ctx, second)
		require.NoError(t, err)

		named := SampleRun()
		named.ID = "0"
		id3, err := st.SaveRun(ctx, named)
		require.NoError(t, err)
		assert.Equal(t, "0", id3)

		runs, err := st.ListRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, []string{id2, id1, "0"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	})

	t.Run("TopNeighbors", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		id, err := st.SaveRun(ctx, SampleRun())
		require.NoError(t, err)

		got, err := st.TopNeighbors(ctx, id, "a", 5)
		require.NoError(t, err)
		assert.Equal(t, []store.Neighbor{{Item: "b", Score: 3.5}, {Item: "c", Score: 0.8}}, got)

		got, err = st.TopNeighbors(ctx, id, "a", 1)
		require.NoError(t, err)
		assert.Equal(t, []store.Neighbor{{Item: "b", Score: 3.5}}, got)

		// Negative associations are not indicators.
		got, err = st.TopNeighbors(ctx, id, "c", 0)
		require.NoError(t, err)
		assert.Equal(t, []store.Neighbor{{Item: "a", Score: 0.8}}, got)

		got, err = st.TopNeighbors(ctx, id, "d", 0)
		require.NoError(t, err)
		assert.Empty(t, got)

		_, err = st.TopNeighbors(ctx, id, "zzz", 0)
		assert.ErrorIs(t, err, internalerr.ErrNotFound)
	})

	t.Run("Score", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		id, err := st.SaveRun(ctx, SampleRun())
		require.NoError(t, err)

		s, ok, err := st.Score(ctx, id, "c", "b")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, -1.2, s)

		s, ok, err = st.Score(ctx, id, "b", "c")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, -1.2, s)

		_, ok, err = st.Score(ctx, id, "a", "d")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("RejectsBadRun", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		bad := SampleRun()
		bad.Items = bad.Items[:2]
		_, err := st.SaveRun(ctx, bad)
		assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

		_, err = st.SaveRun(ctx, store.Run{Items: []string{"x"}})
		assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	})
}
