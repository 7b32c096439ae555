package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/cooccur/pkg/cooccur/store"
	"github.com/cognicore/cooccur/pkg/cooccur/store/storetest"
)

func open(t *testing.T, path string) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	return st
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return open(t, filepath.Join(t.TempDir(), "runs.db"))
	})
}

func TestSQLiteReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	st := open(t, path)
	id, err := st.SaveRun(ctx, storetest.SampleRun())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st = open(t, path)
	defer st.Close()

	neighbors, err := st.TopNeighbors(ctx, id, "b", 3)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "a", neighbors[0].Item)
}

func TestSQLiteDuplicateRunID(t *testing.T) {
	ctx := context.Background()
	st := open(t, filepath.Join(t.TempDir(), "runs.db"))
	defer st.Close()

	run := storetest.SampleRun()
	run.ID = "fixed"
	_, err := st.SaveRun(ctx, run)
	require.NoError(t, err)
	_, err = st.SaveRun(ctx, run)
	assert.Error(t, err, "run IDs are unique")

	runs, err := st.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "a failed save leaves no partial run")
}
