package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplab/rosteropt/internal/types"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func archivedSolution(id string, points float64) *types.Solution {
	return &types.Solution{
		Status: types.StatusOptimal,
		Gamedays: []types.GamedaySquad{
			{Gameday: 110, Players: []string{"Curry", "Jokic"}, Points: points, Spend: 280},
		},
		TotalPoints:   points,
		TransfersUsed: 1,
		Meta:          types.SolveMeta{SolveID: id, ElapsedMS: 7, Nodes: 3, Bound: points},
	}
}

func testConfig() types.Config {
	return types.Config{Budget: 1010, StartGameday: 110, EndGameday: 113, Transfers: 2}
}

func TestArchiveSaveAndRecent(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	for i, id := range []string{"solve-a", "solve-b", "solve-c"} {
		require.NoError(t, a.Save(ctx, testConfig(), archivedSolution(id, float64(100+i))))
	}

	entries, err := a.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "solve-c", entries[0].SolveID)
	assert.Equal(t, "solve-b", entries[1].SolveID)
	assert.Equal(t, types.StatusOptimal, entries[0].Status)
	assert.Equal(t, 102.0, entries[0].Objective)
	assert.Equal(t, 110, entries[0].StartGameday)
	assert.Equal(t, 113, entries[0].EndGameday)
	assert.Equal(t, 1, entries[0].TransfersUsed)
	assert.WithinDuration(t, time.Now(), entries[0].CreatedAt, time.Minute)
}

func TestArchiveGetRoundTrips(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	want := archivedSolution("solve-x", 421)
	require.NoError(t, a.Save(ctx, testConfig(), want))

	got, err := a.Get(ctx, "solve-x")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestArchiveGetMissing(t *testing.T) {
	a := openTestArchive(t)

	_, err := a.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestArchiveDuplicateSolveID(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, testConfig(), archivedSolution("dup", 1)))
	err := a.Save(ctx, testConfig(), archivedSolution("dup", 2))
	require.Error(t, err)
}

func TestArchivePrune(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, testConfig(), archivedSolution("old", 1)))
	require.NoError(t, a.Save(ctx, testConfig(), archivedSolution("older", 2)))

	// A zero retention window prunes everything written so far.
	pruned, err := a.Prune(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pruned)

	entries, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestArchivePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solves.db")
	ctx := context.Background()

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, testConfig(), archivedSolution("persisted", 42)))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	entries, err := second.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted", entries[0].SolveID)
}
