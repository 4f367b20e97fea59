package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplab/rosteropt/internal/store"
	"github.com/hooplab/rosteropt/internal/types"
)

func TestWriteHistory(t *testing.T) {
	entries := []store.Entry{
		{
			SolveID:       "solve-b",
			CreatedAt:     time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC),
			Status:        types.StatusOptimal,
			Objective:     461.5,
			StartGameday:  12,
			EndGameday:    14,
			TransfersUsed: 2,
			ElapsedMS:     84,
		},
		{
			SolveID:       "solve-a",
			CreatedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			Status:        types.StatusFeasibleTimeout,
			Objective:     448.0,
			StartGameday:  12,
			EndGameday:    12,
			TransfersUsed: 0,
			ElapsedMS:     5000,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, entries))

	out := buf.String()
	assert.Contains(t, out, "solve-b")
	assert.Contains(t, out, "solve-a")
	assert.Contains(t, out, "2026-03-02 18:30:00")
	assert.Contains(t, out, "461.50")
	assert.Contains(t, out, "12-14")
	assert.Contains(t, out, "feasible-timeout")
}

func TestWriteHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, nil))
	assert.Contains(t, buf.String(), "No archived solves.")
}
