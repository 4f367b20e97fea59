package milp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// knapsackModel builds max 10a+6b+4c subject to 5a+4b+3c <= capacity.
func knapsackModel(capacity float64) *Model {
	m := NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	c := m.AddBinary("c")
	m.Objective(a, 10)
	m.Objective(b, 6)
	m.Objective(c, 4)
	m.AddLessEq("capacity", capacity, T(a, 5), T(b, 4), T(c, 3))
	return m
}

func TestSolveKnapsackOptimal(t *testing.T) {
	m := knapsackModel(9)

	res, err := Solve(context.Background(), m, Options{})
	require.NoError(t, err)

	assert.True(t, res.Proven)
	assert.InDelta(t, 16.0, res.Objective, 1e-9)
	assert.InDelta(t, 16.0, res.Bound, 1e-9)
	assert.Equal(t, []float64{1, 1, 0}, res.X)
}

func TestSolveKnapsackFractionalRoot(t *testing.T) {
	// Capacity 7 makes the root relaxation fractional, forcing branching.
	m := knapsackModel(7)

	res, err := Solve(context.Background(), m, Options{})
	require.NoError(t, err)

	assert.True(t, res.Proven)
	assert.InDelta(t, 10.0, res.Objective, 1e-9)
	assert.Greater(t, res.Nodes, int64(1))
}

func TestSolveEqualityRow(t *testing.T) {
	m := NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	c := m.AddBinary("c")
	m.Objective(a, 5)
	m.Objective(b, 4)
	m.Objective(c, 1)
	m.AddEqual("pick_two", 2, T(a, 1), T(b, 1), T(c, 1))

	res, err := Solve(context.Background(), m, Options{})
	require.NoError(t, err)

	assert.True(t, res.Proven)
	assert.InDelta(t, 9.0, res.Objective, 1e-9)
	assert.Equal(t, []float64{1, 1, 0}, res.X)
}

func TestSolveGreaterEqRow(t *testing.T) {
	m := NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	c := m.AddBinary("c")
	m.Objective(a, 4)
	m.Objective(b, 3)
	m.Objective(c, 2)
	m.AddLessEq("size", 2, T(a, 1), T(b, 1), T(c, 1))
	m.AddGreaterEq("force_c", 1, T(c, 1))

	res, err := Solve(context.Background(), m, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 6.0, res.Objective, 1e-9)
	assert.Equal(t, []float64{1, 0, 1}, res.X)
}

func TestSolveInfeasible(t *testing.T) {
	m := NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	m.AddGreaterEq("impossible", 3, T(a, 1), T(b, 1))

	_, err := Solve(context.Background(), m, Options{})
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSolveTimeLimitWithoutIncumbent(t *testing.T) {
	m := knapsackModel(9)

	_, err := Solve(context.Background(), m, Options{
		Deadline: time.Now().Add(-time.Second),
	})
	assert.ErrorIs(t, err, ErrTimeLimit)
}

func TestSolveDeadlineReturnsWarmStart(t *testing.T) {
	m := knapsackModel(9)

	res, err := Solve(context.Background(), m, Options{
		Deadline:  time.Now().Add(-time.Second),
		WarmStart: []float64{1, 0, 1},
	})
	require.NoError(t, err)

	assert.False(t, res.Proven)
	assert.InDelta(t, 14.0, res.Objective, 1e-9)
	assert.Equal(t, []float64{1, 0, 1}, res.X)
}

func TestSolveInvalidWarmStartIgnored(t *testing.T) {
	m := knapsackModel(9)

	// Violates the capacity row, so it must not seed the incumbent.
	_, err := Solve(context.Background(), m, Options{
		Deadline:  time.Now().Add(-time.Second),
		WarmStart: []float64{1, 1, 1},
	})
	assert.ErrorIs(t, err, ErrTimeLimit)
}

func TestSolveNodeCap(t *testing.T) {
	m := knapsackModel(7)

	res, err := Solve(context.Background(), m, Options{
		MaxNodes:  1,
		WarmStart: []float64{1, 0, 0},
	})
	require.NoError(t, err)

	assert.False(t, res.Proven)
	assert.InDelta(t, 10.0, res.Objective, 1e-9)
}

func TestSolveContextCancel(t *testing.T) {
	m := knapsackModel(9)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Solve(ctx, m, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolveDeterministicObjective(t *testing.T) {
	var objectives []float64
	for i := 0; i < 3; i++ {
		res, err := Solve(context.Background(), knapsackModel(7), Options{})
		require.NoError(t, err)
		objectives = append(objectives, res.Objective)
	}
	assert.Equal(t, objectives[0], objectives[1])
	assert.Equal(t, objectives[1], objectives[2])
}

func TestObjectiveAccumulates(t *testing.T) {
	m := NewModel()
	a := m.AddBinary("a")
	m.Objective(a, 1)
	m.Objective(a, 1)

	res, err := Solve(context.Background(), m, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, res.Objective, 1e-9)
	assert.Equal(t, []float64{1}, res.X)
}

func TestFeasibleChecksAllSenses(t *testing.T) {
	m := NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	m.AddLessEq("le", 1, T(a, 1), T(b, 1))
	m.AddGreaterEq("ge", 1, T(a, 1), T(b, 1))
	m.AddEqual("eq", 1, T(a, 1), T(b, 1))

	assert.True(t, m.Feasible([]float64{1, 0}, 1e-9))
	assert.True(t, m.Feasible([]float64{0, 1}, 1e-9))
	assert.False(t, m.Feasible([]float64{1, 1}, 1e-9))
	assert.False(t, m.Feasible([]float64{0, 0}, 1e-9))
	assert.False(t, m.Feasible([]float64{1}, 1e-9))
}

func BenchmarkSolveKnapsack(b *testing.B) {
	values := []float64{12, 7, 19, 4, 9, 15, 3, 11, 8, 14, 6, 10, 5, 17, 2, 13, 9, 7, 16, 4}
	weights := []float64{8, 5, 13, 3, 7, 11, 2, 9, 6, 10, 4, 8, 3, 12, 2, 9, 7, 5, 11, 3}

	build := func() *Model {
		m := NewModel()
		terms := make([]Term, len(values))
		for i, v := range values {
			idx := m.AddBinary("item")
			m.Objective(idx, v)
			terms[i] = T(idx, weights[i])
		}
		m.AddLessEq("capacity", 40, terms...)
		return m
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Solve(context.Background(), build(), Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
