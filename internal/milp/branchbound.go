package milp

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	// boundEps separates a strictly better objective from a tie.
	boundEps = 1e-9
	// incumbentTol is the row tolerance when accepting a rounded incumbent.
	incumbentTol = 1e-4
)

// Options tunes one Solve call.
type Options struct {
	// Deadline stops the search at a wall-clock instant; zero means none.
	// The context deadline is honored as well, whichever is earlier.
	Deadline time.Time
	// WarmStart optionally seeds the incumbent with a known feasible integral
	// assignment. Invalid assignments are ignored.
	WarmStart []float64
	// MaxNodes caps the number of explored nodes; 0 means unlimited.
	MaxNodes int64
}

// Result is the outcome of a Solve call.
type Result struct {
	// Objective is the incumbent objective value.
	Objective float64
	// X is the incumbent assignment, every entry exactly 0 or 1.
	X []float64
	// Bound is the tightest proven upper bound on the objective.
	Bound float64
	// Nodes counts explored branch-and-bound nodes.
	Nodes int64
	// Proven is true when the search exhausted the tree, false when the
	// deadline or node cap cut it short.
	Proven bool
}

type bbEngine struct {
	m        *Model
	ctx      context.Context
	deadline time.Time
	timed    bool
	maxNodes int64

	fix       []int8
	best      []float64
	bestObj   float64
	haveInc   bool
	rootBound float64
	nodes     int64
	stopped   bool
	cancelErr error
	failErr   error
}

// Solve runs branch-and-bound on the model and returns the best assignment
// found. It returns ErrInfeasible when the search proves no assignment exists
// and ErrTimeLimit when the deadline expires before any incumbent is found.
func Solve(ctx context.Context, m *Model, opts Options) (*Result, error) {
	e := &bbEngine{
		m:        m,
		ctx:      ctx,
		deadline: opts.Deadline,
		maxNodes: opts.MaxNodes,
	}
	if d, ok := ctx.Deadline(); ok && (e.deadline.IsZero() || d.Before(e.deadline)) {
		e.deadline = d
	}
	e.timed = !e.deadline.IsZero()
	e.fix = make([]int8, m.NumVars())
	for i := range e.fix {
		e.fix[i] = fixFree
	}
	e.rootBound = math.Inf(1)

	if opts.WarmStart != nil {
		if x, obj, ok := integralAssignment(m, opts.WarmStart); ok {
			e.best, e.bestObj, e.haveInc = x, obj, true
		}
	}

	e.dfs()

	if e.cancelErr != nil {
		return nil, e.cancelErr
	}
	if e.failErr != nil {
		return nil, e.failErr
	}

	bound := e.rootBound
	if math.IsInf(bound, 1) {
		bound = e.bestObj
	}
	switch {
	case e.stopped && e.haveInc:
		return &Result{Objective: e.bestObj, X: e.best, Bound: bound, Nodes: e.nodes, Proven: false}, nil
	case e.stopped:
		return nil, ErrTimeLimit
	case e.haveInc:
		return &Result{Objective: e.bestObj, X: e.best, Bound: e.bestObj, Nodes: e.nodes, Proven: true}, nil
	default:
		return nil, ErrInfeasible
	}
}

func (e *bbEngine) dfs() {
	if e.stopped {
		return
	}
	e.nodes++
	if e.expired() || (e.maxNodes > 0 && e.nodes > e.maxNodes) {
		e.stopped = true
		return
	}

	obj, x, err := relaxation(e.m, e.fix)
	if err != nil {
		if errors.Is(err, ErrInfeasible) {
			return
		}
		e.failErr = err
		e.stopped = true
		return
	}
	if e.nodes == 1 {
		e.rootBound = obj
	}
	if e.haveInc && obj <= e.bestObj+boundEps {
		return
	}

	v := e.branchVar(x)
	if v < 0 {
		xi := roundAssignment(x)
		objI := e.m.ObjectiveValue(xi)
		if (!e.haveInc || objI > e.bestObj+boundEps) && e.m.Feasible(xi, incumbentTol) {
			e.best, e.bestObj, e.haveInc = xi, objI, true
		}
		return
	}

	// Explore the rounding-nearest child first.
	first := int8(0)
	if x[v] >= 0.5 {
		first = 1
	}
	for _, val := range [2]int8{first, 1 - first} {
		e.fix[v] = val
		e.dfs()
		e.fix[v] = fixFree
		if e.stopped {
			return
		}
	}
}

func (e *bbEngine) expired() bool {
	if err := e.ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			e.cancelErr = err
		}
		return true
	}
	return e.timed && !time.Now().Before(e.deadline)
}

// branchVar picks the most fractional free variable, preferring larger
// objective weight and then the lower index on ties. Returns -1 when the
// assignment is integral.
func (e *bbEngine) branchVar(x []float64) int {
	bestV := -1
	bestFrac := 0.0
	for v, xv := range x {
		if e.fix[v] != fixFree {
			continue
		}
		f := math.Min(xv, 1-xv)
		if f <= intTol {
			continue
		}
		switch {
		case bestV < 0:
			bestV, bestFrac = v, f
		case f > bestFrac+1e-12:
			bestV, bestFrac = v, f
		case f > bestFrac-1e-12 && math.Abs(e.m.obj[v]) > math.Abs(e.m.obj[bestV]):
			bestV, bestFrac = v, f
		}
	}
	return bestV
}

func roundAssignment(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Round(v)
	}
	return out
}

// integralAssignment validates a warm-start vector against the model.
func integralAssignment(m *Model, ws []float64) ([]float64, float64, bool) {
	if len(ws) != m.NumVars() {
		return nil, 0, false
	}
	for _, v := range ws {
		if math.Abs(v-math.Round(v)) > intTol || math.Round(v) < 0 || math.Round(v) > 1 {
			return nil, 0, false
		}
	}
	x := roundAssignment(ws)
	if !m.Feasible(x, incumbentTol) {
		return nil, 0, false
	}
	return x, m.ObjectiveValue(x), true
}
