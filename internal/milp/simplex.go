package milp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

var (
	// ErrInfeasible is returned when no assignment satisfies every row.
	ErrInfeasible = errors.New("milp: problem is infeasible")
	// ErrUnbounded is returned when the relaxation has no finite optimum.
	ErrUnbounded = errors.New("milp: relaxation is unbounded")
	// ErrTimeLimit is returned when the deadline expires before any feasible
	// assignment has been found.
	ErrTimeLimit = errors.New("milp: time limit reached before a feasible assignment was found")
)

const (
	// fixFree marks an undecided variable in a branch state.
	fixFree int8 = -1
	// simplexTol is the pivot tolerance handed to the LP solver.
	simplexTol = 1e-10
	// intTol is the distance from an integer under which a relaxation value
	// counts as integral.
	intTol = 1e-6
)

// relaxation solves the LP relaxation of the model under the given fixings.
// Fixed variables are substituted out before assembly, free variables range
// over [0,1]. It returns the relaxation objective (in maximization terms) and
// a full-length assignment that includes the fixed values.
func relaxation(m *Model, fix []int8) (float64, []float64, error) {
	n := m.NumVars()
	col := make([]int, n)
	nf := 0
	for v := 0; v < n; v++ {
		if fix[v] == fixFree {
			col[v] = nf
			nf++
		} else {
			col[v] = -1
		}
	}

	var objConst float64
	for v := 0; v < n; v++ {
		if fix[v] == 1 {
			objConst += m.obj[v]
		}
	}

	// Fully fixed: nothing to relax, just check the rows.
	if nf == 0 {
		x := make([]float64, n)
		for v := range x {
			if fix[v] == 1 {
				x[v] = 1
			}
		}
		if !m.Feasible(x, intTol) {
			return 0, nil, ErrInfeasible
		}
		return objConst, x, nil
	}

	type keptRow struct {
		src   int
		rhs   float64
		slack int
	}
	kept := make([]keptRow, 0, len(m.rows))
	slacks := 0
	for r, row := range m.rows {
		rhs := row.RHS
		hasFree := false
		for _, t := range row.Terms {
			if fix[t.Var] == fixFree {
				hasFree = true
			} else if fix[t.Var] == 1 {
				rhs -= t.Coef
			}
		}
		if !hasFree {
			// Row fully decided by the fixings.
			switch row.Sense {
			case LessEq:
				if rhs < -intTol {
					return 0, nil, ErrInfeasible
				}
			case GreaterEq:
				if rhs > intTol {
					return 0, nil, ErrInfeasible
				}
			case Equal:
				if rhs < -intTol || rhs > intTol {
					return 0, nil, ErrInfeasible
				}
			}
			continue
		}
		kr := keptRow{src: r, rhs: rhs, slack: -1}
		if row.Sense != Equal {
			kr.slack = slacks
			slacks++
		}
		kept = append(kept, kr)
	}

	// Standard form: one column per free variable, one slack per inequality,
	// one bound slack per free variable for x <= 1.
	rows := len(kept) + nf
	cols := nf + slacks + nf
	data := make([]float64, rows*cols)
	b := make([]float64, rows)

	for i, kr := range kept {
		row := m.rows[kr.src]
		base := i * cols
		for _, t := range row.Terms {
			if c := col[t.Var]; c >= 0 {
				data[base+c] += t.Coef
			}
		}
		if kr.slack >= 0 {
			sc := nf + kr.slack
			if row.Sense == LessEq {
				data[base+sc] = 1
			} else {
				data[base+sc] = -1
			}
		}
		b[i] = kr.rhs
	}
	for v := 0; v < n; v++ {
		c := col[v]
		if c < 0 {
			continue
		}
		base := (len(kept) + c) * cols
		data[base+c] = 1
		data[base+nf+slacks+c] = 1
		b[len(kept)+c] = 1
	}

	// Equality rows tolerate sign flips; keep b nonnegative for the solver.
	for i := range b {
		if b[i] < 0 {
			b[i] = -b[i]
			base := i * cols
			for j := 0; j < cols; j++ {
				data[base+j] = -data[base+j]
			}
		}
	}

	c := make([]float64, cols)
	for v := 0; v < n; v++ {
		if j := col[v]; j >= 0 {
			c[j] = -m.obj[v]
		}
	}

	optF, optX, err := lp.Simplex(c, mat.NewDense(rows, cols, data), b, simplexTol, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return 0, nil, ErrInfeasible
		case errors.Is(err, lp.ErrUnbounded):
			return 0, nil, ErrUnbounded
		default:
			return 0, nil, fmt.Errorf("milp: simplex: %w", err)
		}
	}

	x := make([]float64, n)
	for v := 0; v < n; v++ {
		switch {
		case fix[v] == 1:
			x[v] = 1
		case fix[v] == 0:
			x[v] = 0
		default:
			xv := optX[col[v]]
			if xv < 0 {
				xv = 0
			} else if xv > 1 {
				xv = 1
			}
			x[v] = xv
		}
	}
	return -optF + objConst, x, nil
}
