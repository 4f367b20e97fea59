// Package milp solves 0/1 integer linear programs by branch-and-bound over
// simplex relaxations. Models are built incrementally from binary variables,
// sparse linear rows and a maximization objective; Solve explores the binary
// assignment tree, pruning on the LP bound of each node.
package milp

import "fmt"

// Sense is the comparison direction of a constraint row.
type Sense int

const (
	LessEq Sense = iota
	Equal
	GreaterEq
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case Equal:
		return "=="
	case GreaterEq:
		return ">="
	}
	return "?"
}

// Term is one coefficient applied to one variable.
type Term struct {
	Var  int
	Coef float64
}

// T is a convenience constructor for Term.
func T(v int, coef float64) Term {
	return Term{Var: v, Coef: coef}
}

// Constraint is a sparse linear row: sum of terms Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is a 0/1 integer program with a maximization objective.
type Model struct {
	names []string
	obj   []float64
	rows  []Constraint
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// AddBinary adds a binary variable and returns its index. Names are only used
// for diagnostics.
func (m *Model) AddBinary(name string) int {
	m.names = append(m.names, name)
	m.obj = append(m.obj, 0)
	return len(m.names) - 1
}

// NumVars returns the number of variables added so far.
func (m *Model) NumVars() int {
	return len(m.names)
}

// VarName returns the diagnostic name of a variable.
func (m *Model) VarName(v int) string {
	if v < 0 || v >= len(m.names) {
		return fmt.Sprintf("x%d", v)
	}
	return m.names[v]
}

// Objective adds coef to the objective coefficient of a variable. Calling it
// twice for the same variable accumulates.
func (m *Model) Objective(v int, coef float64) {
	m.obj[v] += coef
}

// AddLessEq appends the row sum(terms) <= rhs.
func (m *Model) AddLessEq(name string, rhs float64, terms ...Term) {
	m.rows = append(m.rows, Constraint{Name: name, Terms: terms, Sense: LessEq, RHS: rhs})
}

// AddEqual appends the row sum(terms) == rhs.
func (m *Model) AddEqual(name string, rhs float64, terms ...Term) {
	m.rows = append(m.rows, Constraint{Name: name, Terms: terms, Sense: Equal, RHS: rhs})
}

// AddGreaterEq appends the row sum(terms) >= rhs.
func (m *Model) AddGreaterEq(name string, rhs float64, terms ...Term) {
	m.rows = append(m.rows, Constraint{Name: name, Terms: terms, Sense: GreaterEq, RHS: rhs})
}

// NumRows returns the number of constraint rows.
func (m *Model) NumRows() int {
	return len(m.rows)
}

// ObjectiveValue evaluates the objective at an assignment.
func (m *Model) ObjectiveValue(x []float64) float64 {
	var sum float64
	for v, c := range m.obj {
		if c != 0 {
			sum += c * x[v]
		}
	}
	return sum
}

// Feasible reports whether an assignment satisfies every row within tol.
func (m *Model) Feasible(x []float64, tol float64) bool {
	if len(x) != len(m.names) {
		return false
	}
	for _, row := range m.rows {
		var lhs float64
		for _, t := range row.Terms {
			lhs += t.Coef * x[t.Var]
		}
		switch row.Sense {
		case LessEq:
			if lhs > row.RHS+tol {
				return false
			}
		case GreaterEq:
			if lhs < row.RHS-tol {
				return false
			}
		case Equal:
			if lhs > row.RHS+tol || lhs < row.RHS-tol {
				return false
			}
		}
	}
	return true
}
