package types

import "fmt"

// ConstraintClass identifies which constraint family made a problem
// infeasible.
type ConstraintClass string

const (
	ConstraintBudget      ConstraintClass = "budget"
	ConstraintTransfer    ConstraintClass = "transfer"
	ConstraintComposition ConstraintClass = "composition"
)

// UnknownPlayerError reports a referenced player that is not in the pool.
type UnknownPlayerError struct {
	Name string
}

func (e *UnknownPlayerError) Error() string {
	return fmt.Sprintf("unknown player %q", e.Name)
}

// InvalidConfigError reports a structurally invalid config.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid config: " + e.Reason
}

// InfeasibleError reports that no assignment satisfies every constraint
// simultaneously, naming the constraint class that cannot be met.
type InfeasibleError struct {
	Class  ConstraintClass
	Detail string
}

func (e *InfeasibleError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("infeasible: %s constraint: %s", e.Class, e.Detail)
	}
	return fmt.Sprintf("infeasible: %s constraint cannot be satisfied", e.Class)
}
