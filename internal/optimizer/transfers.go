package optimizer

import (
	"fmt"

	"github.com/hooplab/rosteropt/internal/milp"
	"github.com/hooplab/rosteropt/internal/types"
)

// TransferLedger encodes how squads may differ between consecutive gamedays:
// an "entered squad" indicator per (player, transition) linked to the
// inclusion variables by change detection, accumulated against the transfer
// allowance. The transition from the initial squad into the first gameday is
// anchored to constants instead of variables.
type TransferLedger struct {
	Allowance   int
	PerGameday  bool
	FreeInitial bool
	initial     []bool
}

// newTransferLedger builds the ledger. initial is indexed by pool position
// and nil when no starting squad was supplied.
func newTransferLedger(cfg types.Config, initial []bool) *TransferLedger {
	return &TransferLedger{
		Allowance:   cfg.Transfers,
		PerGameday:  cfg.TransferWindow == types.TransferWindowPerGameday,
		FreeInitial: cfg.FreeInitialTransfers,
		initial:     initial,
	}
}

// apply appends the entered indicators and allowance rows. squad[di][i] is
// the inclusion variable of pool player i on days[di]. Transitions without an
// anchor (no initial squad, or an exempt initial transition) contribute no
// rows, leaving the first gameday unconstrained by prior state.
func (l *TransferLedger) apply(m *milp.Model, n int, days []int, squad [][]int) {
	var all []milp.Term

	if l.initial != nil && !l.FreeInitial {
		day := days[0]
		var step []milp.Term
		for i := 0; i < n; i++ {
			enter := m.AddBinary(fmt.Sprintf("enter_p%d_d%d", i, day))
			rhs := 0.0
			if l.initial[i] {
				rhs = -1
			}
			m.AddGreaterEq(fmt.Sprintf("link_p%d_d%d", i, day), rhs,
				milp.T(enter, 1), milp.T(squad[0][i], -1))
			step = append(step, milp.T(enter, 1))
		}
		l.addStepAllowance(m, day, step)
		all = append(all, step...)
	}

	for di := 1; di < len(days); di++ {
		day := days[di]
		var step []milp.Term
		for i := 0; i < n; i++ {
			enter := m.AddBinary(fmt.Sprintf("enter_p%d_d%d", i, day))
			m.AddGreaterEq(fmt.Sprintf("link_p%d_d%d", i, day), 0,
				milp.T(enter, 1), milp.T(squad[di][i], -1), milp.T(squad[di-1][i], 1))
			step = append(step, milp.T(enter, 1))
		}
		l.addStepAllowance(m, day, step)
		all = append(all, step...)
	}

	if !l.PerGameday && len(all) > 0 {
		m.AddLessEq("transfer_allowance", float64(l.Allowance), all...)
	}
}

func (l *TransferLedger) addStepAllowance(m *milp.Model, day int, step []milp.Term) {
	if l.PerGameday && len(step) > 0 {
		m.AddLessEq(fmt.Sprintf("transfer_allowance_d%d", day), float64(l.Allowance), step...)
	}
}
