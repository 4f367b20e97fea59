package optimizer

import (
	"math"
	"time"

	"github.com/hooplab/rosteropt/internal/milp"
	"github.com/hooplab/rosteropt/internal/types"
)

// assemble maps the raw decision values back into per-gameday squads, the
// transfer plan from diffing consecutive squads, and the solve metadata.
func (e *Engine) assemble(solveID string, days []int, vars modelVars, res *milp.Result, elapsed time.Duration) *types.Solution {
	status := types.StatusOptimal
	if !res.Proven {
		status = types.StatusFeasibleTimeout
	}

	sol := &types.Solution{
		Status:      status,
		Gamedays:    make([]types.GamedaySquad, 0, len(days)),
		TotalPoints: roundPoints(res.Objective),
		Meta: types.SolveMeta{
			SolveID:   solveID,
			ElapsedMS: elapsed.Milliseconds(),
			Nodes:     res.Nodes,
			Bound:     roundPoints(res.Bound),
		},
	}

	prev := e.initial
	for di, day := range days {
		current := make([]bool, len(e.pool))
		squad := types.GamedaySquad{Gameday: day}
		for i, p := range e.pool {
			if res.X[vars.squad[di][i]] <= 0.5 {
				continue
			}
			current[i] = true
			squad.Players = append(squad.Players, p.Name)
			squad.Spend += p.Price
		}

		if e.cfg.Lineup != nil {
			var pts float64
			for i, p := range e.pool {
				if res.X[vars.lineup[di][i]] > 0.5 {
					squad.Lineup = append(squad.Lineup, p.Name)
					pts += e.points.Effective(i, day)
				}
				if vars.captain != nil && res.X[vars.captain[di][i]] > 0.5 {
					squad.Captain = p.Name
					pts += e.points.Effective(i, day)
				}
			}
			squad.Points = roundPoints(pts)
		} else {
			var pts float64
			for i := range e.pool {
				if current[i] {
					pts += e.points.Effective(i, day)
				}
			}
			squad.Points = roundPoints(pts)
		}

		if prev != nil {
			step := types.TransferStep{Gameday: day}
			for i, p := range e.pool {
				switch {
				case current[i] && !prev[i]:
					step.In = append(step.In, p.Name)
				case !current[i] && prev[i]:
					step.Out = append(step.Out, p.Name)
				}
			}
			if len(step.In) > 0 || len(step.Out) > 0 {
				sol.Transfers = append(sol.Transfers, step)
			}
			// The initial transition is listed either way but only counts
			// against the allowance when the policy says so.
			exempt := di == 0 && e.cfg.FreeInitialTransfers
			if !exempt {
				sol.TransfersUsed += len(step.In)
			}
		}
		prev = current

		sol.Gamedays = append(sol.Gamedays, squad)
	}

	return sol
}

// roundPoints stabilizes float noise in reported totals.
func roundPoints(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
