package optimizer

import (
	"fmt"
	"sort"

	"github.com/hooplab/rosteropt/internal/milp"
	"github.com/hooplab/rosteropt/internal/types"
)

// RosterRules captures the feasible-squad predicate: fixed size, budget
// ceiling and the optional composition rules. The rules are emitted as linear
// rows so squad legality composes into the single multi-period search.
type RosterRules struct {
	SquadSize  int
	Budget     int
	Quotas     map[string]int
	MaxPerTeam int
}

func rulesFromConfig(cfg types.Config) RosterRules {
	return RosterRules{
		SquadSize:  cfg.SquadSize,
		Budget:     cfg.Budget,
		Quotas:     cfg.PositionQuotas,
		MaxPerTeam: cfg.MaxPerTeam,
	}
}

// apply appends the squad-legality rows for one gameday. vars[i] is the
// inclusion variable of pool player i on that gameday.
func (r RosterRules) apply(m *milp.Model, pool []types.Player, gameday int, vars []int) {
	size := make([]milp.Term, len(vars))
	cost := make([]milp.Term, len(vars))
	for i, v := range vars {
		size[i] = milp.T(v, 1)
		cost[i] = milp.T(v, float64(pool[i].Price))
	}
	m.AddEqual(fmt.Sprintf("squad_size_d%d", gameday), float64(r.SquadSize), size...)
	m.AddLessEq(fmt.Sprintf("budget_d%d", gameday), float64(r.Budget), cost...)

	for _, pos := range sortedKeys(r.Quotas) {
		var terms []milp.Term
		for i, p := range pool {
			if p.Position == pos {
				terms = append(terms, milp.T(vars[i], 1))
			}
		}
		m.AddEqual(fmt.Sprintf("quota_%s_d%d", pos, gameday), float64(r.Quotas[pos]), terms...)
	}

	if r.MaxPerTeam > 0 {
		for _, team := range sortedTeams(pool) {
			var terms []milp.Term
			for i, p := range pool {
				if p.Team == team {
					terms = append(terms, milp.T(vars[i], 1))
				}
			}
			m.AddLessEq(fmt.Sprintf("team_%s_d%d", team, gameday), float64(r.MaxPerTeam), terms...)
		}
	}
}

// staticCheck proves cheap infeasibilities before any search runs: pool too
// small for the composition rules, or a budget below the cheapest legal
// squad. label names the scope in the error detail (whole pool or one
// gameday's active pool).
func (r RosterRules) staticCheck(pool []types.Player, label string) error {
	if len(pool) < r.SquadSize {
		return &types.InfeasibleError{
			Class:  types.ConstraintComposition,
			Detail: fmt.Sprintf("%s has %d players for a squad of %d", label, len(pool), r.SquadSize),
		}
	}

	for _, pos := range sortedKeys(r.Quotas) {
		n := 0
		for _, p := range pool {
			if p.Position == pos {
				n++
			}
		}
		if n < r.Quotas[pos] {
			return &types.InfeasibleError{
				Class:  types.ConstraintComposition,
				Detail: fmt.Sprintf("%s has %d %s players, quota requires %d", label, n, pos, r.Quotas[pos]),
			}
		}
	}

	if r.MaxPerTeam > 0 {
		counts := make(map[string]int)
		selectable := 0
		for _, p := range pool {
			if p.Team == "" {
				selectable++
				continue
			}
			counts[p.Team]++
		}
		for _, n := range counts {
			if n > r.MaxPerTeam {
				n = r.MaxPerTeam
			}
			selectable += n
		}
		if selectable < r.SquadSize {
			return &types.InfeasibleError{
				Class:  types.ConstraintComposition,
				Detail: fmt.Sprintf("%s allows at most %d players under the per-team cap, squad needs %d", label, selectable, r.SquadSize),
			}
		}
	}

	if min, ok := r.cheapestLegalCost(pool); ok && min > r.Budget {
		return &types.InfeasibleError{
			Class:  types.ConstraintBudget,
			Detail: fmt.Sprintf("cheapest legal squad in %s costs %d, budget is %d", label, min, r.Budget),
		}
	}
	return nil
}

// cheapestLegalCost lower-bounds the cost of any legal squad: the quota
// cheapest players per position plus the cheapest remainder. Team caps are
// ignored here, which keeps the bound sound.
func (r RosterRules) cheapestLegalCost(pool []types.Player) (int, bool) {
	if len(pool) < r.SquadSize {
		return 0, false
	}
	prices := make([]int, 0, len(pool))
	if len(r.Quotas) == 0 {
		for _, p := range pool {
			prices = append(prices, p.Price)
		}
		sort.Ints(prices)
		total := 0
		for _, p := range prices[:r.SquadSize] {
			total += p
		}
		return total, true
	}

	// Quotas sum to the squad size by validation, so the bound is the sum of
	// the quota cheapest players per position.
	total := 0
	for _, pos := range sortedKeys(r.Quotas) {
		var posPrices []int
		for _, p := range pool {
			if p.Position == pos {
				posPrices = append(posPrices, p.Price)
			}
		}
		if len(posPrices) < r.Quotas[pos] {
			return 0, false
		}
		sort.Ints(posPrices)
		for _, p := range posPrices[:r.Quotas[pos]] {
			total += p
		}
	}
	return total, true
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTeams(pool []types.Player) []string {
	seen := make(map[string]bool)
	var teams []string
	for _, p := range pool {
		if p.Team != "" && !seen[p.Team] {
			seen[p.Team] = true
			teams = append(teams, p.Team)
		}
	}
	sort.Strings(teams)
	return teams
}
