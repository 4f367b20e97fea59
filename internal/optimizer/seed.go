package optimizer

import (
	"sort"

	"github.com/hooplab/rosteropt/internal/milp"
)

// greedySeed constructs a warm-start assignment when one is cheap to build:
// hold a single squad for the whole window, spending no transfers. With an
// initial squad that squad is held as-is; otherwise a greedy pick by window
// points fills the composition rules and repairs the budget by downgrade
// swaps. The solver validates the vector and ignores it when holding is not
// actually legal, so this never has to be exact.
func (e *Engine) greedySeed(m *milp.Model, vars modelVars, days []int) []float64 {
	var held []int
	if e.initial != nil {
		for i, in := range e.initial {
			if in {
				held = append(held, i)
			}
		}
	} else {
		held = e.greedySquad(days)
	}
	if held == nil {
		return nil
	}

	x := make([]float64, m.NumVars())
	for di := range days {
		for _, i := range held {
			x[vars.squad[di][i]] = 1
		}
	}

	if e.cfg.Lineup != nil {
		for di, day := range days {
			lineup, captain := e.greedyLineup(held, day)
			if lineup == nil {
				return nil
			}
			for _, i := range lineup {
				x[vars.lineup[di][i]] = 1
			}
			if vars.captain != nil {
				x[vars.captain[di][captain]] = 1
			}
		}
	}
	return x
}

// greedySquad picks one squad to hold across the window. Returns nil when the
// greedy construction dead-ends; the search then starts without an incumbent.
func (e *Engine) greedySquad(days []int) []int {
	if e.cfg.RequireActivePlayers && e.schedule != nil {
		// Holding one squad is rarely legal when inactive players cannot be
		// fielded; not worth guessing here.
		return nil
	}

	windowPoints := make([]float64, len(e.pool))
	for i := range e.pool {
		for _, day := range days {
			windowPoints[i] += e.points.Effective(i, day)
		}
	}
	order := make([]int, len(e.pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if windowPoints[ia] != windowPoints[ib] {
			return windowPoints[ia] > windowPoints[ib]
		}
		if e.pool[ia].Price != e.pool[ib].Price {
			return e.pool[ia].Price < e.pool[ib].Price
		}
		return ia < ib
	})

	teamCount := make(map[string]int)
	inSquad := make([]bool, len(e.pool))
	var squad []int
	teamOK := func(i int) bool {
		if e.rules.MaxPerTeam <= 0 || e.pool[i].Team == "" {
			return true
		}
		return teamCount[e.pool[i].Team] < e.rules.MaxPerTeam
	}
	take := func(i int) {
		squad = append(squad, i)
		inSquad[i] = true
		if e.pool[i].Team != "" {
			teamCount[e.pool[i].Team]++
		}
	}

	if len(e.rules.Quotas) > 0 {
		for _, pos := range sortedKeys(e.rules.Quotas) {
			need := e.rules.Quotas[pos]
			for _, i := range order {
				if need == 0 {
					break
				}
				if !inSquad[i] && e.pool[i].Position == pos && teamOK(i) {
					take(i)
					need--
				}
			}
			if need > 0 {
				return nil
			}
		}
	} else {
		for _, i := range order {
			if len(squad) == e.rules.SquadSize {
				break
			}
			if teamOK(i) {
				take(i)
			}
		}
		if len(squad) < e.rules.SquadSize {
			return nil
		}
	}

	cost := 0
	for _, i := range squad {
		cost += e.pool[i].Price
	}

	// Budget repair: swap the priciest member for the cheapest compatible
	// outsider until the squad fits. Every swap strictly lowers the cost.
	for iter := 0; iter < 64 && cost > e.rules.Budget; iter++ {
		byPrice := append([]int(nil), squad...)
		sort.SliceStable(byPrice, func(a, b int) bool {
			return e.pool[byPrice[a]].Price > e.pool[byPrice[b]].Price
		})
		swapped := false
		for _, out := range byPrice {
			in := e.cheapestReplacement(out, inSquad, teamCount)
			if in < 0 {
				continue
			}
			for si, member := range squad {
				if member == out {
					squad[si] = in
					break
				}
			}
			inSquad[out] = false
			inSquad[in] = true
			if t := e.pool[out].Team; t != "" {
				teamCount[t]--
			}
			if t := e.pool[in].Team; t != "" {
				teamCount[t]++
			}
			cost += e.pool[in].Price - e.pool[out].Price
			swapped = true
			break
		}
		if !swapped {
			return nil
		}
	}
	if cost > e.rules.Budget {
		return nil
	}

	sort.Ints(squad)
	return squad
}

// cheapestReplacement finds the cheapest outsider that can take the slot of
// the given member without breaking quotas or team caps. Returns -1 when no
// strictly cheaper candidate exists.
func (e *Engine) cheapestReplacement(out int, inSquad []bool, teamCount map[string]int) int {
	best := -1
	for i := range e.pool {
		if inSquad[i] || i == out {
			continue
		}
		if len(e.rules.Quotas) > 0 && e.pool[i].Position != e.pool[out].Position {
			continue
		}
		if e.pool[i].Price >= e.pool[out].Price {
			continue
		}
		if e.rules.MaxPerTeam > 0 && e.pool[i].Team != "" && e.pool[i].Team != e.pool[out].Team {
			if teamCount[e.pool[i].Team] >= e.rules.MaxPerTeam {
				continue
			}
		}
		if best < 0 || e.pool[i].Price < e.pool[best].Price {
			best = i
		}
	}
	return best
}

// greedyLineup fills the daily lineup minimums with the best held players per
// position, tops up by points and captains the best scorer.
func (e *Engine) greedyLineup(held []int, day int) ([]int, int) {
	lu := e.cfg.Lineup
	ranked := append([]int(nil), held...)
	sort.SliceStable(ranked, func(a, b int) bool {
		pa, pb := e.points.Effective(ranked[a], day), e.points.Effective(ranked[b], day)
		if pa != pb {
			return pa > pb
		}
		return ranked[a] < ranked[b]
	})

	inLineup := make(map[int]bool, lu.Size)
	var lineup []int
	if lu.MinPerPosition > 0 {
		for _, pos := range lineupPositions(e.cfg, e.pool) {
			need := lu.MinPerPosition
			for _, i := range ranked {
				if need == 0 {
					break
				}
				if !inLineup[i] && e.pool[i].Position == pos {
					inLineup[i] = true
					lineup = append(lineup, i)
					need--
				}
			}
			if need > 0 {
				return nil, 0
			}
		}
	}
	for _, i := range ranked {
		if len(lineup) == lu.Size {
			break
		}
		if !inLineup[i] {
			inLineup[i] = true
			lineup = append(lineup, i)
		}
	}
	if len(lineup) < lu.Size {
		return nil, 0
	}

	captain := lineup[0]
	for _, i := range lineup {
		if e.points.Effective(i, day) > e.points.Effective(captain, day) {
			captain = i
		}
	}
	return lineup, captain
}
