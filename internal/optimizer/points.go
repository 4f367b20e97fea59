package optimizer

import (
	"fmt"

	"github.com/hooplab/rosteropt/internal/types"
)

// PointsResolver resolves the effective fantasy-point value for every
// (player, gameday) pair: the manual adjustment when one exists, otherwise the
// player's recorded points for that gameday, gated to zero on gamedays where
// the player's team has no game.
type PointsResolver struct {
	pool     []types.Player
	index    map[string]int
	adjust   map[int]float64
	schedule *types.Schedule
}

// NewPointsResolver validates the adjustment names against the pool and
// returns a resolver. Adjustment keys that name no pool player fail with
// UnknownPlayerError.
func NewPointsResolver(pool []types.Player, schedule *types.Schedule, adjustments map[string]float64) (*PointsResolver, error) {
	index := make(map[string]int, len(pool))
	for i, p := range pool {
		if _, dup := index[p.Name]; dup {
			return nil, fmt.Errorf("duplicate player %q in pool", p.Name)
		}
		index[p.Name] = i
	}
	adjust := make(map[int]float64, len(adjustments))
	for name, v := range adjustments {
		i, ok := index[name]
		if !ok {
			return nil, &types.UnknownPlayerError{Name: name}
		}
		adjust[i] = v
	}
	return &PointsResolver{
		pool:     pool,
		index:    index,
		adjust:   adjust,
		schedule: schedule,
	}, nil
}

// Index resolves a player name to its pool index.
func (r *PointsResolver) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Effective returns the point value used in the objective for a pool index
// and gameday.
func (r *PointsResolver) Effective(i, gameday int) float64 {
	p := r.pool[i]
	if !r.schedule.Active(p.Team, gameday) {
		return 0
	}
	if adj, ok := r.adjust[i]; ok {
		return adj
	}
	return p.BasePoints(gameday)
}

// EffectiveByName is the name-keyed variant of Effective. It fails with
// UnknownPlayerError when the name is not in the pool.
func (r *PointsResolver) EffectiveByName(name string, gameday int) (float64, error) {
	i, ok := r.index[name]
	if !ok {
		return 0, &types.UnknownPlayerError{Name: name}
	}
	return r.Effective(i, gameday), nil
}
