package optimizer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hooplab/rosteropt/internal/milp"
	"github.com/hooplab/rosteropt/internal/types"
)

// relaxedBudget replaces the real budget in diagnosis probes.
const relaxedBudget = 1 << 30

// Engine builds and solves the multi-period squad selection problem for one
// immutable input set. Construction validates the config against the pool;
// Solve may be called repeatedly and never mutates the inputs.
type Engine struct {
	pool     []types.Player
	schedule *types.Schedule
	cfg      types.Config
	points   *PointsResolver
	rules    RosterRules
	initial  []bool
	logger   *logrus.Logger
}

// New validates the config against the player pool and returns a ready
// engine. Structural problems fail with InvalidConfigError, references to
// absent players with UnknownPlayerError.
func New(pool []types.Player, games []types.Game, cfg types.Config, log *logrus.Logger) (*Engine, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg = normalizeConfig(cfg)
	if err := validateConfig(cfg, pool); err != nil {
		return nil, err
	}

	var schedule *types.Schedule
	if len(games) > 0 {
		schedule = types.NewSchedule(games)
	}

	points, err := NewPointsResolver(pool, schedule, cfg.PointsAdjustments)
	if err != nil {
		return nil, err
	}

	var initial []bool
	if len(cfg.InitialSquad) > 0 {
		initial = make([]bool, len(pool))
		for _, name := range cfg.InitialSquad {
			i, ok := points.Index(name)
			if !ok {
				return nil, &types.UnknownPlayerError{Name: name}
			}
			initial[i] = true
		}
	}

	return &Engine{
		pool:     pool,
		schedule: schedule,
		cfg:      cfg,
		points:   points,
		rules:    rulesFromConfig(cfg),
		initial:  initial,
		logger:   log,
	}, nil
}

func normalizeConfig(cfg types.Config) types.Config {
	if cfg.SquadSize == 0 {
		cfg.SquadSize = types.DefaultSquadSize
	}
	if cfg.TransferWindow == "" {
		cfg.TransferWindow = types.TransferWindowCumulative
	}
	return cfg
}

func validateConfig(cfg types.Config, pool []types.Player) error {
	if cfg.Budget <= 0 {
		return &types.InvalidConfigError{Reason: "budget must be positive"}
	}
	if cfg.EndGameday < cfg.StartGameday {
		return &types.InvalidConfigError{Reason: fmt.Sprintf("end_gameday %d precedes start_gameday %d", cfg.EndGameday, cfg.StartGameday)}
	}
	if cfg.Transfers < 0 {
		return &types.InvalidConfigError{Reason: "transfers must be non-negative"}
	}
	if cfg.SquadSize <= 0 {
		return &types.InvalidConfigError{Reason: "squad_size must be positive"}
	}
	if cfg.TimeLimitMS < 0 {
		return &types.InvalidConfigError{Reason: "time_limit_ms must be non-negative"}
	}
	switch cfg.TransferWindow {
	case types.TransferWindowCumulative, types.TransferWindowPerGameday:
	default:
		return &types.InvalidConfigError{Reason: fmt.Sprintf("unknown transfer_window %q", cfg.TransferWindow)}
	}

	if n := len(cfg.InitialSquad); n != 0 && n != cfg.SquadSize {
		return &types.InvalidConfigError{Reason: fmt.Sprintf("initial squad has %d players, want 0 or %d", n, cfg.SquadSize)}
	}
	seen := make(map[string]bool, len(cfg.InitialSquad))
	for _, name := range cfg.InitialSquad {
		if seen[name] {
			return &types.InvalidConfigError{Reason: fmt.Sprintf("duplicate player %q in initial squad", name)}
		}
		seen[name] = true
	}

	if len(cfg.PositionQuotas) > 0 {
		sum := 0
		for pos, q := range cfg.PositionQuotas {
			if q < 0 {
				return &types.InvalidConfigError{Reason: fmt.Sprintf("position quota for %q is negative", pos)}
			}
			sum += q
		}
		if sum != cfg.SquadSize {
			return &types.InvalidConfigError{Reason: fmt.Sprintf("position quotas sum to %d, squad size is %d", sum, cfg.SquadSize)}
		}
	}
	if cfg.MaxPerTeam < 0 {
		return &types.InvalidConfigError{Reason: "max_per_team must be non-negative"}
	}

	if lu := cfg.Lineup; lu != nil {
		if lu.Size <= 0 {
			return &types.InvalidConfigError{Reason: "lineup size must be positive"}
		}
		if lu.Size > cfg.SquadSize {
			return &types.InvalidConfigError{Reason: fmt.Sprintf("lineup size %d exceeds squad size %d", lu.Size, cfg.SquadSize)}
		}
		if lu.MinPerPosition < 0 {
			return &types.InvalidConfigError{Reason: "lineup min_per_position must be non-negative"}
		}
		if lu.MinPerPosition > 0 {
			positions := lineupPositions(cfg, pool)
			if len(positions) == 0 {
				return &types.InvalidConfigError{Reason: "lineup min_per_position requires player positions"}
			}
			if lu.MinPerPosition*len(positions) > lu.Size {
				return &types.InvalidConfigError{Reason: fmt.Sprintf("lineup minimums need %d slots, lineup size is %d", lu.MinPerPosition*len(positions), lu.Size)}
			}
		}
	}
	return nil
}

// lineupPositions lists the positions the lineup minimums apply to: the quota
// keys when quotas are configured, otherwise every distinct position in the
// pool.
func lineupPositions(cfg types.Config, pool []types.Player) []string {
	if len(cfg.PositionQuotas) > 0 {
		return sortedKeys(cfg.PositionQuotas)
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range pool {
		if p.Position != "" && !seen[p.Position] {
			seen[p.Position] = true
			out = append(out, p.Position)
		}
	}
	sort.Strings(out)
	return out
}

// Solve runs the full optimization and returns the best squad sequence.
// Infeasible inputs fail with InfeasibleError naming the violated constraint
// class; an expired deadline with an incumbent in hand returns a solution
// with status feasible-timeout instead of an error.
func (e *Engine) Solve(ctx context.Context) (*types.Solution, error) {
	solveID := uuid.New().String()
	start := time.Now()
	days := e.cfg.Gamedays()

	e.logger.WithFields(logrus.Fields{
		"solve_id":      solveID,
		"player_count":  len(e.pool),
		"start_gameday": e.cfg.StartGameday,
		"end_gameday":   e.cfg.EndGameday,
		"budget":        e.cfg.Budget,
		"transfers":     e.cfg.Transfers,
		"squad_size":    e.cfg.SquadSize,
	}).Info("Starting roster optimization")

	if err := e.staticChecks(days); err != nil {
		e.logger.WithField("solve_id", solveID).WithError(err).Warn("Problem proven infeasible before search")
		return nil, err
	}

	model, vars := e.buildModel(days, buildFlags{transfers: true, budget: true, objective: true})

	opts := milp.Options{WarmStart: e.greedySeed(model, vars, days)}
	if e.cfg.TimeLimitMS > 0 {
		opts.Deadline = start.Add(time.Duration(e.cfg.TimeLimitMS) * time.Millisecond)
	}

	res, err := milp.Solve(ctx, model, opts)
	if err != nil {
		switch {
		case errors.Is(err, milp.ErrInfeasible):
			inf := e.diagnose(ctx, days)
			e.logger.WithField("solve_id", solveID).WithError(inf).Warn("Problem infeasible")
			return nil, inf
		case errors.Is(err, milp.ErrTimeLimit):
			return nil, fmt.Errorf("no feasible squad sequence found within the time limit: %w", err)
		default:
			return nil, err
		}
	}

	sol := e.assemble(solveID, days, vars, res, time.Since(start))

	e.logger.WithFields(logrus.Fields{
		"solve_id":  solveID,
		"status":    sol.Status,
		"objective": sol.TotalPoints,
		"transfers": sol.TransfersUsed,
		"nodes":     res.Nodes,
		"elapsed":   time.Since(start).String(),
	}).Info("Roster optimization completed")

	return sol, nil
}

// staticChecks proves cheap infeasibilities before any model is built.
func (e *Engine) staticChecks(days []int) error {
	if err := e.rules.staticCheck(e.pool, "player pool"); err != nil {
		return err
	}
	if e.cfg.RequireActivePlayers && e.schedule != nil {
		for _, day := range days {
			var active []types.Player
			for _, p := range e.pool {
				if e.schedule.Active(p.Team, day) {
					active = append(active, p)
				}
			}
			if err := e.rules.staticCheck(active, fmt.Sprintf("gameday %d active pool", day)); err != nil {
				return err
			}
		}
	}
	return nil
}

type buildFlags struct {
	transfers bool
	budget    bool
	objective bool
}

type modelVars struct {
	squad   [][]int
	lineup  [][]int
	captain [][]int
}

// buildModel lays out the decision variables and rows for the window. The
// flags exist for the diagnosis probes, which rebuild the model with the
// transfer or budget rows relaxed and no objective.
func (e *Engine) buildModel(days []int, flags buildFlags) (*milp.Model, modelVars) {
	m := milp.NewModel()
	n := len(e.pool)
	rules := e.rules
	if !flags.budget {
		rules.Budget = relaxedBudget
	}

	vars := modelVars{squad: make([][]int, len(days))}
	for di, day := range days {
		vars.squad[di] = make([]int, n)
		for i := range e.pool {
			vars.squad[di][i] = m.AddBinary(fmt.Sprintf("squad_p%d_d%d", i, day))
		}
		rules.apply(m, e.pool, day, vars.squad[di])

		if e.cfg.RequireActivePlayers && e.schedule != nil {
			for i, p := range e.pool {
				if !e.schedule.Active(p.Team, day) {
					m.AddEqual(fmt.Sprintf("inactive_p%d_d%d", i, day), 0, milp.T(vars.squad[di][i], 1))
				}
			}
		}
	}

	if lu := e.cfg.Lineup; lu != nil {
		vars.lineup = make([][]int, len(days))
		if lu.Captain {
			vars.captain = make([][]int, len(days))
		}
		positions := lineupPositions(e.cfg, e.pool)
		for di, day := range days {
			vars.lineup[di] = make([]int, n)
			sizeTerms := make([]milp.Term, n)
			for i := range e.pool {
				l := m.AddBinary(fmt.Sprintf("lineup_p%d_d%d", i, day))
				vars.lineup[di][i] = l
				m.AddLessEq(fmt.Sprintf("lineup_in_squad_p%d_d%d", i, day), 0,
					milp.T(l, 1), milp.T(vars.squad[di][i], -1))
				sizeTerms[i] = milp.T(l, 1)
				if flags.objective {
					m.Objective(l, e.points.Effective(i, day))
				}
			}
			m.AddEqual(fmt.Sprintf("lineup_size_d%d", day), float64(lu.Size), sizeTerms...)

			if lu.MinPerPosition > 0 {
				for _, pos := range positions {
					var terms []milp.Term
					for i, p := range e.pool {
						if p.Position == pos {
							terms = append(terms, milp.T(vars.lineup[di][i], 1))
						}
					}
					m.AddGreaterEq(fmt.Sprintf("lineup_min_%s_d%d", pos, day), float64(lu.MinPerPosition), terms...)
				}
			}

			if lu.Captain {
				vars.captain[di] = make([]int, n)
				capTerms := make([]milp.Term, n)
				for i := range e.pool {
					c := m.AddBinary(fmt.Sprintf("captain_p%d_d%d", i, day))
					vars.captain[di][i] = c
					m.AddLessEq(fmt.Sprintf("captain_in_lineup_p%d_d%d", i, day), 0,
						milp.T(c, 1), milp.T(vars.lineup[di][i], -1))
					capTerms[i] = milp.T(c, 1)
					if flags.objective {
						// The captain's points count twice.
						m.Objective(c, e.points.Effective(i, day))
					}
				}
				m.AddEqual(fmt.Sprintf("captain_one_d%d", day), 1, capTerms...)
			}
		}
	} else if flags.objective {
		for di, day := range days {
			for i := range e.pool {
				m.Objective(vars.squad[di][i], e.points.Effective(i, day))
			}
		}
	}

	if flags.transfers {
		newTransferLedger(e.cfg, e.initial).apply(m, n, days, vars.squad)
	}

	return m, vars
}

// diagnose attributes a proven infeasibility to a constraint class by
// re-solving with rows relaxed in turn: first the transfer rows, then the
// budget on top of that.
func (e *Engine) diagnose(ctx context.Context, days []int) error {
	if e.probeFeasible(ctx, days, buildFlags{budget: true}) {
		return &types.InfeasibleError{
			Class:  types.ConstraintTransfer,
			Detail: fmt.Sprintf("no squad sequence reachable within %d transfers", e.cfg.Transfers),
		}
	}
	if e.probeFeasible(ctx, days, buildFlags{}) {
		return &types.InfeasibleError{
			Class:  types.ConstraintBudget,
			Detail: fmt.Sprintf("budget %d admits no legal squad on every gameday", e.cfg.Budget),
		}
	}
	return &types.InfeasibleError{
		Class:  types.ConstraintComposition,
		Detail: "composition rules admit no legal squad on every gameday",
	}
}

func (e *Engine) probeFeasible(ctx context.Context, days []int, flags buildFlags) bool {
	m, _ := e.buildModel(days, flags)
	_, err := milp.Solve(ctx, m, milp.Options{MaxNodes: 5000})
	return err == nil
}
