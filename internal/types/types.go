package types

import "time"

// Player represents one selectable player in the loaded pool.
// Records are immutable once loaded; the optimizer addresses players by their
// index in the pool, not by name.
type Player struct {
	Name     string          `json:"name"`
	Team     string          `json:"team,omitempty"`
	Position string          `json:"position,omitempty"`
	Price    int             `json:"price"`
	Points   float64         `json:"points"`
	PerDay   map[int]float64 `json:"per_day,omitempty"`
}

// BasePoints returns the recorded points for a gameday, falling back to the
// per-game baseline when no per-day value exists.
func (p Player) BasePoints(gameday int) float64 {
	if v, ok := p.PerDay[gameday]; ok {
		return v
	}
	return p.Points
}

// Game represents one scheduled game on a gameday.
type Game struct {
	Gameday  int    `json:"gameday"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Date     string `json:"date,omitempty"`
}

// Schedule answers which teams have a game on which gameday.
type Schedule struct {
	active map[string]map[int]bool
}

// NewSchedule builds the team/gameday activity lookup from game records.
func NewSchedule(games []Game) *Schedule {
	s := &Schedule{active: make(map[string]map[int]bool)}
	mark := func(team string, gameday int) {
		if team == "" {
			return
		}
		days, ok := s.active[team]
		if !ok {
			days = make(map[int]bool)
			s.active[team] = days
		}
		days[gameday] = true
	}
	for _, g := range games {
		mark(g.HomeTeam, g.Gameday)
		mark(g.AwayTeam, g.Gameday)
	}
	return s
}

// Active reports whether a team has a game on the gameday. A nil schedule
// gates nothing, and players without a team attribute always count as active.
func (s *Schedule) Active(team string, gameday int) bool {
	if s == nil || team == "" {
		return true
	}
	return s.active[team][gameday]
}

// TransferWindow values accepted by Config.TransferWindow.
const (
	TransferWindowCumulative = "window"
	TransferWindowPerGameday = "per_gameday"
)

// DefaultSquadSize is the squad size when the config leaves it unset.
const DefaultSquadSize = 10

// LineupRules configures the optional daily starting-lineup layer. When nil,
// every squad member's points count toward the objective.
type LineupRules struct {
	Size           int  `json:"size"`
	MinPerPosition int  `json:"min_per_position"`
	Captain        bool `json:"captain"`
}

// Config carries every knob of one optimization run.
type Config struct {
	Budget               int                `json:"budget"`
	StartGameday         int                `json:"start_gameday"`
	EndGameday           int                `json:"end_gameday"`
	Transfers            int                `json:"transfers"`
	SquadSize            int                `json:"squad_size,omitempty"`
	InitialSquad         []string           `json:"initial_squad,omitempty"`
	PointsAdjustments    map[string]float64 `json:"player_points_adjustments,omitempty"`
	PositionQuotas       map[string]int     `json:"position_quotas,omitempty"`
	MaxPerTeam           int                `json:"max_per_team,omitempty"`
	Lineup               *LineupRules       `json:"lineup,omitempty"`
	TransferWindow       string             `json:"transfer_window,omitempty"`
	FreeInitialTransfers bool               `json:"free_initial_transfers,omitempty"`
	RequireActivePlayers bool               `json:"require_active_players,omitempty"`
	TimeLimitMS          int                `json:"time_limit_ms,omitempty"`
}

// Gamedays expands the inclusive window into its ordered members.
func (c Config) Gamedays() []int {
	if c.EndGameday < c.StartGameday {
		return nil
	}
	days := make([]int, 0, c.EndGameday-c.StartGameday+1)
	for d := c.StartGameday; d <= c.EndGameday; d++ {
		days = append(days, d)
	}
	return days
}

// WindowLength returns the number of gamedays in the window.
func (c Config) WindowLength() int {
	if c.EndGameday < c.StartGameday {
		return 0
	}
	return c.EndGameday - c.StartGameday + 1
}

// SolveStatus reports how the search terminated.
type SolveStatus string

const (
	StatusOptimal         SolveStatus = "optimal"
	StatusFeasibleTimeout SolveStatus = "feasible-timeout"
	StatusInfeasible      SolveStatus = "infeasible"
)

// GamedaySquad is the selected squad for one gameday.
type GamedaySquad struct {
	Gameday int      `json:"gameday"`
	Players []string `json:"players"`
	Lineup  []string `json:"lineup,omitempty"`
	Captain string   `json:"captain,omitempty"`
	Points  float64  `json:"points"`
	Spend   int      `json:"spend"`
}

// TransferStep records the squad changes entering one gameday.
type TransferStep struct {
	Gameday int      `json:"gameday"`
	In      []string `json:"in"`
	Out     []string `json:"out"`
}

// SolveMeta carries diagnostics about the search itself.
type SolveMeta struct {
	SolveID   string  `json:"solve_id"`
	ElapsedMS int64   `json:"elapsed_ms"`
	Nodes     int64   `json:"nodes"`
	Bound     float64 `json:"bound"`
}

// Solution is the full output of one optimization run.
type Solution struct {
	Status        SolveStatus    `json:"status"`
	Gamedays      []GamedaySquad `json:"gamedays"`
	Transfers     []TransferStep `json:"transfers"`
	TransfersUsed int            `json:"transfers_used"`
	TotalPoints   float64        `json:"total_points"`
	Meta          SolveMeta      `json:"meta"`
}

// SolveRequest is the HTTP payload for one optimization run.
type SolveRequest struct {
	Players []Player `json:"players"`
	Games   []Game   `json:"games,omitempty"`
	Config  Config   `json:"config"`
}

// ErrorResponse is the JSON error envelope returned by the HTTP API.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthStatus reports service health for monitoring endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}
