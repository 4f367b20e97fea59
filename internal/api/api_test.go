package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplab/rosteropt/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func apiTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// apiTestPool is small enough that the best squad is readable by hand: the
// two best scorers per position are Allen+Brooks and Davis+Evans, together
// costing 105 for 170 points.
func apiTestPool() []types.Player {
	return []types.Player{
		{Name: "Allen", Team: "ATL", Position: "backcourt", Price: 30, Points: 50},
		{Name: "Brooks", Team: "BOS", Position: "backcourt", Price: 25, Points: 40},
		{Name: "Carter", Team: "CHI", Position: "backcourt", Price: 20, Points: 30},
		{Name: "Davis", Team: "DAL", Position: "frontcourt", Price: 28, Points: 45},
		{Name: "Evans", Team: "DEN", Position: "frontcourt", Price: 22, Points: 35},
		{Name: "Foster", Team: "GSW", Position: "frontcourt", Price: 18, Points: 25},
	}
}

func apiTestConfig() types.Config {
	return types.Config{
		Budget:         120,
		StartGameday:   1,
		EndGameday:     1,
		Transfers:      0,
		SquadSize:      4,
		PositionQuotas: map[string]int{"backcourt": 2, "frontcourt": 2},
	}
}

func postSolve(t *testing.T, router *gin.Engine, req types.SolveRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/solve", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, httpReq)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSolveEndpointReturnsOptimalSolution(t *testing.T) {
	router := NewRouter(nil, apiTestLogger())

	w := postSolve(t, router, types.SolveRequest{
		Players: apiTestPool(),
		Config:  apiTestConfig(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var sol types.Solution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sol))
	assert.Equal(t, types.StatusOptimal, sol.Status)
	assert.InDelta(t, 170.0, sol.TotalPoints, 1e-6)
	require.Len(t, sol.Gamedays, 1)
	assert.ElementsMatch(t, []string{"Allen", "Brooks", "Davis", "Evans"}, sol.Gamedays[0].Players)
	assert.Equal(t, 105, sol.Gamedays[0].Spend)
	assert.NotEmpty(t, sol.Meta.SolveID)
}

func TestSolveEndpointRunsTransferWindow(t *testing.T) {
	router := NewRouter(nil, apiTestLogger())

	cfg := apiTestConfig()
	cfg.EndGameday = 2
	cfg.Transfers = 1
	cfg.InitialSquad = []string{"Brooks", "Carter", "Davis", "Evans"}

	w := postSolve(t, router, types.SolveRequest{
		Players: apiTestPool(),
		Config:  cfg,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var sol types.Solution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sol))

	// The single transfer swaps Carter for Allen before gameday 1, worth 20
	// points on each of the two days: 2 * 170 instead of 2 * 150.
	assert.Equal(t, types.StatusOptimal, sol.Status)
	assert.InDelta(t, 340.0, sol.TotalPoints, 1e-6)
	assert.Equal(t, 1, sol.TransfersUsed)
	require.Len(t, sol.Transfers, 1)
	assert.Equal(t, 1, sol.Transfers[0].Gameday)
	assert.Equal(t, []string{"Allen"}, sol.Transfers[0].In)
	assert.Equal(t, []string{"Carter"}, sol.Transfers[0].Out)
}

func TestSolveEndpointRejectsMalformedJSON(t *testing.T) {
	router := NewRouter(nil, apiTestLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/solve", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
	assert.NotEmpty(t, resp.Details["validation_error"])
}

func TestSolveEndpointRejectsInvalidConfig(t *testing.T) {
	router := NewRouter(nil, apiTestLogger())

	cfg := apiTestConfig()
	cfg.Budget = 0

	w := postSolve(t, router, types.SolveRequest{
		Players: apiTestPool(),
		Config:  cfg,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, "INVALID_CONFIG", resp.Code)
	assert.Contains(t, resp.Details["validation_error"], "budget")
}

func TestSolveEndpointRejectsUnknownPlayer(t *testing.T) {
	router := NewRouter(nil, apiTestLogger())

	cfg := apiTestConfig()
	cfg.PointsAdjustments = map[string]float64{"Nobody": 10}

	w := postSolve(t, router, types.SolveRequest{
		Players: apiTestPool(),
		Config:  cfg,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, "UNKNOWN_PLAYER", resp.Code)
	assert.Contains(t, resp.Details["validation_error"], "Nobody")
}

func TestSolveEndpointReportsInfeasibleBudget(t *testing.T) {
	router := NewRouter(nil, apiTestLogger())

	cfg := apiTestConfig()
	cfg.Budget = 50 // cheapest legal squad costs 85

	w := postSolve(t, router, types.SolveRequest{
		Players: apiTestPool(),
		Config:  cfg,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, "INFEASIBLE", resp.Code)
	assert.Equal(t, "budget", resp.Details["constraint_class"])
	assert.NotEmpty(t, resp.Details["detail"])
}

func TestSolveEndpointTimeLimitWithoutIncumbent(t *testing.T) {
	router := NewRouter(nil, apiTestLogger())

	// Active-player gating disables the greedy warm start, so a request whose
	// context deadline has already passed has no incumbent to fall back on.
	cfg := apiTestConfig()
	cfg.RequireActivePlayers = true
	games := []types.Game{
		{Gameday: 1, HomeTeam: "ATL", AwayTeam: "BOS"},
		{Gameday: 1, HomeTeam: "CHI", AwayTeam: "DAL"},
		{Gameday: 1, HomeTeam: "DEN", AwayTeam: "GSW"},
	}

	body, err := json.Marshal(types.SolveRequest{
		Players: apiTestPool(),
		Games:   games,
		Config:  cfg,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/solve", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusGatewayTimeout, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "TIME_LIMIT", resp.Code)
	assert.Contains(t, resp.Details["error"], "time limit")
}

func TestHealthEndpointWithoutCache(t *testing.T) {
	router := NewRouter(nil, apiTestLogger())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var status types.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "roster-optimizer", status.Service)
	assert.Equal(t, "not_configured", status.Checks["cache"])
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Minute)
}

func TestReadyEndpointWithoutCache(t *testing.T) {
	router := NewRouter(nil, apiTestLogger())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var status types.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, "not_configured", status.Checks["cache"])
}
