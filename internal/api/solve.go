package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hooplab/rosteropt/internal/cache"
	"github.com/hooplab/rosteropt/internal/milp"
	"github.com/hooplab/rosteropt/internal/optimizer"
	"github.com/hooplab/rosteropt/internal/types"
)

// SolveHandler handles roster optimization requests.
type SolveHandler struct {
	solutions *cache.Cache
	logger    *logrus.Logger
}

// NewSolveHandler creates a new solve handler. The solution cache may be nil,
// in which case every request runs the full search.
func NewSolveHandler(solutions *cache.Cache, logger *logrus.Logger) *SolveHandler {
	return &SolveHandler{
		solutions: solutions,
		logger:    logger,
	}
}

// Solve runs one optimization for the posted player pool, schedule and config.
func (h *SolveHandler) Solve(c *gin.Context) {
	var req types.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	requestID := uuid.New().String()
	h.logger.WithFields(logrus.Fields{
		"request_id":    requestID,
		"player_count":  len(req.Players),
		"start_gameday": req.Config.StartGameday,
		"end_gameday":   req.Config.EndGameday,
	}).Info("Processing solve request")

	// Check the cache before building any model.
	var cacheKey string
	if h.solutions != nil {
		key, err := cache.RequestKey(&req)
		if err != nil {
			h.logger.WithError(err).Warn("Failed to derive cache key")
		} else {
			cacheKey = key
			sol, err := h.solutions.Get(c.Request.Context(), key)
			switch {
			case err == nil:
				h.logger.WithFields(logrus.Fields{
					"request_id": requestID,
					"cache_key":  key,
				}).Info("Returning cached solution")
				c.JSON(http.StatusOK, sol)
				return
			case !errors.Is(err, cache.ErrMiss):
				h.logger.WithError(err).Warn("Cache lookup failed")
			}
		}
	}

	eng, err := optimizer.New(req.Players, req.Games, req.Config, h.logger)
	if err != nil {
		var unknown *types.UnknownPlayerError
		code := "INVALID_CONFIG"
		if errors.As(err, &unknown) {
			code = "UNKNOWN_PLAYER"
		}
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid solve request",
			Code:  code,
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	sol, err := eng.Solve(c.Request.Context())
	if err != nil {
		h.writeSolveError(c, err)
		return
	}

	if h.solutions != nil && cacheKey != "" {
		if err := h.solutions.Set(c.Request.Context(), cacheKey, sol); err != nil {
			h.logger.WithError(err).Warn("Failed to cache solution")
		}
	}

	c.JSON(http.StatusOK, sol)
}

// writeSolveError maps solver failures onto HTTP statuses: 422 for proven
// infeasibility, 504 when the time limit expires with no incumbent.
func (h *SolveHandler) writeSolveError(c *gin.Context, err error) {
	var infeasible *types.InfeasibleError
	switch {
	case errors.As(err, &infeasible):
		c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
			Error: "Problem is infeasible",
			Code:  "INFEASIBLE",
			Details: map[string]string{
				"constraint_class": string(infeasible.Class),
				"detail":           infeasible.Detail,
			},
		})
	case errors.Is(err, milp.ErrTimeLimit):
		c.JSON(http.StatusGatewayTimeout, types.ErrorResponse{
			Error: "No feasible solution found within the time limit",
			Code:  "TIME_LIMIT",
			Details: map[string]string{
				"error": err.Error(),
			},
		})
	default:
		h.logger.WithError(err).Error("Optimization failed")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error: "Optimization failed",
			Code:  "SOLVE_ERROR",
			Details: map[string]string{
				"error": err.Error(),
			},
		})
	}
}
