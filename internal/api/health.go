package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hooplab/rosteropt/internal/cache"
	"github.com/hooplab/rosteropt/internal/types"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	solutions *cache.Cache
	logger    *logrus.Logger
}

// NewHealthHandler creates a new health handler. The solution cache may be
// nil when the service runs without Redis.
func NewHealthHandler(solutions *cache.Cache, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		solutions: solutions,
		logger:    logger,
	}
}

// GetHealth returns the basic health status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := types.HealthStatus{
		Status:    "ok",
		Service:   serviceName,
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// The cache is optional; a failing ping degrades the service but solves
	// still run without it.
	if h.solutions == nil {
		response.Checks["cache"] = "not_configured"
	} else if err := h.solutions.Ping(c.Request.Context()); err != nil {
		response.Status = "degraded"
		response.Checks["cache"] = "failed: " + err.Error()
	} else {
		response.Checks["cache"] = "ok"
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	c.JSON(statusCode, response)
}

// GetReady returns the readiness status. The solver needs nothing beyond the
// process itself, so readiness only reports the state of the optional cache.
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := types.HealthStatus{
		Status:    "ready",
		Service:   serviceName,
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.solutions == nil {
		response.Checks["cache"] = "not_configured"
	} else if err := h.solutions.Ping(c.Request.Context()); err != nil {
		response.Checks["cache"] = "failed: " + err.Error()
	} else {
		response.Checks["cache"] = "ok"
	}

	c.JSON(http.StatusOK, response)
}
