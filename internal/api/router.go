// Package api exposes the optimizer over HTTP: a solve endpoint plus health
// and readiness probes.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hooplab/rosteropt/internal/cache"
)

// serviceName identifies this service in health payloads.
const serviceName = "roster-optimizer"

// NewRouter builds the gin engine with all routes registered. The solution
// cache may be nil when the service runs without Redis.
func NewRouter(solutions *cache.Cache, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	solveHandler := NewSolveHandler(solutions, log)
	healthHandler := NewHealthHandler(solutions, log)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/solve", solveHandler.Solve)
	}

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	return router
}
