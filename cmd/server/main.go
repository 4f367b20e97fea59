package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hooplab/rosteropt/internal/api"
	"github.com/hooplab/rosteropt/internal/cache"
	"github.com/hooplab/rosteropt/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	isDevelopment := env == "" || env == "development"

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log := logger.InitLogger(os.Getenv("LOG_LEVEL"), isDevelopment)
	logger.WithService("roster-optimizer").WithFields(logrus.Fields{
		"environment": env,
		"port":        port,
	}).Info("Starting roster optimizer service")

	if isDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// The solution cache is optional; without REDIS_URL every request runs
	// the full search.
	var solutions *cache.Cache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		var err error
		solutions, err = cache.New(redisURL, log)
		if err != nil {
			logger.WithService("roster-optimizer").Fatalf("Failed to connect to Redis: %v", err)
		}
		defer solutions.Close()
		logger.WithService("roster-optimizer").Info("Solution cache enabled")
	}

	router := api.NewRouter(solutions, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	go func() {
		logger.WithService("roster-optimizer").WithField("port", port).Info("Roster optimizer service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("roster-optimizer").Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("roster-optimizer").Info("Shutting down roster optimizer service...")

	// The server has 5 seconds to finish the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithService("roster-optimizer").Fatalf("Roster optimizer service forced to shutdown: %v", err)
	}

	logger.WithService("roster-optimizer").Info("Roster optimizer service exited")
}
