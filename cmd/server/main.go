package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Friend_Manager/internal/config"
	"github.com/Dias221467/Friend_Manager/internal/database"
	"github.com/Dias221467/Friend_Manager/internal/hub"
	"github.com/Dias221467/Friend_Manager/internal/router"
	"github.com/Dias221467/Friend_Manager/internal/services"
	"github.com/Dias221467/Friend_Manager/pkg/logger"
)

func main() {
	// Load configuration from .env file and the environment
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	logger.Log.WithField("driver", cfg.StorageDriver).Info("Storage ready")

	// --- Services ---
	userService := services.NewUserService(stores.Users)
	friendService := services.NewFriendService(stores.Requests, stores.Users)

	handler := router.New(router.Dependencies{
		Config:  cfg,
		Users:   userService,
		Friends: friendService,
		Hub:     hub.NewHub(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
	if err := stores.Close(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Failed to close storage")
	}
}
