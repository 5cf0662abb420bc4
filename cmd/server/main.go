// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/invclose/backend-go/internal/api"
	"github.com/andresuchdata/invclose/backend-go/internal/config"
	"github.com/andresuchdata/invclose/backend-go/internal/graph"
	"github.com/andresuchdata/invclose/backend-go/internal/pipeline/monthly_close"
	"github.com/andresuchdata/invclose/backend-go/internal/service"
	"github.com/andresuchdata/invclose/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	pipelineCfg, err := service.PipelineConfig(cfg.Report)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid report configuration")
	}

	ctx := context.Background()
	remotes, cleanup, err := service.Remotes(ctx, cfg, logger.Log)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize remote stores")
	}
	defer cleanup()

	// Initialize services
	closeService := service.NewCloseService(
		monthly_close.NewMonthlyClosePipeline(pipelineCfg, logger.Log),
		service.OneDriveFactory(ctx, cfg.Graph),
		remotes,
		logger.Log,
	)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		CloseService:  closeService,
		Authenticator: graph.NewAuthenticator(cfg.Graph),
		Graph:         cfg.Graph,
		UploadLimitMB: cfg.App.MaxUploadMB,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Strs("remotes", closeService.Sources()).
			Bool("onedrive_auth", cfg.Graph.Enabled()).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
