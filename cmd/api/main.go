package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/lotus-events/internal/config"
	"github.com/jwebster45206/lotus-events/internal/content"
	"github.com/jwebster45206/lotus-events/internal/handlers"
	"github.com/jwebster45206/lotus-events/internal/logger"
	"github.com/jwebster45206/lotus-events/internal/middleware"
	"github.com/jwebster45206/lotus-events/internal/session"
	"github.com/jwebster45206/lotus-events/internal/stats"
	"github.com/jwebster45206/lotus-events/pkg/engine"
	"github.com/jwebster45206/lotus-events/pkg/handcrafted"
	"github.com/jwebster45206/lotus-events/pkg/procedural"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Lotus Events API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	bundle, err := content.LoadDir(cfg.DataDir, log)
	if err != nil {
		log.Error("Failed to load content", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}

	generator := procedural.NewGenerator(bundle.Library, log, procedural.WithWildcardChance(cfg.WildcardChance))
	eng := engine.New(generator, handcrafted.NewResolver(bundle.Events, log), log)

	var recorder stats.Recorder = stats.NewMemoryRecorder()
	var statsHealth handlers.Pinger
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisRecorder, err := stats.NewRedisRecorder(ctx, cfg.RedisURL, log)
		cancel()
		if err != nil {
			log.Error("Failed to connect to stats backend", "error", err)
			os.Exit(1)
		}
		recorder = redisRecorder
		statsHealth = redisRecorder
	} else {
		log.Info("REDIS_URL not set, keeping stats in memory")
	}

	store := session.NewStore(cfg.HistorySize, cfg.RNGSeed)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(statsHealth, handlers.ContentInfo{
		Situations:        bundle.Library.Len(),
		HandcraftedEvents: len(bundle.Events),
	}, log)
	mux.Handle("/health", healthHandler)

	sessionHandler := handlers.NewSessionHandler(eng, store, recorder, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	mux.Handle("/v1/stats", handlers.NewStatsHandler(recorder, log))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(log)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := recorder.Close(); err != nil {
		log.Error("Error closing stats recorder", "error", err)
	}

	log.Info("Server exited")
}
