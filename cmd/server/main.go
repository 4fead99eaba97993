package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/api"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/buildconfig"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/config"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/service"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := newLogger(config.LogLevel())
	defer func() { _ = logger.Sync() }()

	logger.Info("starting learning engine",
		zap.String("version", buildconfig.Version()),
		zap.String("commit", buildconfig.Commit()))

	ctx := context.Background()

	engine, err := service.OpenEngine(ctx, engineConfig(), logger)
	if err != nil {
		logger.Fatal("failed to open learning engine", zap.Error(err))
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("failed to close knowledge log", zap.Error(err))
		}
	}()

	app := api.NewApp(engine.Graph, engine.Learning, engine.Prediction, engine.Decay, api.Options{
		APIKey:         config.APIKey(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}, logger)

	// Start background services
	app.Decay.SetInterval(config.DecayInterval())
	app.Decay.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// Stop background services
	app.Decay.Stop()
	app.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func engineConfig() service.EngineConfig {
	return service.EngineConfig{
		Store: store.Options{
			Driver:      config.StoreDriver(),
			SQLitePath:  config.SQLitePath(),
			DatabaseURL: config.DatabaseURL(),
			BadgerPath:  config.BadgerPath(),
		},
		Breaker: store.BreakerConfig{
			MaxConsecutiveFailures: config.BreakerMaxFailures(),
			Timeout:                config.BreakerTimeout(),
		},
		VocabularyPath: config.VocabularyPath(),
		Graph: graph.Config{
			DecayFactor:      config.DecayFactor(),
			MinConfidence:    config.MinConfidence(),
			MaxRecentSources: config.MaxRecentSources(),
		},
		HistoryCapacity: config.HistoryCapacity(),
		ReplayOnStart:   config.ReplayOnStart(),
	}
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
