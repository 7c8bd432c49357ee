package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/kepox/search-api/config"
	"github.com/kepox/search-api/dataset"
	"github.com/kepox/search-api/server"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := server.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	server.LogConfigWarnings(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	history, closer, err := server.OpenHistory(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open search history", zap.Error(err))
	}
	defer closer.Close()

	storage, err := server.NewLimiterStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to create rate limiter storage", zap.Error(err))
	}
	defer server.CloseLimiterStorage(storage, logger)

	app := server.NewDatasetApp(cfg, server.Deps{
		Logger:         logger,
		Source:         dataset.NewDefaultFetcher(cfg.UpstreamTimeout),
		History:        history,
		LimiterStorage: storage,
		AccessLog:      server.AccessLogOutput(cfg.LogLevel),
	})

	if err := server.Serve(ctx, app, cfg.Addr(), logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
