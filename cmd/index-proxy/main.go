package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/kepox/search-api/config"
	"github.com/kepox/search-api/index"
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

	deps := server.Deps{
		Logger:         logger,
		History:        history,
		LimiterStorage: storage,
		AccessLog:      server.AccessLogOutput(cfg.LogLevel),
	}

	// Without ES_URL / ES_API_KEY the app still starts; /search answers 503
	if cfg.IndexConfigured() {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = cfg.UpstreamTimeout

		client, err := index.NewClient(cfg.IndexURL, cfg.IndexAPIKey, cfg.IndexName, transport)
		if err != nil {
			logger.Fatal("Failed to create index client", zap.Error(err))
		}
		deps.Searcher = client
		logger.Info("Index client ready", zap.String("index", cfg.IndexName))
	} else {
		logger.Warn("ES_URL / ES_API_KEY not set; /search will return 503")
	}

	app := server.NewIndexApp(cfg, deps)

	if err := server.Serve(ctx, app, cfg.Addr(), logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
