package server

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kepox/search-api/cache"
	"github.com/kepox/search-api/config"
	"github.com/kepox/search-api/db"
	"github.com/kepox/search-api/search"
	"go.uber.org/zap"
)

// NewLogger returns a development logger for LOG_LEVEL=debug and a
// production logger otherwise
func NewLogger(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// OpenHistory opens the search history database named by SEARCH_HISTORY_DB.
// Without one a no-op recorder is returned. The returned closer is never nil.
func OpenHistory(ctx context.Context, cfg *config.Config, log *zap.Logger) (search.Recorder, io.Closer, error) {
	if cfg.HistoryDB == "" {
		log.Info("Search history disabled")
		return search.Nop{}, nopCloser{}, nil
	}

	conn, err := db.Open(ctx, cfg.HistoryDB, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Search history enabled", zap.String("path", cfg.HistoryDB))
	return search.NewHistory(conn), conn, nil
}

// LogConfigWarnings reports the settings that fell back to their defaults
func LogConfigWarnings(cfg *config.Config, log *zap.Logger) {
	for _, warning := range cfg.Warnings {
		log.Warn("Invalid config value", zap.String("detail", warning))
	}
}

// NewLimiterStorage returns the in-memory limiter store when rate limiting is on
func NewLimiterStorage(cfg *config.Config) (fiber.Storage, error) {
	if cfg.RateLimitMax <= 0 {
		return nil, nil
	}
	storage, err := cache.NewStorage()
	if err != nil {
		return nil, err
	}
	return storage, nil
}

// AccessLogOutput is where the request log goes; access logging is off at
// LOG_LEVEL=error
func AccessLogOutput(level string) io.Writer {
	if strings.EqualFold(level, "error") {
		return nil
	}
	return os.Stdout
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// CloseLimiterStorage logs the limiter store counters and releases it
func CloseLimiterStorage(storage fiber.Storage, log *zap.Logger) {
	if storage == nil {
		return
	}
	if s, ok := storage.(*cache.Storage); ok {
		log.Info("Rate limiter storage stats", zap.Any("stats", s.Stats()))
	}
	if err := storage.Close(); err != nil {
		log.Warn("Failed to close rate limiter storage", zap.Error(err))
	}
}
