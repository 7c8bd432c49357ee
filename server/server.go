package server

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kepox/search-api/config"
	"github.com/kepox/search-api/dataset"
	h "github.com/kepox/search-api/handlers"
	"github.com/kepox/search-api/index"
	"github.com/kepox/search-api/search"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the apps are built from. Zero values are
// replaced with safe defaults.
type Deps struct {
	Logger *zap.Logger
	// Source feeds the dataset proxy
	Source dataset.Source
	// Searcher feeds the index proxy; nil when the index is not configured
	Searcher index.Searcher
	History  search.Recorder
	// LimiterStorage holds rate limiter counters; nil uses the limiter's own memory store
	LimiterStorage fiber.Storage
	// AccessLog receives one line per request; nil disables access logging
	AccessLog io.Writer
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.History == nil {
		d.History = search.Nop{}
	}
	return d
}

// NewDatasetApp builds the dataset proxy: GET / and GET /search over the
// static cars and countries files.
func NewDatasetApp(cfg *config.Config, deps Deps) *fiber.App {
	deps = deps.withDefaults()
	if deps.Source == nil {
		deps.Source = dataset.NewDefaultFetcher(cfg.UpstreamTimeout)
	}

	app := newApp(cfg, deps, "kepox-dataset-proxy", false)

	datasetHandler := h.NewDatasetHandler(deps.Source, deps.History, deps.Logger)
	app.Get("/", datasetHandler.HandleRoot)
	app.Get("/search", datasetHandler.HandleSearch)
	registerHistory(app, deps)

	return app
}

// NewIndexApp builds the index proxy: GET /health and GET /search against
// the Elasticsearch cars index, with CORS on every response.
func NewIndexApp(cfg *config.Config, deps Deps) *fiber.App {
	deps = deps.withDefaults()

	app := newApp(cfg, deps, "kepox-index-proxy", true)

	indexHandler := h.NewIndexHandler(cfg, deps.Searcher, deps.History, deps.Logger)
	app.Get("/health", h.HandleHealth)
	app.Get("/search", indexHandler.HandleSearch)
	registerHistory(app, deps)

	return app
}

func newApp(cfg *config.Config, deps Deps, name string, withCORS bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		ErrorHandler:          h.JSONErrorHandler(withCORS),
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
	})

	// CORS runs first so rejected and failed requests carry the headers too
	if withCORS {
		app.Use(h.CORS(cfg.CORSOrigin))
	}

	app.Use(recover.New())

	if deps.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: deps.AccessLog}))
	}

	if cfg.RateLimitMax > 0 {
		app.Use(h.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitExp, deps.LimiterStorage))
	}

	return app
}

func registerHistory(app *fiber.App, deps Deps) {
	historyHandler := h.NewHistoryHandler(deps.History, deps.Logger)
	searches := app.Group("/searches")
	searches.Get("/top", historyHandler.HandleTopSearches)
	searches.Get("/recent", historyHandler.HandleRecentSearches)
}

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests before returning.
func Serve(ctx context.Context, app *fiber.App, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("app", app.Config().AppName), zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
