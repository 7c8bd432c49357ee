package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kepox/search-api/config"
	"github.com/kepox/search-api/index"
	"github.com/kepox/search-api/search"
	"go.uber.org/zap"
)

// IndexHandler proxies searches to the Elasticsearch cars index
type IndexHandler struct {
	cfg      *config.Config
	searcher index.Searcher
	history  search.Recorder
	logger   *zap.Logger
}

func NewIndexHandler(cfg *config.Config, searcher index.Searcher, history search.Recorder, logger *zap.Logger) *IndexHandler {
	return &IndexHandler{cfg: cfg, searcher: searcher, history: history, logger: logger}
}

// extractSearchParams reads the optional search inputs from the query string
func extractSearchParams(c *fiber.Ctx) index.Params {
	return index.Params{
		Q:       c.Query("q"),
		Country: c.Query("country"),
		City:    c.Query("city"),
		Make:    c.Query("make"),
		Model:   c.Query("model"),
		Year:    c.Query("year"),
		Budget:  c.Query("budget"),
	}
}

func (h *IndexHandler) HandleSearch(c *fiber.Ctx) error {
	if !h.cfg.IndexConfigured() || h.searcher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"ok":    false,
			"error": "Search index is not configured (ES_URL / ES_API_KEY)",
		})
	}

	params := extractSearchParams(c)
	result, err := h.searcher.Search(c.UserContext(), index.BuildQuery(params))
	if err != nil {
		var upstream *index.UpstreamError
		if errors.As(err, &upstream) {
			h.logger.Error("Index search failed",
				zap.Int("status", upstream.Status),
				zap.Any("payload", upstream.Payload))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"ok":    false,
				"error": upstream.Payload,
			})
		}
		h.logger.Error("Index search error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}

	recordSearch(c, h.history, h.logger, search.Entry{
		Variant:     search.VariantIndex,
		QueryString: params.Q,
		Country:     params.Country,
		ResultCount: int(result.Total),
	})

	return c.JSON(fiber.Map{
		"ok":    true,
		"total": result.Total,
		"hits":  result.Hits,
	})
}
