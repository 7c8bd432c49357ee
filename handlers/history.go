package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kepox/search-api/search"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// HistoryHandler exposes the recorded searches
type HistoryHandler struct {
	history search.Recorder
	logger  *zap.Logger
}

func NewHistoryHandler(history search.Recorder, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// HandleTopSearches returns the most frequent queries
func (h *HistoryHandler) HandleTopSearches(c *fiber.Ctx) error {
	if !h.history.Enabled() {
		return fiber.NewError(fiber.StatusNotFound, "Search history is disabled")
	}
	top, err := h.history.Top(c.UserContext(), limitParam(c))
	if err != nil {
		h.logger.Error("Failed to load top searches", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load search history")
	}
	return c.JSON(fiber.Map{"searches": top})
}

// HandleRecentSearches returns the latest searches, newest first
func (h *HistoryHandler) HandleRecentSearches(c *fiber.Ctx) error {
	if !h.history.Enabled() {
		return fiber.NewError(fiber.StatusNotFound, "Search history is disabled")
	}
	recent, err := h.history.Recent(c.UserContext(), limitParam(c))
	if err != nil {
		h.logger.Error("Failed to load recent searches", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load search history")
	}
	return c.JSON(fiber.Map{"searches": recent})
}

// recordSearch saves a search entry. Failures are logged and never reach the client.
func recordSearch(c *fiber.Ctx, history search.Recorder, logger *zap.Logger, e search.Entry) {
	if history == nil || !history.Enabled() {
		return
	}
	if err := history.Save(c.UserContext(), e); err != nil {
		logger.Warn("Failed to record search", zap.String("query", e.QueryString), zap.Error(err))
	}
}
