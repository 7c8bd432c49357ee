package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// limitParam reads ?limit=, clamped to [1, maxHistoryLimit]
func limitParam(ctx *fiber.Ctx) int {
	limit, err := strconv.Atoi(ctx.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultHistoryLimit
	}
	return min(limit, maxHistoryLimit)
}
