package handlers

import "github.com/gofiber/fiber/v2"

// HandleHealth reports that the index proxy is up. It does not contact the index.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
