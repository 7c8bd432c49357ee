package handlers

import "github.com/gofiber/fiber/v2"

// CORS sets the cross-origin headers on every response and answers
// preflight requests with 204
func CORS(origin string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET,OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type,Authorization")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}
