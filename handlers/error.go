package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// JSONErrorHandler renders errors that escape a handler as JSON. The index
// proxy includes "ok":false in its error bodies.
func JSONErrorHandler(withOK bool) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		// Status code defaults to 500
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		body := fiber.Map{"error": err.Error()}
		if withOK {
			body["ok"] = false
		}
		return ctx.Status(code).JSON(body)
	}
}
