package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with a correlation identifier, reusing the
// caller's when one is supplied. The identifier is echoed in the response
// and available to handlers via c.Locals("request_id").
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Locals("request_id", id)
		c.Set(requestIDHeader, id)

		return c.Next()
	}
}
