package middleware

import (
	"franchise-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// RequestID assigns every request an id (honoring one sent by the client)
// and stashes a request-scoped logger carrying it in locals.
func RequestID(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(HeaderRequestID, id)
		c.Locals(logger.CtxLoggerKey, base.With(zap.String("request_id", id)))
		return c.Next()
	}
}
