package middleware

import (
	"time"

	"franchise-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccessLog writes one structured line per request.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		logger.FromCtx(c).Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}
