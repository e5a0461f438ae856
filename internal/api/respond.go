package api

import (
	"franchise-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Envelope is the uniform response body. Status is "success" for 2xx,
// "fail" for client errors (400/403/404) and "error" for server faults.
type Envelope struct {
	Status  string   `json:"status"`
	Data    any      `json:"data,omitempty"`
	Message []string `json:"message,omitempty"`
}

func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Status: "success", Data: data})
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Status: "success", Data: data})
}

// Deleted reports a successful delete; the contract sends no payload back.
func Deleted(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Status: "success"})
}

// Fail reports validation or business-rule violations. All collected
// messages go out together.
func Fail(c *fiber.Ctx, msgs ...string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{Status: "fail", Message: msgs})
}

func NotFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(Envelope{Status: "fail", Message: []string{msg}})
}

func Forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(Envelope{Status: "fail", Message: []string{msg}})
}

// Internal logs the underlying error and answers with a generic message;
// details never leak to the client.
func Internal(c *fiber.Ctx, op string, err error) error {
	logger.FromCtx(c).Error("unexpected error", zap.String("op", op), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(Envelope{
		Status:  "error",
		Message: []string{"Something went wrong"},
	})
}
