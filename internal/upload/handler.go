package upload

import (
	"time"

	"franchise-backend/internal/api"

	"github.com/gofiber/fiber/v2"
)

const urlTTL = 15 * time.Minute

// SignURLHandler returns a time-limited upload URL for the given filename.
// Pure pass-through to the signer.
func SignURLHandler(signer Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filename := c.Query("filename")
		if filename == "" {
			return api.Fail(c, "filename is required")
		}

		url, err := signer.SignedUploadURL(filename, urlTTL)
		if err != nil {
			return api.Internal(c, "sign upload url", err)
		}

		return api.OK(c, fiber.Map{"uploadUrl": url})
	}
}
