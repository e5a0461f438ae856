package audit

import (
	"franchise-backend/internal/api"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/models"
	"franchise-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListAuditLogsHandler pages through the owner's audit trail.
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		logs, next, err := store.Page[models.AuditLog](db, store.Owner(*p.OwnerID), page.Cursor, page.Take)
		if err != nil {
			return api.Internal(c, "list audit logs", err)
		}

		return api.Page(c, "auditLogs", logs, next)
	}
}
