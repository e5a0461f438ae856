package audit

import (
	"encoding/json"
	"fmt"

	"franchise-backend/internal/auth"
	"franchise-backend/internal/logger"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LogOptions struct {
	OwnerID     *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(db *gorm.DB, opts LogOptions) error {
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		OwnerID:     opts.OwnerID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := db.Create(&log).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Record writes an audit entry for a finished mutation using the request's
// principal. Best effort: a failed audit write is logged, never surfaced.
func Record(db *gorm.DB, c *fiber.Ctx, entityType string, entityID uint, action models.AuditAction, before, after any) {
	p := auth.FromCtx(c)
	if p == nil {
		return
	}

	var ownerID *uint
	if p.OwnerID != nil {
		ownerID = p.OwnerID
	}

	err := WriteLog(db, LogOptions{
		OwnerID:     ownerID,
		UserID:      p.UserID,
		UserName:    p.Name,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: fmt.Sprintf("%s %s #%d", action, entityType, entityID),
		Before:      before,
		After:       after,
	})
	if err != nil {
		logger.FromCtx(c).Warn("audit log write failed",
			zap.String("entity", entityType),
			zap.Uint("id", entityID),
			zap.Error(err))
	}
}
