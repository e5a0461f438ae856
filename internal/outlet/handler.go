package outlet

import (
	"errors"
	"strings"

	"franchise-backend/internal/api"
	"franchise-backend/internal/audit"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/metrics"
	"franchise-backend/internal/models"
	"franchise-backend/internal/store"
	"franchise-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var createOutletSchema = validate.New(
	validate.Rule{Field: "location", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 255},
)

var updateOutletSchema = validate.New(
	validate.Rule{Field: "location", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 255},
)

// CreateOutletHandler creates an outlet together with its inventory (1:1).
func CreateOutletHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, createOutletSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		outlet := models.Outlet{
			Location: strings.TrimSpace(body.Str("location")),
			OwnerID:  *p.OwnerID,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&outlet).Error; err != nil {
				return err
			}
			inventory := models.Inventory{OutletID: outlet.ID}
			if err := tx.Create(&inventory).Error; err != nil {
				return err
			}
			outlet.Inventory = &inventory
			return nil
		})
		if err != nil {
			return api.Internal(c, "create outlet", err)
		}

		audit.Record(db, c, "outlet", outlet.ID, models.AuditActionCreate, nil, outlet)
		metrics.RecordEntityOp("outlet", "create")
		return api.Created(c, outlet)
	}
}

func ListOutletsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		outlets, next, err := store.Page[models.Outlet](db, store.Owner(*p.OwnerID), page.Cursor, page.Take, "Inventory")
		if err != nil {
			return api.Internal(c, "list outlets", err)
		}

		return api.Page(c, "outlets", outlets, next)
	}
}

func GetOutletHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		outlet, err := store.First[models.Outlet](db, store.Owner(*p.OwnerID), id, "Inventory.Ingredients")
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Outlet not found")
			}
			return api.Internal(c, "get outlet", err)
		}

		return api.OK(c, outlet)
	}
}

func UpdateOutletHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, updateOutletSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		outlet, err := store.First[models.Outlet](db, store.Owner(*p.OwnerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Outlet not found")
			}
			return api.Internal(c, "update outlet", err)
		}

		before := *outlet
		outlet.Location = strings.TrimSpace(body.Str("location"))

		if err := db.Save(outlet).Error; err != nil {
			return api.Internal(c, "update outlet", err)
		}

		audit.Record(db, c, "outlet", outlet.ID, models.AuditActionUpdate, before, outlet)
		metrics.RecordEntityOp("outlet", "update")
		return api.OK(c, outlet)
	}
}

func DeleteOutletHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		if err := store.Delete[models.Outlet](db, store.Owner(*p.OwnerID), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Outlet not found")
			}
			return api.Internal(c, "delete outlet", err)
		}

		audit.Record(db, c, "outlet", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("outlet", "delete")
		return api.Deleted(c)
	}
}
