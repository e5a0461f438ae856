package menu

import (
	"errors"
	"strings"

	"franchise-backend/internal/api"
	"franchise-backend/internal/audit"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/check"
	"franchise-backend/internal/metrics"
	"franchise-backend/internal/models"
	"franchise-backend/internal/store"
	"franchise-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var menuSchema = validate.New(
	validate.Rule{Field: "name", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "dishes", Kind: validate.Array, Required: true, MinItems: 1, ElemKind: validate.Int, Min: validate.Num(1)},
)

func runChecks(db *gorm.DB, ownerID uint, nameKey string, dishIDs []uint, excludeID uint) *check.List {
	checks := check.New()

	nameTaken, err := store.ExistsWhere[models.Menu](db, "owner_id = ? AND name_key = ? AND id != ?", ownerID, nameKey, excludeID)
	checks.Check(!nameTaken, err, "Menu already exists")

	checks.That(check.UniqueIDs(dishIDs), "There are duplicate dishes")

	ids := check.Dedupe(dishIDs)
	count, err := store.CountWhere[models.Dish](db, "owner_id = ? AND id IN ?", ownerID, ids)
	checks.Check(count == int64(len(ids)), err, "Invalid Dishes Id")

	return checks
}

func CreateMenuHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, menuSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID
		dishIDs := body.Uints("dishes")
		key := models.NameKey(body.Str("name"))

		checks := runChecks(db, ownerID, key, dishIDs, 0)
		if err := checks.Err(); err != nil {
			return api.Internal(c, "create menu", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		m := models.Menu{
			Name:    strings.TrimSpace(body.Str("name")),
			NameKey: key,
			OwnerID: ownerID,
		}
		for _, id := range dishIDs {
			m.Dishes = append(m.Dishes, models.MenuDish{DishID: id})
		}

		if err := db.Create(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Menu already exists")
			}
			return api.Internal(c, "create menu", err)
		}

		audit.Record(db, c, "menu", m.ID, models.AuditActionCreate, nil, m)
		metrics.RecordEntityOp("menu", "create")
		return api.Created(c, m)
	}
}

func ListMenusHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		menus, next, err := store.Page[models.Menu](db, store.Owner(*p.OwnerID), page.Cursor, page.Take, "Dishes")
		if err != nil {
			return api.Internal(c, "list menus", err)
		}

		return api.Page(c, "menus", menus, next)
	}
}

func GetMenuHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		m, err := store.First[models.Menu](db, store.Owner(*p.OwnerID), id, "Dishes")
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Menu not found")
			}
			return api.Internal(c, "get menu", err)
		}

		return api.OK(c, m)
	}
}

func UpdateMenuHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, menuSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID

		m, err := store.First[models.Menu](db, store.Owner(ownerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Menu not found")
			}
			return api.Internal(c, "update menu", err)
		}

		dishIDs := body.Uints("dishes")
		key := models.NameKey(body.Str("name"))

		checks := runChecks(db, ownerID, key, dishIDs, id)
		if err := checks.Err(); err != nil {
			return api.Internal(c, "update menu", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		before := *m
		m.Name = strings.TrimSpace(body.Str("name"))
		m.NameKey = key

		newJoins := make([]models.MenuDish, 0, len(dishIDs))
		for _, dishID := range dishIDs {
			newJoins = append(newJoins, models.MenuDish{MenuID: m.ID, DishID: dishID})
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(m).Error; err != nil {
				return err
			}
			if err := tx.Where("menu_id = ?", m.ID).Delete(&models.MenuDish{}).Error; err != nil {
				return err
			}
			return tx.Create(&newJoins).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Menu already exists")
			}
			return api.Internal(c, "update menu", err)
		}

		m.Dishes = newJoins
		audit.Record(db, c, "menu", m.ID, models.AuditActionUpdate, before, m)
		metrics.RecordEntityOp("menu", "update")
		return api.OK(c, m)
	}
}

func DeleteMenuHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := store.Delete[models.Menu](tx, store.Owner(*p.OwnerID), id); err != nil {
				return err
			}
			return tx.Where("menu_id = ?", id).Delete(&models.MenuDish{}).Error
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Menu not found")
			}
			return api.Internal(c, "delete menu", err)
		}

		audit.Record(db, c, "menu", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("menu", "delete")
		return api.Deleted(c)
	}
}
