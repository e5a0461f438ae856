package ingredient

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

var ingredientSchema = validate.New(
	validate.Rule{Field: "name", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "unit", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 20},
	validate.Rule{Field: "price", Kind: validate.Float, Required: true, Min: validate.Num(0)},
)

func CreateIngredientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, ingredientSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID
		key := models.NameKey(body.Str("name"))

		checks := check.New()
		taken, err := store.ExistsWhere[models.Ingredient](db, "owner_id = ? AND name_key = ?", ownerID, key)
		checks.Check(!taken, err, "Ingredient already exists")
		if err := checks.Err(); err != nil {
			return api.Internal(c, "create ingredient", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		ing := models.Ingredient{
			Name:    strings.TrimSpace(body.Str("name")),
			NameKey: key,
			Unit:    strings.TrimSpace(body.Str("unit")),
			Price:   body.Float("price"),
			OwnerID: ownerID,
		}
		if err := db.Create(&ing).Error; err != nil {
			// two racing creates can both pass the pre-check; the unique
			// index on (owner_id, name_key) is the real guard
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Ingredient already exists")
			}
			return api.Internal(c, "create ingredient", err)
		}

		audit.Record(db, c, "ingredient", ing.ID, models.AuditActionCreate, nil, ing)
		metrics.RecordEntityOp("ingredient", "create")
		return api.Created(c, ing)
	}
}

func ListIngredientsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ingredients, next, err := store.Page[models.Ingredient](db, store.Owner(*p.OwnerID), page.Cursor, page.Take)
		if err != nil {
			return api.Internal(c, "list ingredients", err)
		}

		return api.Page(c, "ingredients", ingredients, next)
	}
}

func GetIngredientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		ing, err := store.First[models.Ingredient](db, store.Owner(*p.OwnerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Ingredient not found")
			}
			return api.Internal(c, "get ingredient", err)
		}

		return api.OK(c, ing)
	}
}

func UpdateIngredientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, ingredientSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID

		ing, err := store.First[models.Ingredient](db, store.Owner(ownerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Ingredient not found")
			}
			return api.Internal(c, "update ingredient", err)
		}

		key := models.NameKey(body.Str("name"))

		checks := check.New()
		taken, err := store.ExistsWhere[models.Ingredient](db, "owner_id = ? AND name_key = ? AND id != ?", ownerID, key, id)
		checks.Check(!taken, err, "Ingredient already exists")
		if err := checks.Err(); err != nil {
			return api.Internal(c, "update ingredient", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		before := *ing
		ing.Name = strings.TrimSpace(body.Str("name"))
		ing.NameKey = key
		ing.Unit = strings.TrimSpace(body.Str("unit"))
		ing.Price = body.Float("price")

		if err := db.Save(ing).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Ingredient already exists")
			}
			return api.Internal(c, "update ingredient", err)
		}

		audit.Record(db, c, "ingredient", ing.ID, models.AuditActionUpdate, before, ing)
		metrics.RecordEntityOp("ingredient", "update")
		return api.OK(c, ing)
	}
}

func DeleteIngredientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		if err := store.Delete[models.Ingredient](db, store.Owner(*p.OwnerID), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Ingredient not found")
			}
			return api.Internal(c, "delete ingredient", err)
		}

		audit.Record(db, c, "ingredient", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("ingredient", "delete")
		return api.Deleted(c)
	}
}
