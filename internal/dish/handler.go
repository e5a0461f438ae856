package dish

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

var dishSchema = validate.New(
	validate.Rule{Field: "name", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "price", Kind: validate.Float, Required: true, Min: validate.Num(0)},
	validate.Rule{Field: "estimatedCount", Kind: validate.Int, Default: int64(0), Min: validate.Num(0)},
	validate.Rule{Field: "ingredients", Kind: validate.Array, Required: true, MinItems: 1, Elem: []validate.Rule{
		{Field: "id", Kind: validate.Int, Required: true, Min: validate.Num(1)},
		{Field: "quantity", Kind: validate.Float, Required: true, Min: validate.Num(0)},
	}},
)

func ingredientIDs(items []validate.Value) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Uint("id"))
	}
	return ids
}

// runChecks evaluates every dish constraint; excludeID skips the dish
// itself on the name check during updates.
func runChecks(db *gorm.DB, ownerID uint, nameKey string, ids []uint, excludeID uint) *check.List {
	checks := check.New()

	nameTaken, err := store.ExistsWhere[models.Dish](db, "owner_id = ? AND name_key = ? AND id != ?", ownerID, nameKey, excludeID)
	checks.Check(!nameTaken, err, "Dish already exists")

	checks.That(check.UniqueIDs(ids), "There are duplicate ingredients")

	unique := check.Dedupe(ids)
	count, err := store.CountWhere[models.Ingredient](db, "owner_id = ? AND id IN ?", ownerID, unique)
	checks.Check(count == int64(len(unique)), err, "Invalid Ingredients Id")

	return checks
}

func CreateDishHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, dishSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID
		items := body.List("ingredients")
		ids := ingredientIDs(items)
		key := models.NameKey(body.Str("name"))

		checks := runChecks(db, ownerID, key, ids, 0)
		if err := checks.Err(); err != nil {
			return api.Internal(c, "create dish", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		d := models.Dish{
			Name:           strings.TrimSpace(body.Str("name")),
			NameKey:        key,
			Price:          body.Float("price"),
			EstimatedCount: body.Int("estimatedCount"),
			OwnerID:        ownerID,
		}
		for _, item := range items {
			d.Ingredients = append(d.Ingredients, models.DishIngredient{
				IngredientID: item.Uint("id"),
				Quantity:     item.Float("quantity"),
			})
		}

		if err := db.Create(&d).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Dish already exists")
			}
			return api.Internal(c, "create dish", err)
		}

		audit.Record(db, c, "dish", d.ID, models.AuditActionCreate, nil, d)
		metrics.RecordEntityOp("dish", "create")
		return api.Created(c, d)
	}
}

func ListDishesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		dishes, next, err := store.Page[models.Dish](db, store.Owner(*p.OwnerID), page.Cursor, page.Take, "Ingredients")
		if err != nil {
			return api.Internal(c, "list dishes", err)
		}

		return api.Page(c, "dishes", dishes, next)
	}
}

func GetDishHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		d, err := store.First[models.Dish](db, store.Owner(*p.OwnerID), id, "Ingredients")
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Dish not found")
			}
			return api.Internal(c, "get dish", err)
		}

		return api.OK(c, d)
	}
}

func UpdateDishHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, dishSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID

		d, err := store.First[models.Dish](db, store.Owner(ownerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Dish not found")
			}
			return api.Internal(c, "update dish", err)
		}

		items := body.List("ingredients")
		ids := ingredientIDs(items)
		key := models.NameKey(body.Str("name"))

		checks := runChecks(db, ownerID, key, ids, id)
		if err := checks.Err(); err != nil {
			return api.Internal(c, "update dish", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		before := *d
		d.Name = strings.TrimSpace(body.Str("name"))
		d.NameKey = key
		d.Price = body.Float("price")
		d.EstimatedCount = body.Int("estimatedCount")

		newJoins := make([]models.DishIngredient, 0, len(items))
		for _, item := range items {
			newJoins = append(newJoins, models.DishIngredient{
				DishID:       d.ID,
				IngredientID: item.Uint("id"),
				Quantity:     item.Float("quantity"),
			})
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(d).Error; err != nil {
				return err
			}
			if err := tx.Where("dish_id = ?", d.ID).Delete(&models.DishIngredient{}).Error; err != nil {
				return err
			}
			return tx.Create(&newJoins).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Dish already exists")
			}
			return api.Internal(c, "update dish", err)
		}

		d.Ingredients = newJoins
		audit.Record(db, c, "dish", d.ID, models.AuditActionUpdate, before, d)
		metrics.RecordEntityOp("dish", "update")
		return api.OK(c, d)
	}
}

func DeleteDishHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := store.Delete[models.Dish](tx, store.Owner(*p.OwnerID), id); err != nil {
				return err
			}
			return tx.Where("dish_id = ?", id).Delete(&models.DishIngredient{}).Error
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Dish not found")
			}
			return api.Internal(c, "delete dish", err)
		}

		audit.Record(db, c, "dish", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("dish", "delete")
		return api.Deleted(c)
	}
}
