// Package inventory manages the stock of an outlet. Managers maintain the
// ingredient entries of their own outlet's inventory; owners can read any
// inventory in their tenant.
package inventory

import (
	"errors"

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

var addIngredientSchema = validate.New(
	validate.Rule{Field: "ingredientId", Kind: validate.Int, Required: true, Min: validate.Num(1)},
	validate.Rule{Field: "quantity", Kind: validate.Float, Required: true, Min: validate.Num(0)},
)

var updateQuantitySchema = validate.New(
	validate.Rule{Field: "quantity", Kind: validate.Float, Required: true, Min: validate.Num(0)},
)

func outletInventory(db *gorm.DB, outletID uint) (*models.Inventory, error) {
	var inv models.Inventory
	err := db.Where("outlet_id = ?", outletID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// AddIngredientHandler adds an ingredient entry to the manager's outlet
// inventory. An ingredient can appear at most once per inventory.
func AddIngredientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, addIngredientSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		scope, err := store.ResolveManager(db, *p.ManagerID)
		if err != nil {
			return api.Internal(c, "resolve manager scope", err)
		}

		inv, err := outletInventory(db, scope.OutletID)
		if err != nil {
			return api.Internal(c, "load outlet inventory", err)
		}

		ingredientID := body.Uint("ingredientId")

		checks := check.New()
		ingredientOK, err := store.Exists[models.Ingredient](db, store.Owner(scope.OwnerID), ingredientID)
		checks.Check(ingredientOK, err, "Invalid Ingredients Id")

		present, err := store.ExistsWhere[models.InventoryIngredient](db, "inventory_id = ? AND ingredient_id = ?", inv.ID, ingredientID)
		checks.Check(!present, err, "Ingredient already in inventory")

		if err := checks.Err(); err != nil {
			return api.Internal(c, "add inventory ingredient", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		entry := models.InventoryIngredient{
			InventoryID:  inv.ID,
			IngredientID: ingredientID,
			Quantity:     body.Float("quantity"),
		}

		if err := db.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Ingredient already in inventory")
			}
			return api.Internal(c, "add inventory ingredient", err)
		}

		audit.Record(db, c, "inventoryIngredient", entry.ID, models.AuditActionCreate, nil, entry)
		metrics.RecordEntityOp("inventoryIngredient", "create")
		return api.Created(c, entry)
	}
}

// GetOwnInventoryHandler returns the manager's outlet inventory with all
// ingredient entries.
func GetOwnInventoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.FromCtx(c)
		scope, err := store.ResolveManager(db, *p.ManagerID)
		if err != nil {
			return api.Internal(c, "resolve manager scope", err)
		}

		var inv models.Inventory
		err = db.Preload("Ingredients").Where("outlet_id = ?", scope.OutletID).First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return api.NotFound(c, "Inventory not found")
		}
		if err != nil {
			return api.Internal(c, "get inventory", err)
		}

		return api.OK(c, inv)
	}
}

// UpdateIngredientHandler sets the quantity of one entry in the manager's
// outlet inventory. The path id is the entry id.
func UpdateIngredientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, updateQuantitySchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		scope, err := store.ResolveManager(db, *p.ManagerID)
		if err != nil {
			return api.Internal(c, "resolve manager scope", err)
		}

		inv, err := outletInventory(db, scope.OutletID)
		if err != nil {
			return api.Internal(c, "load outlet inventory", err)
		}

		var entry models.InventoryIngredient
		err = db.Where("id = ? AND inventory_id = ?", id, inv.ID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return api.NotFound(c, "Inventory ingredient not found")
		}
		if err != nil {
			return api.Internal(c, "update inventory ingredient", err)
		}

		before := entry
		entry.Quantity = body.Float("quantity")

		if err := db.Save(&entry).Error; err != nil {
			return api.Internal(c, "update inventory ingredient", err)
		}

		audit.Record(db, c, "inventoryIngredient", entry.ID, models.AuditActionUpdate, before, entry)
		metrics.RecordEntityOp("inventoryIngredient", "update")
		return api.OK(c, entry)
	}
}

// RemoveIngredientHandler deletes one entry from the manager's outlet
// inventory.
func RemoveIngredientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		scope, err := store.ResolveManager(db, *p.ManagerID)
		if err != nil {
			return api.Internal(c, "resolve manager scope", err)
		}

		inv, err := outletInventory(db, scope.OutletID)
		if err != nil {
			return api.Internal(c, "load outlet inventory", err)
		}

		res := db.Where("id = ? AND inventory_id = ?", id, inv.ID).Delete(&models.InventoryIngredient{})
		if res.Error != nil {
			return api.Internal(c, "remove inventory ingredient", res.Error)
		}
		if res.RowsAffected == 0 {
			return api.NotFound(c, "Inventory ingredient not found")
		}

		audit.Record(db, c, "inventoryIngredient", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("inventoryIngredient", "delete")
		return api.Deleted(c)
	}
}

// GetOutletInventoryHandler returns the inventory of one of the owner's
// outlets. The path id is the outlet id.
func GetOutletInventoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		outletID, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		if _, err := store.First[models.Outlet](db, store.Owner(*p.OwnerID), outletID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Outlet not found")
			}
			return api.Internal(c, "get inventory", err)
		}

		var inv models.Inventory
		err := db.Preload("Ingredients").Where("outlet_id = ?", outletID).First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return api.NotFound(c, "Inventory not found")
		}
		if err != nil {
			return api.Internal(c, "get inventory", err)
		}

		return api.OK(c, inv)
	}
}
