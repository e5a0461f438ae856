package order

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

var createOrderSchema = validate.New(
	validate.Rule{Field: "supplierId", Kind: validate.Int, Required: true, Min: validate.Num(1)},
	validate.Rule{Field: "ingredients", Kind: validate.Array, Required: true, MinItems: 1, Elem: []validate.Rule{
		{Field: "id", Kind: validate.Int, Required: true, Min: validate.Num(1)},
		{Field: "quantity", Kind: validate.Float, Required: true, Min: validate.Num(0)},
	}},
)

// CreateSupplierOrderHandler places an order with a supplier. Every line
// item must reference an ingredient that belongs to the owner and is linked
// to that supplier; the total is priced at order time.
func CreateSupplierOrderHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, createOrderSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID
		supplierID := body.Uint("supplierId")
		items := body.List("ingredients")

		ids := make([]uint, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.Uint("id"))
		}
		unique := check.Dedupe(ids)

		checks := check.New()

		supplierOK, err := store.Exists[models.Supplier](db, store.Owner(ownerID), supplierID)
		checks.Check(supplierOK, err, "Invalid Supplier Id")

		checks.That(check.UniqueIDs(ids), "There are duplicate ingredients")

		// must belong to the owner and be fulfillable by the supplier; this
		// check runs even when the supplier id itself was invalid
		var linked int64
		err = db.Model(&models.SupplierIngredient{}).
			Joins("JOIN ingredients ON ingredients.id = supplier_ingredients.ingredient_id").
			Where("supplier_ingredients.supplier_id = ? AND ingredients.owner_id = ? AND supplier_ingredients.ingredient_id IN ?",
				supplierID, ownerID, unique).
			Count(&linked).Error
		checks.Check(linked == int64(len(unique)), err, "Invalid Ingredients Id")

		if err := checks.Err(); err != nil {
			return api.Internal(c, "create supplier order", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		var ingredients []models.Ingredient
		if err := db.Where("owner_id = ? AND id IN ?", ownerID, unique).Find(&ingredients).Error; err != nil {
			return api.Internal(c, "create supplier order", err)
		}
		priceByID := make(map[uint]float64, len(ingredients))
		for _, ing := range ingredients {
			priceByID[ing.ID] = ing.Price
		}

		o := models.SupplierOrder{
			SupplierID: supplierID,
			OwnerID:    ownerID,
		}
		for _, item := range items {
			id := item.Uint("id")
			qty := item.Float("quantity")
			o.TotalValue += priceByID[id] * qty
			o.Ingredients = append(o.Ingredients, models.SupplierOrderIngredient{
				IngredientID: id,
				Quantity:     qty,
				UnitPrice:    priceByID[id],
			})
		}

		if err := db.Create(&o).Error; err != nil {
			return api.Internal(c, "create supplier order", err)
		}

		audit.Record(db, c, "supplierOrder", o.ID, models.AuditActionCreate, nil, o)
		metrics.RecordEntityOp("supplierOrder", "create")
		return api.Created(c, o)
	}
}

func ListSupplierOrdersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		orders, next, err := store.Page[models.SupplierOrder](db, store.Owner(*p.OwnerID), page.Cursor, page.Take, "Ingredients")
		if err != nil {
			return api.Internal(c, "list supplier orders", err)
		}

		return api.Page(c, "supplierOrders", orders, next)
	}
}

func GetSupplierOrderHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		o, err := store.First[models.SupplierOrder](db, store.Owner(*p.OwnerID), id, "Ingredients")
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Supplier order not found")
			}
			return api.Internal(c, "get supplier order", err)
		}

		return api.OK(c, o)
	}
}

func DeleteSupplierOrderHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := store.Delete[models.SupplierOrder](tx, store.Owner(*p.OwnerID), id); err != nil {
				return err
			}
			return tx.Where("supplier_order_id = ?", id).Delete(&models.SupplierOrderIngredient{}).Error
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Supplier order not found")
			}
			return api.Internal(c, "delete supplier order", err)
		}

		audit.Record(db, c, "supplierOrder", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("supplierOrder", "delete")
		return api.Deleted(c)
	}
}
