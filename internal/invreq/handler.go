// Package invreq handles inventory restock requests raised by outlet
// managers and reviewed by the owner.
package invreq

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

var requestSchema = validate.New(
	validate.Rule{Field: "ingredients", Kind: validate.Array, Required: true, MinItems: 1, Elem: []validate.Rule{
		{Field: "id", Kind: validate.Int, Required: true, Min: validate.Num(1)},
		{Field: "quantity", Kind: validate.Float, Required: true, Min: validate.Num(0)},
	}},
)

var statusSchema = validate.New(
	validate.Rule{Field: "status", Kind: validate.String, Required: true, OneOf: models.RequestStatuses},
)

func itemIDs(items []validate.Value) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Uint("id"))
	}
	return ids
}

func runChecks(db *gorm.DB, ownerID uint, ids []uint) *check.List {
	checks := check.New()
	checks.That(check.UniqueIDs(ids), "There are duplicate ingredients")
	unique := check.Dedupe(ids)
	count, err := store.CountWhere[models.Ingredient](db, "owner_id = ? AND id IN ?", ownerID, unique)
	checks.Check(count == int64(len(unique)), err, "Invalid Ingredients Id")
	return checks
}

// CreateRequestHandler lets a manager raise a restock request against the
// owner's ingredient catalog. The owner scope is derived from the
// manager's outlet.
func CreateRequestHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, requestSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		scope, err := store.ResolveManager(db, *p.ManagerID)
		if err != nil {
			return api.Internal(c, "resolve manager scope", err)
		}

		items := body.List("ingredients")
		ids := itemIDs(items)

		checks := runChecks(db, scope.OwnerID, ids)
		if err := checks.Err(); err != nil {
			return api.Internal(c, "create inventory request", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		req := models.InventoryRequest{
			Status:    models.RequestPending,
			OwnerID:   scope.OwnerID,
			ManagerID: scope.ManagerID,
		}
		for _, item := range items {
			req.Ingredients = append(req.Ingredients, models.RequestIngredient{
				IngredientID: item.Uint("id"),
				Quantity:     item.Float("quantity"),
			})
		}

		if err := db.Create(&req).Error; err != nil {
			return api.Internal(c, "create inventory request", err)
		}

		audit.Record(db, c, "inventoryRequest", req.ID, models.AuditActionCreate, nil, req)
		metrics.RecordEntityOp("inventoryRequest", "create")
		return api.Created(c, req)
	}
}

// ListRequestsHandler pages requests for the caller: managers see their
// own, owners see all requests in their tenant.
func ListRequestsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		sc := callerScope(p)

		requests, next, err := store.Page[models.InventoryRequest](db, sc, page.Cursor, page.Take, "Ingredients")
		if err != nil {
			return api.Internal(c, "list inventory requests", err)
		}

		return api.Page(c, "inventoryRequests", requests, next)
	}
}

func GetRequestHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		req, err := store.First[models.InventoryRequest](db, callerScope(p), id, "Ingredients")
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Inventory request not found")
			}
			return api.Internal(c, "get inventory request", err)
		}

		return api.OK(c, req)
	}
}

// UpdateRequestHandler replaces the line items of a manager's own pending
// or reviewed request; there is no transition restriction on status.
func UpdateRequestHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, requestSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		req, err := store.First[models.InventoryRequest](db, store.Manager(*p.ManagerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Inventory request not found")
			}
			return api.Internal(c, "update inventory request", err)
		}

		items := body.List("ingredients")
		ids := itemIDs(items)

		checks := runChecks(db, req.OwnerID, ids)
		if err := checks.Err(); err != nil {
			return api.Internal(c, "update inventory request", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		before := *req
		newItems := make([]models.RequestIngredient, 0, len(items))
		for _, item := range items {
			newItems = append(newItems, models.RequestIngredient{
				InventoryRequestID: req.ID,
				IngredientID:       item.Uint("id"),
				Quantity:           item.Float("quantity"),
			})
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("inventory_request_id = ?", req.ID).Delete(&models.RequestIngredient{}).Error; err != nil {
				return err
			}
			return tx.Create(&newItems).Error
		})
		if err != nil {
			return api.Internal(c, "update inventory request", err)
		}

		req.Ingredients = newItems
		audit.Record(db, c, "inventoryRequest", req.ID, models.AuditActionUpdate, before, req)
		metrics.RecordEntityOp("inventoryRequest", "update")
		return api.OK(c, req)
	}
}

// UpdateRequestStatusHandler lets the owner set any valid status value.
func UpdateRequestStatusHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, statusSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		req, err := store.First[models.InventoryRequest](db, store.Owner(*p.OwnerID), id, "Ingredients")
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Inventory request not found")
			}
			return api.Internal(c, "update inventory request status", err)
		}

		before := *req
		req.Status = models.RequestStatus(body.Str("status"))

		if err := db.Save(req).Error; err != nil {
			return api.Internal(c, "update inventory request status", err)
		}

		audit.Record(db, c, "inventoryRequest", req.ID, models.AuditActionUpdate, before, req)
		metrics.RecordEntityOp("inventoryRequest", "update")
		return api.OK(c, req)
	}
}

func DeleteRequestHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := store.Delete[models.InventoryRequest](tx, callerScope(p), id); err != nil {
				return err
			}
			return tx.Where("inventory_request_id = ?", id).Delete(&models.RequestIngredient{}).Error
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Inventory request not found")
			}
			return api.Internal(c, "delete inventory request", err)
		}

		audit.Record(db, c, "inventoryRequest", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("inventoryRequest", "delete")
		return api.Deleted(c)
	}
}

func callerScope(p *auth.Principal) store.Scope {
	if p.OwnerID != nil {
		return store.Owner(*p.OwnerID)
	}
	return store.Manager(*p.ManagerID)
}
