package supplier

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

var supplierSchema = validate.New(
	validate.Rule{Field: "name", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "email", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "contactNo", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 20},
	validate.Rule{Field: "address", Kind: validate.String, MaxLen: 255},
	validate.Rule{Field: "ingredients", Kind: validate.Array, Required: true, MinItems: 1, ElemKind: validate.Int, Min: validate.Num(1)},
)

func runChecks(db *gorm.DB, ownerID uint, email, contactNo string, ids []uint, excludeID uint) *check.List {
	checks := check.New()

	emailTaken, err := store.ExistsWhere[models.Supplier](db, "email = ? AND id != ?", email, excludeID)
	checks.Check(!emailTaken, err, "Email already exists")

	contactTaken, err := store.ExistsWhere[models.Supplier](db, "contact_no = ? AND id != ?", contactNo, excludeID)
	checks.Check(!contactTaken, err, "Contact number already exists")

	checks.That(check.UniqueIDs(ids), "There are duplicate ingredients")

	unique := check.Dedupe(ids)
	count, err := store.CountWhere[models.Ingredient](db, "owner_id = ? AND id IN ?", ownerID, unique)
	checks.Check(count == int64(len(unique)), err, "Invalid Ingredients Id")

	return checks
}

func CreateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, supplierSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID
		email := strings.TrimSpace(strings.ToLower(body.Str("email")))
		contactNo := strings.TrimSpace(body.Str("contactNo"))
		ids := body.Uints("ingredients")

		checks := runChecks(db, ownerID, email, contactNo, ids, 0)
		if err := checks.Err(); err != nil {
			return api.Internal(c, "create supplier", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		s := models.Supplier{
			Name:      strings.TrimSpace(body.Str("name")),
			Email:     email,
			ContactNo: contactNo,
			Address:   strings.TrimSpace(body.Str("address")),
			OwnerID:   ownerID,
		}
		for _, id := range ids {
			s.Ingredients = append(s.Ingredients, models.SupplierIngredient{IngredientID: id})
		}

		if err := db.Create(&s).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Email already exists")
			}
			return api.Internal(c, "create supplier", err)
		}

		audit.Record(db, c, "supplier", s.ID, models.AuditActionCreate, nil, s)
		metrics.RecordEntityOp("supplier", "create")
		return api.Created(c, s)
	}
}

func ListSuppliersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		suppliers, next, err := store.Page[models.Supplier](db, store.Owner(*p.OwnerID), page.Cursor, page.Take, "Ingredients")
		if err != nil {
			return api.Internal(c, "list suppliers", err)
		}

		return api.Page(c, "suppliers", suppliers, next)
	}
}

func GetSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		s, err := store.First[models.Supplier](db, store.Owner(*p.OwnerID), id, "Ingredients")
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Supplier not found")
			}
			return api.Internal(c, "get supplier", err)
		}

		return api.OK(c, s)
	}
}

func UpdateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, supplierSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID

		s, err := store.First[models.Supplier](db, store.Owner(ownerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Supplier not found")
			}
			return api.Internal(c, "update supplier", err)
		}

		email := strings.TrimSpace(strings.ToLower(body.Str("email")))
		contactNo := strings.TrimSpace(body.Str("contactNo"))
		ids := body.Uints("ingredients")

		checks := runChecks(db, ownerID, email, contactNo, ids, id)
		if err := checks.Err(); err != nil {
			return api.Internal(c, "update supplier", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		before := *s
		s.Name = strings.TrimSpace(body.Str("name"))
		s.Email = email
		s.ContactNo = contactNo
		s.Address = strings.TrimSpace(body.Str("address"))

		newJoins := make([]models.SupplierIngredient, 0, len(ids))
		for _, ingredientID := range ids {
			newJoins = append(newJoins, models.SupplierIngredient{SupplierID: s.ID, IngredientID: ingredientID})
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(s).Error; err != nil {
				return err
			}
			if err := tx.Where("supplier_id = ?", s.ID).Delete(&models.SupplierIngredient{}).Error; err != nil {
				return err
			}
			return tx.Create(&newJoins).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Email already exists")
			}
			return api.Internal(c, "update supplier", err)
		}

		s.Ingredients = newJoins
		audit.Record(db, c, "supplier", s.ID, models.AuditActionUpdate, before, s)
		metrics.RecordEntityOp("supplier", "update")
		return api.OK(c, s)
	}
}

func DeleteSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := store.Delete[models.Supplier](tx, store.Owner(*p.OwnerID), id); err != nil {
				return err
			}
			return tx.Where("supplier_id = ?", id).Delete(&models.SupplierIngredient{}).Error
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Supplier not found")
			}
			return api.Internal(c, "delete supplier", err)
		}

		audit.Record(db, c, "supplier", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("supplier", "delete")
		return api.Deleted(c)
	}
}
