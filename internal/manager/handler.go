package manager

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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var createManagerSchema = validate.New(
	validate.Rule{Field: "name", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "email", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "password", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 72},
	validate.Rule{Field: "employeeId", Kind: validate.Int, Required: true, Min: validate.Num(1)},
	validate.Rule{Field: "outletId", Kind: validate.Int, Required: true, Min: validate.Num(1)},
)

var updateManagerSchema = validate.New(
	validate.Rule{Field: "status", Kind: validate.String, Required: true, OneOf: []string{
		string(models.ManagerActive),
		string(models.ManagerInactive),
	}},
)

// ownerScoped filters managers through their outlet's owner; the managers
// table itself carries no owner column.
func ownerScoped(db *gorm.DB, ownerID uint) *gorm.DB {
	return db.Model(&models.Manager{}).
		Select("managers.*").
		Joins("JOIN outlets ON outlets.id = managers.outlet_id").
		Where("outlets.owner_id = ?", ownerID)
}

// CreateManagerHandler promotes an employee to manager of one outlet,
// creating the login user alongside.
func CreateManagerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, createManagerSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID
		email := strings.TrimSpace(strings.ToLower(body.Str("email")))
		outletID := body.Uint("outletId")
		employeeID := body.Uint("employeeId")

		checks := check.New()
		empOK, err := store.Exists[models.Employee](db, store.Owner(ownerID), employeeID)
		checks.Check(empOK, err, "Invalid Employee Id")
		outletOK, err := store.Exists[models.Outlet](db, store.Owner(ownerID), outletID)
		checks.Check(outletOK, err, "Invalid Outlet Id")
		outletTaken, err := store.ExistsWhere[models.Manager](db, "outlet_id = ?", outletID)
		checks.Check(!outletTaken, err, "Outlet already has a manager")
		empTaken, err := store.ExistsWhere[models.Manager](db, "employee_id = ?", employeeID)
		checks.Check(!empTaken, err, "Employee is already a manager")
		emailTaken, err := store.ExistsWhere[models.User](db, "email = ?", email)
		checks.Check(!emailTaken, err, "Email already exists")
		if err := checks.Err(); err != nil {
			return api.Internal(c, "create manager", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Str("password")), bcrypt.DefaultCost)
		if err != nil {
			return api.Internal(c, "hash password", err)
		}

		user := models.User{
			Name:         strings.TrimSpace(body.Str("name")),
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleManager,
		}
		mgr := models.Manager{
			Status:     models.ManagerActive,
			OutletID:   outletID,
			EmployeeID: employeeID,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			mgr.UserID = user.ID
			return tx.Create(&mgr).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Outlet already has a manager")
			}
			return api.Internal(c, "create manager", err)
		}

		mgr.User = &user
		audit.Record(db, c, "manager", mgr.ID, models.AuditActionCreate, nil, mgr)
		metrics.RecordEntityOp("manager", "create")
		return api.Created(c, mgr)
	}
}

func ListManagersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		var managers []models.Manager
		err := ownerScoped(db, *p.OwnerID).
			Where("managers.id > ?", page.Cursor).
			Order("managers.id ASC").
			Limit(page.Take).
			Preload("User").
			Find(&managers).Error
		if err != nil {
			return api.Internal(c, "list managers", err)
		}

		var next *uint
		if len(managers) == page.Take {
			next = &managers[len(managers)-1].ID
		}
		return api.Page(c, "managers", managers, next)
	}
}

func GetManagerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		var mgr models.Manager
		err := ownerScoped(db, *p.OwnerID).
			Where("managers.id = ?", id).
			Preload("User").
			First(&mgr).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.NotFound(c, "Manager not found")
			}
			return api.Internal(c, "get manager", err)
		}

		return api.OK(c, mgr)
	}
}

func UpdateManagerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, updateManagerSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		var mgr models.Manager
		err := ownerScoped(db, *p.OwnerID).
			Where("managers.id = ?", id).
			First(&mgr).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.NotFound(c, "Manager not found")
			}
			return api.Internal(c, "update manager", err)
		}

		before := mgr
		mgr.Status = models.ManagerStatus(body.Str("status"))

		if err := db.Save(&mgr).Error; err != nil {
			return api.Internal(c, "update manager", err)
		}

		audit.Record(db, c, "manager", mgr.ID, models.AuditActionUpdate, before, mgr)
		metrics.RecordEntityOp("manager", "update")
		return api.OK(c, mgr)
	}
}

func DeleteManagerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		var mgr models.Manager
		err := ownerScoped(db, *p.OwnerID).
			Where("managers.id = ?", id).
			First(&mgr).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.NotFound(c, "Manager not found")
			}
			return api.Internal(c, "delete manager", err)
		}

		// the login user stays; only the manager assignment goes
		if err := db.Delete(&mgr).Error; err != nil {
			return api.Internal(c, "delete manager", err)
		}

		audit.Record(db, c, "manager", id, models.AuditActionDelete, mgr, nil)
		metrics.RecordEntityOp("manager", "delete")
		return api.Deleted(c)
	}
}
