package employee

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

var employeeSchema = validate.New(
	validate.Rule{Field: "name", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "nicNo", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 20},
	validate.Rule{Field: "contactNo", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 20},
	validate.Rule{Field: "designation", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 50},
	validate.Rule{Field: "isCritical", Kind: validate.Bool, Default: false},
	validate.Rule{Field: "salary", Kind: validate.Float, Required: true, Min: validate.Num(0)},
	validate.Rule{Field: "outletId", Kind: validate.Int, Required: true, Min: validate.Num(1)},
)

func CreateEmployeeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, employeeSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID
		nic := strings.TrimSpace(body.Str("nicNo"))

		checks := check.New()
		outletOK, err := store.Exists[models.Outlet](db, store.Owner(ownerID), body.Uint("outletId"))
		checks.Check(outletOK, err, "Invalid Outlet Id")
		nicTaken, err := store.ExistsWhere[models.Employee](db, "nic_no = ?", nic)
		checks.Check(!nicTaken, err, "NIC number already exists")
		if err := checks.Err(); err != nil {
			return api.Internal(c, "create employee", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		emp := models.Employee{
			Name:        strings.TrimSpace(body.Str("name")),
			NicNo:       nic,
			ContactNo:   strings.TrimSpace(body.Str("contactNo")),
			Designation: strings.TrimSpace(body.Str("designation")),
			IsCritical:  body.Bool("isCritical"),
			Salary:      body.Float("salary"),
			OwnerID:     ownerID,
			OutletID:    body.Uint("outletId"),
		}
		if err := db.Create(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "NIC number already exists")
			}
			return api.Internal(c, "create employee", err)
		}

		audit.Record(db, c, "employee", emp.ID, models.AuditActionCreate, nil, emp)
		metrics.RecordEntityOp("employee", "create")
		return api.Created(c, emp)
	}
}

func ListEmployeesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		employees, next, err := store.Page[models.Employee](db, store.Owner(*p.OwnerID), page.Cursor, page.Take)
		if err != nil {
			return api.Internal(c, "list employees", err)
		}

		return api.Page(c, "employees", employees, next)
	}
}

func GetEmployeeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		emp, err := store.First[models.Employee](db, store.Owner(*p.OwnerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Employee not found")
			}
			return api.Internal(c, "get employee", err)
		}

		return api.OK(c, emp)
	}
}

func UpdateEmployeeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		body, errs := validate.Body(c, employeeSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		ownerID := *p.OwnerID

		emp, err := store.First[models.Employee](db, store.Owner(ownerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Employee not found")
			}
			return api.Internal(c, "update employee", err)
		}

		nic := strings.TrimSpace(body.Str("nicNo"))

		checks := check.New()
		outletOK, err := store.Exists[models.Outlet](db, store.Owner(ownerID), body.Uint("outletId"))
		checks.Check(outletOK, err, "Invalid Outlet Id")
		nicTaken, err := store.ExistsWhere[models.Employee](db, "nic_no = ? AND id != ?", nic, id)
		checks.Check(!nicTaken, err, "NIC number already exists")
		if err := checks.Err(); err != nil {
			return api.Internal(c, "update employee", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		before := *emp
		emp.Name = strings.TrimSpace(body.Str("name"))
		emp.NicNo = nic
		emp.ContactNo = strings.TrimSpace(body.Str("contactNo"))
		emp.Designation = strings.TrimSpace(body.Str("designation"))
		emp.IsCritical = body.Bool("isCritical")
		emp.Salary = body.Float("salary")
		emp.OutletID = body.Uint("outletId")

		if err := db.Save(emp).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "NIC number already exists")
			}
			return api.Internal(c, "update employee", err)
		}

		audit.Record(db, c, "employee", emp.ID, models.AuditActionUpdate, before, emp)
		metrics.RecordEntityOp("employee", "update")
		return api.OK(c, emp)
	}
}

func DeleteEmployeeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		if err := store.Delete[models.Employee](db, store.Owner(*p.OwnerID), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Employee not found")
			}
			return api.Internal(c, "delete employee", err)
		}

		audit.Record(db, c, "employee", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("employee", "delete")
		return api.Deleted(c)
	}
}
