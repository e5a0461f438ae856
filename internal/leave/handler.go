// Package leave handles employee leave requests filed by outlet managers
// and reviewed by the owner.
package leave

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

var leaveSchema = validate.New(
	validate.Rule{Field: "employeeId", Kind: validate.Int, Required: true, Min: validate.Num(1)},
	validate.Rule{Field: "type", Kind: validate.String, Required: true, OneOf: models.LeaveTypes},
	validate.Rule{Field: "from", Kind: validate.Date, Required: true},
	validate.Rule{Field: "noOfDate", Kind: validate.Int, Required: true, Min: validate.Num(1)},
	validate.Rule{Field: "reason", Kind: validate.String, MaxLen: 255},
)

var statusSchema = validate.New(
	validate.Rule{Field: "status", Kind: validate.String, Required: true, OneOf: models.RequestStatuses},
)

// CreateLeaveRequestHandler files a leave request for an employee of the
// manager's outlet.
func CreateLeaveRequestHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, leaveSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		scope, err := store.ResolveManager(db, *p.ManagerID)
		if err != nil {
			return api.Internal(c, "resolve manager scope", err)
		}

		checks := check.New()
		employeeOK, err := store.ExistsWhere[models.Employee](db, "id = ? AND outlet_id = ?", body.Uint("employeeId"), scope.OutletID)
		checks.Check(employeeOK, err, "Invalid Employee Id")

		if err := checks.Err(); err != nil {
			return api.Internal(c, "create leave request", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		req := models.LeaveRequest{
			Type:       models.LeaveType(body.Str("type")),
			From:       body.Date("from"),
			NoOfDate:   body.Int("noOfDate"),
			Reason:     body.Str("reason"),
			Status:     models.RequestPending,
			EmployeeID: body.Uint("employeeId"),
			ManagerID:  scope.ManagerID,
			OwnerID:    scope.OwnerID,
		}

		if err := db.Create(&req).Error; err != nil {
			return api.Internal(c, "create leave request", err)
		}

		audit.Record(db, c, "leaveRequest", req.ID, models.AuditActionCreate, nil, req)
		metrics.RecordEntityOp("leaveRequest", "create")
		return api.Created(c, req)
	}
}

// ListLeaveRequestsHandler pages leave requests: managers see the ones
// they filed, owners see all requests in their tenant.
func ListLeaveRequestsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, errs := api.ParsePage(c)
		if len(errs) > 0 {
			return api.Fail(c, errs...)
		}

		p := auth.FromCtx(c)
		requests, next, err := store.Page[models.LeaveRequest](db, callerScope(p), page.Cursor, page.Take)
		if err != nil {
			return api.Internal(c, "list leave requests", err)
		}

		return api.Page(c, "leaveRequests", requests, next)
	}
}

func GetLeaveRequestHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		req, err := store.First[models.LeaveRequest](db, callerScope(p), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Leave request not found")
			}
			return api.Internal(c, "get leave request", err)
		}

		return api.OK(c, req)
	}
}

// UpdateLeaveRequestStatusHandler lets the owner set any valid status
// value.
func UpdateLeaveRequestStatusHandler(db *gorm.DB) fiber.Handler {
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
		req, err := store.First[models.LeaveRequest](db, store.Owner(*p.OwnerID), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Leave request not found")
			}
			return api.Internal(c, "update leave request status", err)
		}

		before := *req
		req.Status = models.RequestStatus(body.Str("status"))

		if err := db.Save(req).Error; err != nil {
			return api.Internal(c, "update leave request status", err)
		}

		audit.Record(db, c, "leaveRequest", req.ID, models.AuditActionUpdate, before, req)
		metrics.RecordEntityOp("leaveRequest", "update")
		return api.OK(c, req)
	}
}

func DeleteLeaveRequestHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := api.ParseID(c, "id")
		if !ok {
			return api.Fail(c, "id must be a positive integer")
		}

		p := auth.FromCtx(c)
		if err := store.Delete[models.LeaveRequest](db, callerScope(p), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return api.NotFound(c, "Leave request not found")
			}
			return api.Internal(c, "delete leave request", err)
		}

		audit.Record(db, c, "leaveRequest", id, models.AuditActionDelete, nil, nil)
		metrics.RecordEntityOp("leaveRequest", "delete")
		return api.Deleted(c)
	}
}

func callerScope(p *auth.Principal) store.Scope {
	if p.OwnerID != nil {
		return store.Owner(*p.OwnerID)
	}
	return store.Manager(*p.ManagerID)
}
