// Package app assembles the fiber application: middleware chain, error
// handling and the full route table.
package app

import (
	"strings"

	"franchise-backend/internal/api"
	"franchise-backend/internal/audit"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/config"
	"franchise-backend/internal/dish"
	"franchise-backend/internal/employee"
	"franchise-backend/internal/ingredient"
	"franchise-backend/internal/inventory"
	"franchise-backend/internal/invreq"
	"franchise-backend/internal/leave"
	"franchise-backend/internal/manager"
	"franchise-backend/internal/menu"
	"franchise-backend/internal/metrics"
	"franchise-backend/internal/middleware"
	"franchise-backend/internal/models"
	"franchise-backend/internal/order"
	"franchise-backend/internal/outlet"
	"franchise-backend/internal/supplier"
	"franchise-backend/internal/upload"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New builds the application. Dependencies are passed in explicitly so
// tests can run against an in-memory database.
func New(cfg *config.Config, db *gorm.DB, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "franchise-backend",
		ErrorHandler: errorHandler(log),
	})

	app.Use(middleware.RequestID(log))
	app.Use(middleware.AccessLog())
	app.Use(metrics.Middleware())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	app.Use(limiter.New(limiter.Config{
		Max: cfg.RateLimit,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return api.OK(c, fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	root := app.Group("/api")

	// Public auth
	root.Post("/auth/register-owner", auth.RegisterOwnerHandler(db, cfg))
	root.Post("/auth/login", auth.LoginHandler(db, cfg))

	// Protected
	protected := root.Group("")
	protected.Use(auth.JWTMiddleware(db, cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	signer := upload.NewHMACSigner(cfg.UploadBase, cfg.UploadSecret)
	protected.Get("/uploads/sign", upload.SignURLHandler(signer))

	// Owner routes
	owner := protected.Group("/owner")
	owner.Use(auth.RequireRole(models.RoleOwner))

	owner.Post("/outlets", outlet.CreateOutletHandler(db))
	owner.Get("/outlets", outlet.ListOutletsHandler(db))
	owner.Get("/outlets/:id", outlet.GetOutletHandler(db))
	owner.Put("/outlets/:id", outlet.UpdateOutletHandler(db))
	owner.Delete("/outlets/:id", outlet.DeleteOutletHandler(db))
	owner.Get("/outlets/:id/inventory", inventory.GetOutletInventoryHandler(db))

	owner.Post("/employees", employee.CreateEmployeeHandler(db))
	owner.Get("/employees", employee.ListEmployeesHandler(db))
	owner.Get("/employees/:id", employee.GetEmployeeHandler(db))
	owner.Put("/employees/:id", employee.UpdateEmployeeHandler(db))
	owner.Delete("/employees/:id", employee.DeleteEmployeeHandler(db))

	owner.Post("/managers", manager.CreateManagerHandler(db))
	owner.Get("/managers", manager.ListManagersHandler(db))
	owner.Get("/managers/:id", manager.GetManagerHandler(db))
	owner.Put("/managers/:id", manager.UpdateManagerHandler(db))
	owner.Delete("/managers/:id", manager.DeleteManagerHandler(db))

	owner.Post("/ingredients", ingredient.CreateIngredientHandler(db))
	owner.Get("/ingredients", ingredient.ListIngredientsHandler(db))
	owner.Get("/ingredients/:id", ingredient.GetIngredientHandler(db))
	owner.Put("/ingredients/:id", ingredient.UpdateIngredientHandler(db))
	owner.Delete("/ingredients/:id", ingredient.DeleteIngredientHandler(db))

	owner.Post("/dishes", dish.CreateDishHandler(db))
	owner.Get("/dishes", dish.ListDishesHandler(db))
	owner.Get("/dishes/:id", dish.GetDishHandler(db))
	owner.Put("/dishes/:id", dish.UpdateDishHandler(db))
	owner.Delete("/dishes/:id", dish.DeleteDishHandler(db))

	owner.Post("/menus", menu.CreateMenuHandler(db))
	owner.Get("/menus", menu.ListMenusHandler(db))
	owner.Get("/menus/:id", menu.GetMenuHandler(db))
	owner.Put("/menus/:id", menu.UpdateMenuHandler(db))
	owner.Delete("/menus/:id", menu.DeleteMenuHandler(db))

	owner.Post("/suppliers", supplier.CreateSupplierHandler(db))
	owner.Get("/suppliers", supplier.ListSuppliersHandler(db))
	owner.Get("/suppliers/:id", supplier.GetSupplierHandler(db))
	owner.Put("/suppliers/:id", supplier.UpdateSupplierHandler(db))
	owner.Delete("/suppliers/:id", supplier.DeleteSupplierHandler(db))

	owner.Post("/supplier-orders", order.CreateSupplierOrderHandler(db))
	owner.Get("/supplier-orders", order.ListSupplierOrdersHandler(db))
	owner.Get("/supplier-orders/:id", order.GetSupplierOrderHandler(db))
	owner.Delete("/supplier-orders/:id", order.DeleteSupplierOrderHandler(db))

	owner.Get("/inventory-requests", invreq.ListRequestsHandler(db))
	owner.Get("/inventory-requests/:id", invreq.GetRequestHandler(db))
	owner.Patch("/inventory-requests/:id/status", invreq.UpdateRequestStatusHandler(db))
	owner.Delete("/inventory-requests/:id", invreq.DeleteRequestHandler(db))

	owner.Get("/leave-requests", leave.ListLeaveRequestsHandler(db))
	owner.Get("/leave-requests/:id", leave.GetLeaveRequestHandler(db))
	owner.Patch("/leave-requests/:id/status", leave.UpdateLeaveRequestStatusHandler(db))
	owner.Delete("/leave-requests/:id", leave.DeleteLeaveRequestHandler(db))

	owner.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	// Manager routes
	mgr := protected.Group("/manager")
	mgr.Use(auth.RequireRole(models.RoleManager))

	mgr.Post("/inventory-requests", invreq.CreateRequestHandler(db))
	mgr.Get("/inventory-requests", invreq.ListRequestsHandler(db))
	mgr.Get("/inventory-requests/:id", invreq.GetRequestHandler(db))
	mgr.Put("/inventory-requests/:id", invreq.UpdateRequestHandler(db))
	mgr.Delete("/inventory-requests/:id", invreq.DeleteRequestHandler(db))

	mgr.Post("/leave-requests", leave.CreateLeaveRequestHandler(db))
	mgr.Get("/leave-requests", leave.ListLeaveRequestsHandler(db))
	mgr.Get("/leave-requests/:id", leave.GetLeaveRequestHandler(db))

	mgr.Get("/inventory", inventory.GetOwnInventoryHandler(db))
	mgr.Post("/inventory/ingredients", inventory.AddIngredientHandler(db))
	mgr.Put("/inventory/ingredients/:id", inventory.UpdateIngredientHandler(db))
	mgr.Delete("/inventory/ingredients/:id", inventory.RemoveIngredientHandler(db))

	return app
}

// errorHandler keeps the response envelope uniform for errors raised via
// fiber (auth middleware, routing, body limits).
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			status := "fail"
			if e.Code >= fiber.StatusInternalServerError {
				status = "error"
			}
			return c.Status(e.Code).JSON(api.Envelope{Status: status, Message: []string{e.Message}})
		}
		log.Error("unhandled error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(api.Envelope{
			Status:  "error",
			Message: []string{"Something went wrong"},
		})
	}
}
