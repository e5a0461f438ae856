package database

import (
	"fmt"

	"franchise-backend/internal/config"
	"franchise-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and runs migrations. The returned handle is
// passed down explicitly; there is no package-level instance.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema. Shared with tests, which run it
// against sqlite.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Owner{},
		&models.Outlet{},
		&models.Inventory{},
		&models.InventoryIngredient{},
		&models.Employee{},
		&models.Manager{},
		&models.Ingredient{},
		&models.Dish{},
		&models.DishIngredient{},
		&models.Menu{},
		&models.MenuDish{},
		&models.Supplier{},
		&models.SupplierIngredient{},
		&models.SupplierOrder{},
		&models.SupplierOrderIngredient{},
		&models.InventoryRequest{},
		&models.RequestIngredient{},
		&models.LeaveRequest{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
