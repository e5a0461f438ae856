package store

import (
	"franchise-backend/internal/models"

	"gorm.io/gorm"
)

// ManagerScope resolves the outlet and derived owner for a manager id.
// Manager-scoped operations need the owner id for referential checks and
// the outlet id for inventory access.
type ManagerScope struct {
	ManagerID uint
	OutletID  uint
	OwnerID   uint
}

func ResolveManager(db *gorm.DB, managerID uint) (*ManagerScope, error) {
	var row struct {
		OutletID uint
		OwnerID  uint
	}
	err := db.Model(&models.Manager{}).
		Select("managers.outlet_id AS outlet_id, outlets.owner_id AS owner_id").
		Joins("JOIN outlets ON outlets.id = managers.outlet_id").
		Where("managers.id = ?", managerID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.OutletID == 0 {
		return nil, ErrNotFound
	}
	return &ManagerScope{ManagerID: managerID, OutletID: row.OutletID, OwnerID: row.OwnerID}, nil
}
