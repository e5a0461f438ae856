package models

import "time"

// Inventory is created together with its Outlet (1:1).
type Inventory struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	OutletID    uint                  `gorm:"uniqueIndex;not null" json:"outletId"`
	Ingredients []InventoryIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

type InventoryIngredient struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InventoryID  uint      `gorm:"not null;uniqueIndex:idx_inventory_ingredient,priority:1" json:"inventoryId"`
	IngredientID uint      `gorm:"not null;uniqueIndex:idx_inventory_ingredient,priority:2" json:"ingredientId"`
	Quantity     float64   `gorm:"not null" json:"quantity"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
