package models

import "time"

type Supplier struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	Name        string               `gorm:"size:100;not null" json:"name"`
	Email       string               `gorm:"size:100;uniqueIndex;not null" json:"email"`
	ContactNo   string               `gorm:"size:20;uniqueIndex;not null" json:"contactNo"`
	Address     string               `gorm:"size:255" json:"address"`
	OwnerID     uint                 `gorm:"index;not null" json:"ownerId"`
	Ingredients []SupplierIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// SupplierIngredient restricts which ingredients a supplier can fulfill.
type SupplierIngredient struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	SupplierID   uint `gorm:"not null;uniqueIndex:idx_supplier_ingredient,priority:1" json:"supplierId"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_supplier_ingredient,priority:2" json:"ingredientId"`
}
