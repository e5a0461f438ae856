package models

import "time"

type SupplierOrder struct {
	ID          uint                      `gorm:"primaryKey" json:"id"`
	TotalValue  float64                   `gorm:"not null" json:"totalValue"`
	SupplierID  uint                      `gorm:"index;not null" json:"supplierId"`
	OwnerID     uint                      `gorm:"index;not null" json:"ownerId"`
	Ingredients []SupplierOrderIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

type SupplierOrderIngredient struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	SupplierOrderID uint    `gorm:"not null;uniqueIndex:idx_order_ingredient,priority:1" json:"supplierOrderId"`
	IngredientID    uint    `gorm:"not null;uniqueIndex:idx_order_ingredient,priority:2" json:"ingredientId"`
	Quantity        float64 `gorm:"not null" json:"quantity"`
	// UnitPrice is the ingredient price at order time; totalValue is the sum
	// of UnitPrice * Quantity over the line items.
	UnitPrice float64 `gorm:"not null" json:"unitPrice"`
}
