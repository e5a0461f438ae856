package models

import (
	"strings"
	"time"
)

type Ingredient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	NameKey   string    `gorm:"size:100;not null;uniqueIndex:idx_ingredients_owner_name,priority:2" json:"-"`
	Unit      string    `gorm:"size:20;not null" json:"unit"`
	Price     float64   `gorm:"not null" json:"price"`
	OwnerID   uint      `gorm:"index;not null;uniqueIndex:idx_ingredients_owner_name,priority:1" json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NameKey collapses internal whitespace and folds case so that
// "Pasta  Primavera" and "pasta primavera" compare equal. The same key
// backs both the pre-check and the unique index.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
