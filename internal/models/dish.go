package models

import "time"

type Dish struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	Name           string           `gorm:"size:100;not null" json:"name"`
	NameKey        string           `gorm:"size:100;not null;uniqueIndex:idx_dishes_owner_name,priority:2" json:"-"`
	Price          float64          `gorm:"not null" json:"price"`
	EstimatedCount int              `gorm:"not null;default:0" json:"estimatedCount"`
	OwnerID        uint             `gorm:"index;not null;uniqueIndex:idx_dishes_owner_name,priority:1" json:"ownerId"`
	Ingredients    []DishIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type DishIngredient struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	DishID       uint    `gorm:"not null;uniqueIndex:idx_dish_ingredient,priority:1" json:"dishId"`
	IngredientID uint    `gorm:"not null;uniqueIndex:idx_dish_ingredient,priority:2" json:"ingredientId"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
}
