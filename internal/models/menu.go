package models

import "time"

type Menu struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	NameKey   string     `gorm:"size:100;not null;uniqueIndex:idx_menus_owner_name,priority:2" json:"-"`
	OwnerID   uint       `gorm:"index;not null;uniqueIndex:idx_menus_owner_name,priority:1" json:"ownerId"`
	Dishes    []MenuDish `gorm:"constraint:OnDelete:CASCADE" json:"dishes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type MenuDish struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	MenuID uint `gorm:"not null;uniqueIndex:idx_menu_dish,priority:1" json:"menuId"`
	DishID uint `gorm:"not null;uniqueIndex:idx_menu_dish,priority:2" json:"dishId"`
}
