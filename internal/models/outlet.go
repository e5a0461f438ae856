package models

import "time"

type Outlet struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Location  string     `gorm:"size:255;not null" json:"location"`
	OwnerID   uint       `gorm:"index;not null" json:"ownerId"`
	Inventory *Inventory `gorm:"constraint:OnDelete:CASCADE" json:"inventory,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
