package models

import "time"

type Employee struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	NicNo       string    `gorm:"size:20;uniqueIndex;not null" json:"nicNo"`
	ContactNo   string    `gorm:"size:20;not null" json:"contactNo"`
	Designation string    `gorm:"size:50;not null" json:"designation"`
	IsCritical  bool      `gorm:"not null;default:false" json:"isCritical"`
	Salary      float64   `gorm:"not null" json:"salary"`
	OwnerID     uint      `gorm:"index;not null" json:"ownerId"`
	OutletID    uint      `gorm:"index;not null" json:"outletId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
