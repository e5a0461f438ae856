package models

import "time"

// Owner is the tenant root: every business entity is partitioned by owner.
type Owner struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BrNo        string    `gorm:"size:50;uniqueIndex;not null" json:"brNo"`
	CompanyName string    `gorm:"size:100;not null" json:"companyName"`
	Address     string    `gorm:"size:255" json:"address"`
	ContactNo   string    `gorm:"size:20;uniqueIndex;not null" json:"contactNo"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"userId"`
	User        *User     `json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
