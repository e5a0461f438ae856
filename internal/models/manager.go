package models

import "time"

type ManagerStatus string

const (
	ManagerActive   ManagerStatus = "ACTIVE"
	ManagerInactive ManagerStatus = "INACTIVE"
)

// Manager links a User and an Employee to exactly one Outlet.
type Manager struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	Status     ManagerStatus `gorm:"size:20;not null;default:ACTIVE" json:"status"`
	OutletID   uint          `gorm:"uniqueIndex;not null" json:"outletId"`
	EmployeeID uint          `gorm:"uniqueIndex;not null" json:"employeeId"`
	UserID     uint          `gorm:"uniqueIndex;not null" json:"userId"`
	User       *User         `json:"user,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
