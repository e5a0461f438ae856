package models

import "time"

type LeaveType string

const (
	LeaveSick    LeaveType = "SICK"
	LeaveCasual  LeaveType = "CASUAL"
	LeaveNoPay   LeaveType = "NOPAY"
	LeaveShort   LeaveType = "SHORT"
	LeaveHalfDay LeaveType = "HALFDAY"
)

var LeaveTypes = []string{
	string(LeaveSick),
	string(LeaveCasual),
	string(LeaveNoPay),
	string(LeaveShort),
	string(LeaveHalfDay),
}

type LeaveRequest struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	Type       LeaveType     `gorm:"size:20;not null" json:"type"`
	From       time.Time     `gorm:"not null" json:"from"`
	NoOfDate   int           `gorm:"not null" json:"noOfDate"`
	Reason     string        `gorm:"size:255" json:"reason"`
	Status     RequestStatus `gorm:"size:20;not null;default:PENDING" json:"status"`
	EmployeeID uint          `gorm:"index;not null" json:"employeeId"`
	ManagerID  uint          `gorm:"index;not null" json:"managerId"`
	OwnerID    uint          `gorm:"index;not null" json:"ownerId"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
