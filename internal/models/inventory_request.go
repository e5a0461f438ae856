package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// RequestStatuses lists the accepted status values. Any authorized caller may
// set any of them; there is no enforced transition graph.
var RequestStatuses = []string{
	string(RequestPending),
	string(RequestApproved),
	string(RequestRejected),
}

type InventoryRequest struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Status      RequestStatus       `gorm:"size:20;not null;default:PENDING" json:"status"`
	OwnerID     uint                `gorm:"index;not null" json:"ownerId"`
	ManagerID   uint                `gorm:"index;not null" json:"managerId"`
	Ingredients []RequestIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type RequestIngredient struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	InventoryRequestID uint    `gorm:"not null;uniqueIndex:idx_request_ingredient,priority:1" json:"inventoryRequestId"`
	IngredientID       uint    `gorm:"not null;uniqueIndex:idx_request_ingredient,priority:2" json:"ingredientId"`
	Quantity           float64 `gorm:"not null" json:"quantity"`
}
