package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	OwnerID *uint `gorm:"index" json:"ownerId"`

	UserID   uint   `json:"userId"`
	UserName string `gorm:"size:100" json:"userName"`

	// Entity kind plus row id, e.g. "ingredient" / 42.
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   uint   `gorm:"index" json:"entityId"`

	Action AuditAction `gorm:"size:20" json:"action"`

	Description string `gorm:"size:255" json:"description"`

	// Snapshots of the row before and after the mutation (JSON).
	BeforeData string `gorm:"type:text" json:"beforeData"`
	AfterData  string `gorm:"type:text" json:"afterData"`
}
