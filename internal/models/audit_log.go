package models

import "gorm.io/datatypes"

// AuditLog records ledger mutations for traceability.
type AuditLog struct {
	Base
	OwnerID      string         `gorm:"size:64;not null;index" json:"owner_id"`
	Action       string         `gorm:"not null" json:"action"`
	ResourceType string         `gorm:"not null" json:"resource_type"`
	ResourceID   string         `gorm:"size:64" json:"resource_id"`
	Changes      datatypes.JSON `json:"changes,omitempty"`
}
