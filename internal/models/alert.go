package models

import "time"

// AlertType is the severity of an alert.
type AlertType string

const (
	AlertTypeInfo     AlertType = "info"
	AlertTypeWarning  AlertType = "warning"
	AlertTypeCritical AlertType = "critical"
)

// Alert is an advisory notification raised by the alert rules. It lives
// independently of the entry that triggered it.
type Alert struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   string    `gorm:"size:64;not null;index" json:"owner_id"`
	Type      AlertType `gorm:"size:16;not null" json:"type"`
	Priority  int       `gorm:"not null" json:"priority"`
	Rule      string    `gorm:"size:64;not null" json:"rule"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"size:1000;not null" json:"message"`
	EntryID   *string   `gorm:"type:uuid" json:"entry_id,omitempty"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
