package models

import (
	"time"

	"ledgerbook/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// CalendarDate truncates t to midnight UTC of its calendar day in t's own
// location. Entry and settlement dates are stored this way so bucketing
// never depends on the wall clock of the server.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// All returns every persisted model, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Party{},
		&Entry{},
		&Settlement{},
		&Alert{},
		&AuditLog{},
	}
}
