package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementType mirrors the entry type being settled.
type SettlementType string

const (
	SettlementTypeCredit  SettlementType = "credit"
	SettlementTypeAdvance SettlementType = "advance"
)

// SettlementTypeFor returns the settlement type for a settleable entry type.
func SettlementTypeFor(t EntryType) SettlementType {
	if t == EntryTypeAdvance {
		return SettlementTypeAdvance
	}
	return SettlementTypeCredit
}

// Settlement records one partial or full payment against a Credit or
// Advance entry.
type Settlement struct {
	Base
	OwnerID         string          `gorm:"size:64;not null;index" json:"owner_id"`
	OriginalEntryID string          `gorm:"type:uuid;not null;index" json:"original_entry_id"`
	SettlementType  SettlementType  `gorm:"size:16;not null" json:"settlement_type"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	SettlementDate  time.Time       `gorm:"not null" json:"settlement_date"`
	PaymentMethod   PaymentMethod   `gorm:"size:8;not null" json:"payment_method"`
	// Only credit settlements generate a cash entry.
	DerivedEntryID *string `gorm:"type:uuid" json:"derived_entry_id,omitempty"`
	Notes          string  `gorm:"size:500" json:"notes"`
}
