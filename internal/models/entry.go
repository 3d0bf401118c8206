package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType represents the kind of financial movement an entry records.
type EntryType string

const (
	EntryTypeCashIn  EntryType = "CashIn"
	EntryTypeCashOut EntryType = "CashOut"
	EntryTypeCredit  EntryType = "Credit"
	EntryTypeAdvance EntryType = "Advance"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeCashIn, EntryTypeCashOut, EntryTypeCredit, EntryTypeAdvance:
		return true
	}
	return false
}

// Settleable reports whether entries of this type can carry an
// outstanding balance.
func (t EntryType) Settleable() bool {
	return t == EntryTypeCredit || t == EntryTypeAdvance
}

// Category represents the business bucket of an entry.
type Category string

const (
	CategorySales  Category = "Sales"
	CategoryCOGS   Category = "COGS"
	CategoryOpex   Category = "Opex"
	CategoryAssets Category = "Assets"
)

// Categories lists every category in reporting order.
var Categories = []Category{CategorySales, CategoryCOGS, CategoryOpex, CategoryAssets}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySales, CategoryCOGS, CategoryOpex, CategoryAssets:
		return true
	}
	return false
}

// IsExpense reports whether money in this category flows out.
func (c Category) IsExpense() bool {
	return c == CategoryCOGS || c == CategoryOpex || c == CategoryAssets
}

// PaymentMethod represents how cash moved for an entry.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "Cash"
	PaymentMethodBank PaymentMethod = "Bank"
	PaymentMethodNone PaymentMethod = "None"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodNone:
		return true
	}
	return false
}

// allowedCategories is the explicit (EntryType, Category) table. A pair
// outside it is rejected; the category never implies a type. CashIn with
// Assets records an asset sale.
var allowedCategories = map[EntryType][]Category{
	EntryTypeCashIn:  {CategorySales, CategoryAssets},
	EntryTypeCashOut: {CategoryCOGS, CategoryOpex, CategoryAssets},
	EntryTypeCredit:  Categories,
	EntryTypeAdvance: Categories,
}

// ValidatePair checks that the entry type and category may be combined.
func ValidatePair(t EntryType, c Category) error {
	if !t.Valid() {
		return fmt.Errorf("unsupported entry type %q", t)
	}
	if !c.Valid() {
		return fmt.Errorf("unsupported category %q", c)
	}
	for _, allowed := range allowedCategories[t] {
		if allowed == c {
			return nil
		}
	}
	return fmt.Errorf("category %s is not allowed for %s entries", c, t)
}

// ValidatePaymentMethod checks the payment method against the entry type.
// Cash-moving entries need a real method; credit entries may carry None.
func ValidatePaymentMethod(t EntryType, m PaymentMethod) error {
	if !m.Valid() {
		return fmt.Errorf("unsupported payment method %q", m)
	}
	if t != EntryTypeCredit && m == PaymentMethodNone {
		return fmt.Errorf("%s entries require a Cash or Bank payment method", t)
	}
	return nil
}

// DefaultPaymentMethod is used when the caller leaves the method empty.
func DefaultPaymentMethod(t EntryType) PaymentMethod {
	if t == EntryTypeCredit {
		return PaymentMethodNone
	}
	return PaymentMethodCash
}

// SettlementNotePrefix starts the human-readable note of derived entries.
const SettlementNotePrefix = "Settlement of"

// Entry is a single recorded financial event.
type Entry struct {
	Base
	OwnerID         string          `gorm:"size:64;not null;index:idx_entries_owner_date,priority:1" json:"owner_id"`
	EntryType       EntryType       `gorm:"size:16;not null" json:"entry_type"`
	Category        Category        `gorm:"size:16;not null" json:"category"`
	PaymentMethod   PaymentMethod   `gorm:"size:8;not null" json:"payment_method"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"remaining_amount"`
	Settled         bool            `gorm:"not null;default:false" json:"settled"`
	SettledAt       *time.Time      `json:"settled_at,omitempty"`
	EntryDate       time.Time       `gorm:"not null;index:idx_entries_owner_date,priority:2" json:"entry_date"`
	Notes           string          `gorm:"size:500" json:"notes"`
	PartyID         *string         `gorm:"type:uuid;index" json:"party_id,omitempty"`

	// Set only on the CashIn/CashOut entry generated by a credit settlement.
	IsSettlementDerived bool    `gorm:"not null;default:false" json:"is_settlement_derived"`
	SourceEntryID       *string `gorm:"type:uuid;index" json:"source_entry_id,omitempty"`
	SourceSettlementID  *string `gorm:"type:uuid" json:"source_settlement_id,omitempty"`

	Version int64 `gorm:"not null" json:"version"`
}

// SettlementStatus is the derived state of a settleable entry.
type SettlementStatus string

const (
	StatusOpen             SettlementStatus = "open"
	StatusPartiallySettled SettlementStatus = "partially_settled"
	StatusSettled          SettlementStatus = "settled"
)

// Status derives the settlement state from the remaining balance.
func (e *Entry) Status() SettlementStatus {
	switch {
	case e.RemainingAmount.IsZero():
		return StatusSettled
	case e.RemainingAmount.LessThan(e.Amount):
		return StatusPartiallySettled
	default:
		return StatusOpen
	}
}

// CheckInvariants verifies the balance invariants of the entry.
func (e *Entry) CheckInvariants() error {
	if e.RemainingAmount.IsNegative() {
		return fmt.Errorf("remaining amount %s is negative", e.RemainingAmount)
	}
	if e.RemainingAmount.GreaterThan(e.Amount) {
		return fmt.Errorf("remaining amount %s exceeds amount %s", e.RemainingAmount, e.Amount)
	}
	if e.Settled != e.RemainingAmount.IsZero() {
		return fmt.Errorf("settled flag %t disagrees with remaining amount %s", e.Settled, e.RemainingAmount)
	}
	if e.Settled != (e.SettledAt != nil) {
		return fmt.Errorf("settled_at presence disagrees with settled flag %t", e.Settled)
	}
	return nil
}
