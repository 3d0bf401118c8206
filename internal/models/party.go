package models

import "github.com/shopspring/decimal"

// PartyKind distinguishes customers from vendors.
type PartyKind string

const (
	PartyKindCustomer PartyKind = "customer"
	PartyKindVendor   PartyKind = "vendor"
)

// Valid reports whether k is a known party kind.
func (k PartyKind) Valid() bool {
	return k == PartyKindCustomer || k == PartyKindVendor
}

// Party is a named counterparty. It only groups entries; deleting it
// detaches its entries rather than removing them.
type Party struct {
	Base
	OwnerID        string          `gorm:"size:64;not null;index" json:"owner_id"`
	Name           string          `gorm:"size:200;not null" json:"name"`
	Kind           PartyKind       `gorm:"size:16;not null" json:"kind"`
	OpeningBalance decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"opening_balance"`
	Phone          string          `gorm:"size:32" json:"phone"`
	Notes          string          `gorm:"size:500" json:"notes"`
}
