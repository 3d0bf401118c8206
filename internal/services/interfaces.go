package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/analytics"
	"ledgerbook/internal/events"
	"ledgerbook/internal/models"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/period"
)

// EntryInput holds the fields of a new entry.
type EntryInput struct {
	EntryType     models.EntryType
	Category      models.Category
	PaymentMethod models.PaymentMethod
	Amount        decimal.Decimal
	EntryDate     time.Time
	Notes         string
	PartyID       *string
}

// EntryPatch holds optional fields for updating an entry. A nil field is
// left unchanged.
type EntryPatch struct {
	EntryType     *models.EntryType
	Category      *models.Category
	PaymentMethod *models.PaymentMethod
	Amount        *decimal.Decimal
	EntryDate     *time.Time
	Notes         *string
	PartyID       *string
	ClearParty    bool
}

// onlyNotes reports whether the patch touches nothing but notes.
func (p EntryPatch) onlyNotes() bool {
	return p.EntryType == nil && p.Category == nil && p.PaymentMethod == nil &&
		p.Amount == nil && p.EntryDate == nil && p.PartyID == nil && !p.ClearParty
}

// EntryFilter holds optional filter parameters for listing entries.
type EntryFilter struct {
	Range     period.Range
	EntryType *models.EntryType
	Category  *models.Category
	PartyID   string
	Settled   *bool
}

// DeleteResult reports what deleting an entry left behind.
type DeleteResult struct {
	EntryID string `json:"entry_id"`
	// ActiveSettlements counts settlements that still reference the entry.
	ActiveSettlements int    `json:"active_settlements"`
	Warning           string `json:"warning,omitempty"`
}

// EntryServicer defines the contract for the ledger's entry operations.
type EntryServicer interface {
	CreateEntry(ctx context.Context, ownerID string, in EntryInput) (*models.Entry, error)
	GetEntry(ctx context.Context, ownerID, id string) (*models.Entry, error)
	ListEntries(ctx context.Context, ownerID string, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.Entry], error)
	UpdateEntry(ctx context.Context, ownerID, id string, patch EntryPatch) (*models.Entry, error)
	DeleteEntry(ctx context.Context, ownerID, id string) (*DeleteResult, error)
}

// SettlementInput holds the fields of a new settlement.
type SettlementInput struct {
	EntryID        string
	Amount         decimal.Decimal
	SettlementDate time.Time
	PaymentMethod  models.PaymentMethod
	Notes          string
}

// SettlementResult is the outcome of applying a settlement.
type SettlementResult struct {
	Settlement *models.Settlement `json:"settlement"`
	Entry      *models.Entry      `json:"entry"`
	// Derived is the generated cash entry; nil for advances.
	Derived *models.Entry `json:"derived_entry,omitempty"`
}

// ReversalResult is the outcome of reversing a settlement.
type ReversalResult struct {
	Settlement *models.Settlement `json:"settlement"`
	// Entry is the restored original; nil when it had been deleted.
	Entry            *models.Entry `json:"entry,omitempty"`
	RemovedDerivedID string        `json:"removed_derived_entry_id,omitempty"`
}

// SettlementServicer defines the contract for the settlement engine. It is
// the only writer of an entry's remaining amount outside entry edits.
type SettlementServicer interface {
	CreateSettlement(ctx context.Context, ownerID string, in SettlementInput) (*SettlementResult, error)
	ReverseSettlement(ctx context.Context, ownerID, settlementID string) (*ReversalResult, error)
	GetSettlement(ctx context.Context, ownerID, id string) (*models.Settlement, error)
	ListSettlements(ctx context.Context, ownerID, entryID string) ([]models.Settlement, error)
}

// PartyInput holds the fields of a new party.
type PartyInput struct {
	Name           string
	Kind           models.PartyKind
	OpeningBalance decimal.Decimal
	Phone          string
	Notes          string
}

// PartyPatch holds optional fields for updating a party.
type PartyPatch struct {
	Name           *string
	Kind           *models.PartyKind
	OpeningBalance *decimal.Decimal
	Phone          *string
	Notes          *string
}

// PartyServicer defines the contract for counterparty management.
type PartyServicer interface {
	CreateParty(ctx context.Context, ownerID string, in PartyInput) (*models.Party, error)
	GetParty(ctx context.Context, ownerID, id string) (*models.Party, error)
	ListParties(ctx context.Context, ownerID string) ([]models.Party, error)
	UpdateParty(ctx context.Context, ownerID, id string, patch PartyPatch) (*models.Party, error)
	DeleteParty(ctx context.Context, ownerID, id string) error
	PendingBalances(ctx context.Context, ownerID string) ([]analytics.PartyBalance, error)
}

// CashReport is the cash-basis view with its breakdowns.
type CashReport struct {
	View            analytics.CashView  `json:"view"`
	ByCategory      analytics.Breakdown `json:"by_category"`
	ByPaymentMethod analytics.Breakdown `json:"by_payment_method"`
}

// AccrualReport is the accrual-basis view with its breakdowns.
type AccrualReport struct {
	View       analytics.AccrualView `json:"view"`
	ByCategory analytics.Breakdown   `json:"by_category"`
	ByParty    analytics.Breakdown   `json:"by_party"`
}

// ReportServicer defines the contract for read-only reporting.
type ReportServicer interface {
	CashReport(ctx context.Context, ownerID string, r period.Range) (*CashReport, error)
	AccrualReport(ctx context.Context, ownerID string, r period.Range) (*AccrualReport, error)
	Trend(ctx context.Context, ownerID string, r period.Range, g period.Granularity) ([]analytics.TrendPoint, error)
	// Export renders the period as an XLSX workbook.
	Export(ctx context.Context, ownerID string, r period.Range) ([]byte, error)
}

// AlertServicer defines the contract for generated alerts.
type AlertServicer interface {
	// Evaluate runs the alert rules for a new entry and stores the result.
	Evaluate(ctx context.Context, ownerID string, entry *models.Entry) ([]models.Alert, error)
	ListAlerts(ctx context.Context, ownerID string, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Alert], error)
	MarkRead(ctx context.Context, ownerID, id string) error
	DeleteAlert(ctx context.Context, ownerID, id string) error
	// Purge deletes alerts older than the retention window.
	Purge(ctx context.Context) (int64, error)
	HandleEvent(ctx context.Context, e events.Event) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, ownerID, action, resourceType, resourceID string, changes map[string]any)
	HandleEvent(ctx context.Context, e events.Event) error
}
