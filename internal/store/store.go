// Package store defines the persistence contract of the ledger and its
// implementations. Every read and write is scoped to an owner; a record
// that exists under another owner is reported as ErrNotFound.
package store

import (
	"context"
	"errors"
	"time"

	"ledgerbook/internal/models"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/period"
)

var (
	// ErrNotFound is returned when a record does not exist for the owner.
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict is returned when a compare-and-update loses a race or the
	// database aborts the transaction for serialization reasons.
	ErrConflict = errors.New("store: concurrent modification")
)

// EntryFilter narrows entry queries. Zero values match everything.
type EntryFilter struct {
	Range    period.Range
	Types    []models.EntryType
	Category models.Category
	PartyID  string
	Settled  *bool
	Derived  *bool
	// SourceEntryID selects entries derived from the given entry.
	SourceEntryID string
	// Page limits the result; nil returns every match.
	Page *pagination.PageRequest
}

// AlertFilter narrows alert queries.
type AlertFilter struct {
	UnreadOnly bool
	Type       models.AlertType
	Page       *pagination.PageRequest
}

// EntryStore persists entries.
type EntryStore interface {
	GetEntry(ctx context.Context, ownerID, id string) (*models.Entry, error)
	// ListEntries returns entries newest first by entry date.
	ListEntries(ctx context.Context, ownerID string, filter EntryFilter) ([]models.Entry, error)
	CountEntries(ctx context.Context, ownerID string, filter EntryFilter) (int64, error)
	// InsertEntry assigns the ID when empty and starts the version at 1.
	InsertEntry(ctx context.Context, entry *models.Entry) error
	// CompareAndUpdateEntry writes entry only if the stored version still
	// equals expectedVersion, then bumps entry.Version. It returns
	// ErrConflict when the version moved and ErrNotFound when the entry is
	// gone.
	CompareAndUpdateEntry(ctx context.Context, entry *models.Entry, expectedVersion int64) error
	DeleteEntry(ctx context.Context, ownerID, id string) error
}

// SettlementStore persists settlements.
type SettlementStore interface {
	GetSettlement(ctx context.Context, ownerID, id string) (*models.Settlement, error)
	// ListSettlements returns the active settlements of an entry, oldest
	// first by settlement date.
	ListSettlements(ctx context.Context, ownerID, entryID string) ([]models.Settlement, error)
	InsertSettlement(ctx context.Context, settlement *models.Settlement) error
	DeleteSettlement(ctx context.Context, ownerID, id string) error
}

// PartyStore persists parties.
type PartyStore interface {
	GetParty(ctx context.Context, ownerID, id string) (*models.Party, error)
	ListParties(ctx context.Context, ownerID string) ([]models.Party, error)
	InsertParty(ctx context.Context, party *models.Party) error
	UpdateParty(ctx context.Context, party *models.Party) error
	// DeleteParty removes the party and clears it from the owner's entries.
	DeleteParty(ctx context.Context, ownerID, id string) error
}

// AlertStore persists alerts.
type AlertStore interface {
	InsertAlerts(ctx context.Context, alerts []models.Alert) error
	GetAlert(ctx context.Context, ownerID, id string) (*models.Alert, error)
	// ListAlerts returns alerts by descending priority, newest first.
	ListAlerts(ctx context.Context, ownerID string, filter AlertFilter) ([]models.Alert, error)
	CountAlerts(ctx context.Context, ownerID string, filter AlertFilter) (int64, error)
	MarkAlertRead(ctx context.Context, ownerID, id string) error
	DeleteAlert(ctx context.Context, ownerID, id string) error
	// PurgeAlerts deletes alerts of every owner created before cutoff.
	PurgeAlerts(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditStore persists audit records.
type AuditStore interface {
	InsertAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Store is the full transactional record store.
type Store interface {
	EntryStore
	SettlementStore
	PartyStore
	AlertStore
	AuditStore

	// WithinTx runs fn inside one atomic unit. Any error returned by fn
	// rolls back every write made through the Store it receives.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
