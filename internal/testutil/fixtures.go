package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/models"
	"ledgerbook/internal/store"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewOwnerID returns an owner identifier unique within the test run, so
// tests sharing one database never see each other's rows.
func NewOwnerID() string {
	return fmt.Sprintf("owner-%d", nextID())
}

// Date parses a YYYY-MM-DD calendar date.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", s, err)
	}
	return d
}

// Amount parses a decimal amount.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid test amount %q: %v", s, err)
	}
	return d
}

// CreateTestEntry stores an entry dated today with the initial settlement
// state of its type.
func CreateTestEntry(t *testing.T, st store.EntryStore, ownerID string, entryType models.EntryType, category models.Category, amount string) *models.Entry {
	t.Helper()
	return CreateTestEntryOn(t, st, ownerID, entryType, category, amount, models.CalendarDate(time.Now()))
}

// CreateTestEntryOn stores an entry on the given date.
func CreateTestEntryOn(t *testing.T, st store.EntryStore, ownerID string, entryType models.EntryType, category models.Category, amount string, date time.Time) *models.Entry {
	t.Helper()

	amt := Amount(t, amount)
	entry := &models.Entry{
		OwnerID:         ownerID,
		EntryType:       entryType,
		Category:        category,
		PaymentMethod:   models.DefaultPaymentMethod(entryType),
		Amount:          amt,
		RemainingAmount: amt,
		EntryDate:       models.CalendarDate(date),
		Notes:           fmt.Sprintf("test entry %d", nextID()),
	}
	if !entryType.Settleable() {
		entry.RemainingAmount = decimal.Zero
		entry.Settled = true
		settledAt := entry.EntryDate
		entry.SettledAt = &settledAt
	}
	if err := st.InsertEntry(context.Background(), entry); err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return entry
}

// CreateTestParty stores a customer party with a zero opening balance.
func CreateTestParty(t *testing.T, st store.PartyStore, ownerID string) *models.Party {
	t.Helper()

	party := &models.Party{
		OwnerID:        ownerID,
		Name:           fmt.Sprintf("Test Party %d", nextID()),
		Kind:           models.PartyKindCustomer,
		OpeningBalance: decimal.Zero,
	}
	if err := st.InsertParty(context.Background(), party); err != nil {
		t.Fatalf("failed to create test party: %v", err)
	}
	return party
}
