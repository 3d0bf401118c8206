package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"ledgerbook/internal/events"
	"ledgerbook/internal/models"
	"ledgerbook/internal/store"
	"ledgerbook/internal/testutil"
)

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func testClock() Clock {
	return Clock{Now: func() time.Time { return testNow }, Location: time.UTC}
}

// recorder is a Publisher that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// denyAll is a Limiter that refuses every request.
type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func setupGormStore(t *testing.T) store.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return store.NewGormStore(db)
}

// ledger bundles the services under test over one store.
type ledger struct {
	store       store.Store
	pub         *recorder
	entries     EntryServicer
	settlements SettlementServicer
	parties     PartyServicer
	reports     ReportServicer
}

func newLedger(st store.Store) *ledger {
	pub := &recorder{}
	clock := testClock()
	return &ledger{
		store:       st,
		pub:         pub,
		entries:     NewEntryService(st, pub, nil, clock),
		settlements: NewSettlementService(st, pub, nil, clock, 1),
		parties:     NewPartyService(st, pub),
		reports:     NewReportService(st, clock),
	}
}

// eachLedger runs fn against a ledger over every store implementation.
func eachLedger(t *testing.T, fn func(t *testing.T, l *ledger)) {
	t.Run("gorm", func(t *testing.T) {
		fn(t, newLedger(setupGormStore(t)))
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, newLedger(store.NewMemoryStore()))
	})
}

func (l *ledger) create(t *testing.T, owner string, entryType models.EntryType, category models.Category, amount, date string) *models.Entry {
	t.Helper()
	entry, err := l.entries.CreateEntry(context.Background(), owner, EntryInput{
		EntryType: entryType,
		Category:  category,
		Amount:    testutil.Amount(t, amount),
		EntryDate: testutil.Date(t, date),
	})
	testutil.AssertNoError(t, err)
	return entry
}

func (l *ledger) settle(t *testing.T, owner, entryID, amount, date string) *SettlementResult {
	t.Helper()
	res, err := l.settlements.CreateSettlement(context.Background(), owner, SettlementInput{
		EntryID:        entryID,
		Amount:         testutil.Amount(t, amount),
		SettlementDate: testutil.Date(t, date),
	})
	testutil.AssertNoError(t, err)
	return res
}

func (l *ledger) reload(t *testing.T, owner, id string) *models.Entry {
	t.Helper()
	entry, err := l.store.GetEntry(context.Background(), owner, id)
	testutil.AssertNoError(t, err)
	return entry
}

func (l *ledger) derivedFrom(t *testing.T, owner, id string) []models.Entry {
	t.Helper()
	derived := true
	list, err := l.store.ListEntries(context.Background(), owner, store.EntryFilter{Derived: &derived, SourceEntryID: id})
	testutil.AssertNoError(t, err)
	return list
}
