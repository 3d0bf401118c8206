package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ledgerbook/internal/events"
	"ledgerbook/internal/models"
	"ledgerbook/internal/store"
	"ledgerbook/internal/testutil"
)

func TestAuditHandleEvent(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewAuditService(mem)
	ctx := context.Background()
	owner := testutil.NewOwnerID()
	entry := testutil.CreateTestEntry(t, mem, owner, models.EntryTypeCredit, models.CategorySales, "100")
	settlement := &models.Settlement{OwnerID: owner, OriginalEntryID: entry.ID}
	settlement.ID = "settlement-1"

	testutil.AssertNoError(t, svc.HandleEvent(ctx, events.Event{
		Type: events.EntryCreated, OwnerID: owner, Entry: entry,
		Changes: map[string]any{"amount": "100.00"},
	}))
	testutil.AssertNoError(t, svc.HandleEvent(ctx, events.Event{
		Type: events.SettlementApplied, OwnerID: owner, Entry: entry, Settlement: settlement,
	}))
	testutil.AssertNoError(t, svc.HandleEvent(ctx, events.Event{
		Type: events.AlertsRaised, OwnerID: owner, Entry: entry,
	}))

	logs := mem.AuditLogs()
	if len(logs) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(logs))
	}
	byAction := map[string]models.AuditLog{}
	for _, l := range logs {
		byAction[l.Action] = l
	}

	created := byAction[string(events.EntryCreated)]
	if created.ResourceType != "entry" || created.ResourceID != entry.ID {
		t.Errorf("unexpected entry audit record %+v", created)
	}
	var changes map[string]string
	testutil.AssertNoError(t, json.Unmarshal(created.Changes, &changes))
	if changes["amount"] != "100.00" {
		t.Errorf("expected recorded amount, got %v", changes)
	}

	applied := byAction[string(events.SettlementApplied)]
	if applied.ResourceType != "settlement" || applied.ResourceID != "settlement-1" {
		t.Errorf("unexpected settlement audit record %+v", applied)
	}
}

type failingAuditStore struct{}

func (failingAuditStore) InsertAuditLog(context.Context, *models.AuditLog) error {
	return errors.New("disk full")
}

func TestAuditLogNeverFails(t *testing.T) {
	svc := NewAuditService(failingAuditStore{})
	svc.Log(context.Background(), "owner", "entry.created", "entry", "1", map[string]any{"bad": make(chan int)})
}
