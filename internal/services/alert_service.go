package services

import (
	"context"
	"errors"
	"time"

	"ledgerbook/internal/alerts"
	"ledgerbook/internal/events"
	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/logger"
	"ledgerbook/internal/models"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/store"
)

// alertService stores the alerts raised for new entries.
type alertService struct {
	store     store.Store
	engine    *alerts.Engine
	pub       events.Publisher
	clock     Clock
	retention time.Duration
}

// NewAlertService creates a new AlertServicer. Alerts older than retention
// are removed by Purge; a non-positive retention keeps them forever.
func NewAlertService(st store.Store, engine *alerts.Engine, pub events.Publisher, clock Clock, retention time.Duration) AlertServicer {
	if pub == nil {
		pub = events.Nop{}
	}
	return &alertService{store: st, engine: engine, pub: pub, clock: clock, retention: retention}
}

// Evaluate runs the rules against the owner's ledger including entry and
// appends whatever fires.
func (s *alertService) Evaluate(ctx context.Context, ownerID string, entry *models.Entry) ([]models.Alert, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if entry == nil || entry.OwnerID != ownerID {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "entry does not belong to the owner")
	}

	entries, err := s.store.ListEntries(ctx, ownerID, store.EntryFilter{})
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}
	raised, err := s.engine.Evaluate(entries, entry, s.clock.Now())
	if err != nil {
		if errors.Is(err, alerts.ErrInvalidEntry) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(raised) == 0 {
		return []models.Alert{}, nil
	}

	if err := s.store.InsertAlerts(ctx, raised); err != nil {
		return nil, mapStoreErr(err, apperrors.ErrAlertNotFound)
	}

	logger.FromContext(ctx).Infow("alerts raised",
		"owner_id", ownerID,
		"entry_id", entry.ID,
		"count", len(raised),
	)
	s.pub.Publish(ctx, events.Event{
		Type:    events.AlertsRaised,
		OwnerID: ownerID,
		Entry:   entry,
		Alerts:  raised,
	})
	return raised, nil
}

// HandleEvent evaluates the rules whenever a cash-affecting entry appears:
// a newly recorded entry or the cash entry generated by a settlement.
func (s *alertService) HandleEvent(ctx context.Context, e events.Event) error {
	var entry *models.Entry
	switch e.Type {
	case events.EntryCreated:
		entry = e.Entry
	case events.SettlementApplied:
		entry = e.Derived
	}
	if entry == nil {
		return nil
	}
	_, err := s.Evaluate(ctx, e.OwnerID, entry)
	return err
}

// ListAlerts returns the owner's alerts, highest priority first.
func (s *alertService) ListAlerts(ctx context.Context, ownerID string, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Alert], error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	page.Defaults()
	filter := store.AlertFilter{UnreadOnly: unreadOnly}

	total, err := s.store.CountAlerts(ctx, ownerID, filter)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrAlertNotFound)
	}
	filter.Page = &page
	list, err := s.store.ListAlerts(ctx, ownerID, filter)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrAlertNotFound)
	}

	result := pagination.NewPageResponse(list, page.Page, page.PageSize, total)
	return &result, nil
}

// MarkRead flags an alert as read.
func (s *alertService) MarkRead(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return mapStoreErr(s.store.MarkAlertRead(ctx, ownerID, id), apperrors.ErrAlertNotFound)
}

// DeleteAlert removes an alert.
func (s *alertService) DeleteAlert(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return mapStoreErr(s.store.DeleteAlert(ctx, ownerID, id), apperrors.ErrAlertNotFound)
}

// Purge deletes alerts of every owner that are older than the retention
// window.
func (s *alertService) Purge(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := s.clock.Now().Add(-s.retention)
	n, err := s.store.PurgeAlerts(ctx, cutoff)
	if err != nil {
		return 0, mapStoreErr(err, apperrors.ErrAlertNotFound)
	}
	logger.FromContext(ctx).Infow("alerts purged", "cutoff", cutoff, "deleted", n)
	return n, nil
}
