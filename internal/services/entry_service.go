package services

import (
	"context"
	"fmt"

	"ledgerbook/internal/events"
	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/logger"
	"ledgerbook/internal/models"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/ratelimit"
	"ledgerbook/internal/store"
)

// entryService handles entry-related business logic.
type entryService struct {
	store   store.Store
	pub     events.Publisher
	limiter ratelimit.Limiter
	clock   Clock
}

// NewEntryService creates a new EntryServicer.
func NewEntryService(st store.Store, pub events.Publisher, limiter ratelimit.Limiter, clock Clock) EntryServicer {
	if pub == nil {
		pub = events.Nop{}
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &entryService{store: st, pub: pub, limiter: limiter, clock: clock}
}

// CreateEntry records a new entry. CashIn and CashOut entries are settled
// on their entry date; Credit and Advance entries start fully open.
func (s *entryService) CreateEntry(ctx context.Context, ownerID string, in EntryInput) (*models.Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if !s.limiter.Allow(ownerID) {
		return nil, apperrors.ErrRateLimited
	}

	if err := models.ValidatePair(in.EntryType, in.Category); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.DefaultPaymentMethod(in.EntryType)
	}
	if err := models.ValidatePaymentMethod(in.EntryType, in.PaymentMethod); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	amount, err := normalizeAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	date, err := normalizeDate("entry date", in.EntryDate, s.clock.Today())
	if err != nil {
		return nil, err
	}
	if len(in.Notes) > maxNotesLength {
		return nil, invalid("notes must be at most %d characters", maxNotesLength)
	}
	if in.PartyID != nil {
		if _, err := s.store.GetParty(ctx, ownerID, *in.PartyID); err != nil {
			return nil, mapStoreErr(err, apperrors.ErrPartyNotFound)
		}
	}

	entry := &models.Entry{
		OwnerID:       ownerID,
		EntryType:     in.EntryType,
		Category:      in.Category,
		PaymentMethod: in.PaymentMethod,
		Amount:        amount,
		EntryDate:     date,
		Notes:         in.Notes,
		PartyID:       in.PartyID,
	}
	applySettlementState(entry, nil)

	if err := s.store.InsertEntry(ctx, entry); err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}

	s.pub.Publish(ctx, events.Event{
		Type:    events.EntryCreated,
		OwnerID: ownerID,
		Entry:   entry,
		Changes: map[string]any{
			"entry_type": entry.EntryType,
			"category":   entry.Category,
			"amount":     entry.Amount.StringFixed(2),
		},
	})
	return entry, nil
}

// GetEntry retrieves an entry by ID for a specific owner.
func (s *entryService) GetEntry(ctx context.Context, ownerID, id string) (*models.Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	entry, err := s.store.GetEntry(ctx, ownerID, id)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}
	return entry, nil
}

// ListEntries retrieves a paginated, filtered list of entries, newest first.
func (s *entryService) ListEntries(ctx context.Context, ownerID string, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.Entry], error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	page.Defaults()

	f := store.EntryFilter{
		Range:   filter.Range,
		PartyID: filter.PartyID,
		Settled: filter.Settled,
	}
	if filter.EntryType != nil {
		f.Types = []models.EntryType{*filter.EntryType}
	}
	if filter.Category != nil {
		f.Category = *filter.Category
	}

	total, err := s.store.CountEntries(ctx, ownerID, f)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}
	f.Page = &page
	entries, err := s.store.ListEntries(ctx, ownerID, f)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, total)
	return &result, nil
}

// UpdateEntry applies patch and re-derives the balance from the entry's
// active settlements.
func (s *entryService) UpdateEntry(ctx context.Context, ownerID, id string, patch EntryPatch) (*models.Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if !s.limiter.Allow(ownerID) {
		return nil, apperrors.ErrRateLimited
	}

	var (
		updated *models.Entry
		changes map[string]any
	)
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		entry, err := tx.GetEntry(ctx, ownerID, id)
		if err != nil {
			return mapStoreErr(err, apperrors.ErrEntryNotFound)
		}
		if entry.IsSettlementDerived && !patch.onlyNotes() {
			return apperrors.ErrDerivedEntryImmutable
		}
		settlements, err := tx.ListSettlements(ctx, ownerID, entry.ID)
		if err != nil {
			return mapStoreErr(err, apperrors.ErrEntryNotFound)
		}

		expected := entry.Version
		changes, err = s.applyPatch(ctx, tx, entry, patch, settlements)
		if err != nil {
			return err
		}
		if err := tx.CompareAndUpdateEntry(ctx, entry, expected); err != nil {
			return mapStoreErr(err, apperrors.ErrEntryNotFound)
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ctx, events.Event{
		Type:    events.EntryUpdated,
		OwnerID: ownerID,
		Entry:   updated,
		Changes: changes,
	})
	return updated, nil
}

func (s *entryService) applyPatch(ctx context.Context, tx store.Store, entry *models.Entry, patch EntryPatch, settlements []models.Settlement) (map[string]any, error) {
	changes := map[string]any{}

	entryType, category := entry.EntryType, entry.Category
	if patch.EntryType != nil {
		entryType = *patch.EntryType
	}
	if patch.Category != nil {
		category = *patch.Category
	}
	// Derived cash entries take their direction from the original category.
	if (entryType != entry.EntryType || category != entry.Category) && len(settlements) > 0 {
		return nil, apperrors.ErrEntryHasSettlements
	}
	if entryType != entry.EntryType || category != entry.Category {
		if err := models.ValidatePair(entryType, category); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
	}

	method := entry.PaymentMethod
	if patch.PaymentMethod != nil {
		method = *patch.PaymentMethod
	}
	if entryType != entry.EntryType && patch.PaymentMethod == nil && method == models.PaymentMethodNone {
		method = models.DefaultPaymentMethod(entryType)
	}
	if err := models.ValidatePaymentMethod(entryType, method); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	amount := entry.Amount
	if patch.Amount != nil {
		var err error
		if amount, err = normalizeAmount("amount", *patch.Amount); err != nil {
			return nil, err
		}
		if settled := sumSettlements(settlements); amount.LessThan(settled) {
			return nil, invalid("amount cannot be less than the %s already settled", settled.StringFixed(2))
		}
	}

	date := entry.EntryDate
	if patch.EntryDate != nil {
		var err error
		if date, err = normalizeDate("entry date", *patch.EntryDate, s.clock.Today()); err != nil {
			return nil, err
		}
		for _, st := range settlements {
			if st.SettlementDate.Before(date) {
				return nil, invalid("entry date cannot be after its first settlement on %s", st.SettlementDate.Format("2006-01-02"))
			}
		}
	}

	if patch.Notes != nil {
		if len(*patch.Notes) > maxNotesLength {
			return nil, invalid("notes must be at most %d characters", maxNotesLength)
		}
		if *patch.Notes != entry.Notes {
			changes["notes"] = *patch.Notes
		}
		entry.Notes = *patch.Notes
	}

	switch {
	case patch.ClearParty:
		if entry.PartyID != nil {
			changes["party_id"] = nil
		}
		entry.PartyID = nil
	case patch.PartyID != nil:
		if _, err := tx.GetParty(ctx, entry.OwnerID, *patch.PartyID); err != nil {
			return nil, mapStoreErr(err, apperrors.ErrPartyNotFound)
		}
		changes["party_id"] = *patch.PartyID
		entry.PartyID = patch.PartyID
	}

	record := func(field, before, after string) {
		if before != after {
			changes[field] = map[string]string{"from": before, "to": after}
		}
	}
	record("entry_type", string(entry.EntryType), string(entryType))
	record("category", string(entry.Category), string(category))
	record("payment_method", string(entry.PaymentMethod), string(method))
	record("amount", entry.Amount.StringFixed(2), amount.StringFixed(2))
	record("entry_date", entry.EntryDate.Format("2006-01-02"), date.Format("2006-01-02"))

	entry.EntryType = entryType
	entry.Category = category
	entry.PaymentMethod = method
	entry.Amount = amount
	entry.EntryDate = date
	applySettlementState(entry, settlements)

	if err := entry.CheckInvariants(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return changes, nil
}

// DeleteEntry removes an entry. Settlements against it are kept and
// reported so the caller can warn the user.
func (s *entryService) DeleteEntry(ctx context.Context, ownerID, id string) (*DeleteResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if !s.limiter.Allow(ownerID) {
		return nil, apperrors.ErrRateLimited
	}

	var (
		deleted *models.Entry
		result  = &DeleteResult{EntryID: id}
	)
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		entry, err := tx.GetEntry(ctx, ownerID, id)
		if err != nil {
			return mapStoreErr(err, apperrors.ErrEntryNotFound)
		}
		settlements, err := tx.ListSettlements(ctx, ownerID, id)
		if err != nil {
			return mapStoreErr(err, apperrors.ErrEntryNotFound)
		}
		if err := tx.DeleteEntry(ctx, ownerID, id); err != nil {
			return mapStoreErr(err, apperrors.ErrEntryNotFound)
		}
		deleted = entry
		result.ActiveSettlements = len(settlements)
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case result.ActiveSettlements > 0:
		result.Warning = fmt.Sprintf("%d settlement(s) still reference this entry; reverse them to remove their cash entries", result.ActiveSettlements)
		logger.FromContext(ctx).Warnw("entry deleted with active settlements",
			"owner_id", ownerID,
			"entry_id", id,
			"settlements", result.ActiveSettlements,
		)
	case deleted.IsSettlementDerived:
		result.Warning = "this entry was generated by a settlement; the settlement still counts against its original entry"
	}

	s.pub.Publish(ctx, events.Event{
		Type:    events.EntryDeleted,
		OwnerID: ownerID,
		Entry:   deleted,
		Changes: map[string]any{"active_settlements": result.ActiveSettlements},
	})
	return result, nil
}
