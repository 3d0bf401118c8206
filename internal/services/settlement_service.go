package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/events"
	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/logger"
	"ledgerbook/internal/metrics"
	"ledgerbook/internal/models"
	"ledgerbook/internal/ratelimit"
	"ledgerbook/internal/store"
	"ledgerbook/internal/uuid"
)

// settlementService applies and reverses settlements. Each operation runs
// in one store transaction and writes the original entry through a
// version compare-and-update, so two concurrent settlements can never both
// consume the same remaining balance.
type settlementService struct {
	store      store.Store
	pub        events.Publisher
	limiter    ratelimit.Limiter
	clock      Clock
	maxRetries int
}

// NewSettlementService creates a new SettlementServicer. maxRetries is the
// number of extra attempts made after losing a race on the entry.
func NewSettlementService(st store.Store, pub events.Publisher, limiter ratelimit.Limiter, clock Clock, maxRetries int) SettlementServicer {
	if pub == nil {
		pub = events.Nop{}
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &settlementService{store: st, pub: pub, limiter: limiter, clock: clock, maxRetries: maxRetries}
}

// retry runs op until it succeeds, fails for a reason other than a lost
// race, or the retry budget is spent.
func (s *settlementService) retry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return apperrors.Wrap(apperrors.ErrConcurrentModification, ctxErr)
			}
			metrics.SettlementRetried()
			logger.FromContext(ctx).Debugw("retrying settlement after concurrent modification", "attempt", attempt)
		}
		err = op()
		if !errors.Is(err, store.ErrConflict) {
			return err
		}
	}
	return apperrors.Wrap(apperrors.ErrConcurrentModification, err)
}

// CreateSettlement records a payment against a Credit or Advance entry.
// A credit settlement also creates the CashIn or CashOut entry that
// represents the cash actually moving.
func (s *settlementService) CreateSettlement(ctx context.Context, ownerID string, in SettlementInput) (*SettlementResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if !s.limiter.Allow(ownerID) {
		return nil, apperrors.ErrRateLimited
	}
	if in.EntryID == "" {
		return nil, invalid("entry ID is required")
	}
	amount, err := normalizeAmount("settlement amount", in.Amount)
	if err != nil {
		return nil, err
	}
	date, err := normalizeDate("settlement date", in.SettlementDate, s.clock.Today())
	if err != nil {
		return nil, err
	}
	if len(in.Notes) > maxNotesLength {
		return nil, invalid("notes must be at most %d characters", maxNotesLength)
	}
	if in.PaymentMethod != "" && in.PaymentMethod != models.PaymentMethodCash && in.PaymentMethod != models.PaymentMethodBank {
		return nil, invalid("settlement payment method must be Cash or Bank")
	}

	var result *SettlementResult
	err = s.retry(ctx, func() error {
		result = nil
		return s.store.WithinTx(ctx, func(tx store.Store) error {
			var txErr error
			result, txErr = s.applySettlement(ctx, tx, ownerID, in, amount, date)
			return txErr
		})
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("settlement applied",
		"owner_id", ownerID,
		"entry_id", result.Entry.ID,
		"settlement_id", result.Settlement.ID,
		"amount", result.Settlement.Amount.StringFixed(2),
		"remaining", result.Entry.RemainingAmount.StringFixed(2),
	)
	s.pub.Publish(ctx, events.Event{
		Type:       events.SettlementApplied,
		OwnerID:    ownerID,
		Entry:      result.Entry,
		Settlement: result.Settlement,
		Derived:    result.Derived,
		Changes: map[string]any{
			"entry_id":  result.Entry.ID,
			"amount":    result.Settlement.Amount.StringFixed(2),
			"remaining": result.Entry.RemainingAmount.StringFixed(2),
			"date":      date.Format("2006-01-02"),
		},
	})
	return result, nil
}

func (s *settlementService) applySettlement(ctx context.Context, tx store.Store, ownerID string, in SettlementInput, amount decimal.Decimal, date time.Time) (*SettlementResult, error) {
	entry, err := tx.GetEntry(ctx, ownerID, in.EntryID)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}
	if !entry.EntryType.Settleable() || entry.IsSettlementDerived {
		return nil, apperrors.ErrEntryNotSettleable
	}
	if amount.GreaterThan(entry.RemainingAmount) {
		return nil, apperrors.WithMessage(apperrors.ErrExceedsRemaining,
			fmt.Sprintf("Settlement amount %s exceeds remaining balance %s",
				amount.StringFixed(2), entry.RemainingAmount.StringFixed(2)))
	}

	if date.Before(entry.EntryDate) {
		return nil, invalid("settlement date cannot be before the entry date %s", entry.EntryDate.Format("2006-01-02"))
	}

	method := in.PaymentMethod
	if method == "" {
		method = entry.PaymentMethod
		if method == models.PaymentMethodNone {
			method = models.PaymentMethodCash
		}
	}

	settlement := &models.Settlement{
		OwnerID:         ownerID,
		OriginalEntryID: entry.ID,
		SettlementType:  models.SettlementTypeFor(entry.EntryType),
		Amount:          amount,
		SettlementDate:  date,
		PaymentMethod:   method,
		Notes:           in.Notes,
	}
	settlement.ID = uuid.New()

	var derived *models.Entry
	if entry.EntryType == models.EntryTypeCredit {
		derived = derivedEntry(entry, settlement)
		if err := tx.InsertEntry(ctx, derived); err != nil {
			return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
		}
		settlement.DerivedEntryID = &derived.ID
	}

	expected := entry.Version
	entry.RemainingAmount = entry.RemainingAmount.Sub(amount)
	entry.Settled = entry.RemainingAmount.IsZero()
	if entry.Settled {
		entry.SettledAt = &settlement.SettlementDate
	}
	if err := entry.CheckInvariants(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.CompareAndUpdateEntry(ctx, entry, expected); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, err
		}
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}

	if err := tx.InsertSettlement(ctx, settlement); err != nil {
		return nil, mapStoreErr(err, apperrors.ErrSettlementNotFound)
	}

	return &SettlementResult{Settlement: settlement, Entry: entry, Derived: derived}, nil
}

// derivedEntry builds the cash entry generated by a credit settlement.
// Money owed to the business (credit sales) comes in; everything else
// goes out. The category follows the original entry.
func derivedEntry(original *models.Entry, settlement *models.Settlement) *models.Entry {
	entryType := models.EntryTypeCashOut
	if original.Category == models.CategorySales {
		entryType = models.EntryTypeCashIn
	}
	sourceEntry := original.ID
	sourceSettlement := settlement.ID
	date := settlement.SettlementDate
	return &models.Entry{
		OwnerID:             original.OwnerID,
		EntryType:           entryType,
		Category:            original.Category,
		PaymentMethod:       settlement.PaymentMethod,
		Amount:              settlement.Amount,
		Settled:             true,
		SettledAt:           &date,
		EntryDate:           date,
		Notes:               fmt.Sprintf("%s %s", models.SettlementNotePrefix, original.ID),
		PartyID:             original.PartyID,
		IsSettlementDerived: true,
		SourceEntryID:       &sourceEntry,
		SourceSettlementID:  &sourceSettlement,
	}
}

// ReverseSettlement undoes a settlement: its derived cash entry is removed
// and the original entry's balance is recomputed from the settlements that
// remain.
func (s *settlementService) ReverseSettlement(ctx context.Context, ownerID, settlementID string) (*ReversalResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if !s.limiter.Allow(ownerID) {
		return nil, apperrors.ErrRateLimited
	}

	var result *ReversalResult
	err := s.retry(ctx, func() error {
		result = nil
		return s.store.WithinTx(ctx, func(tx store.Store) error {
			var txErr error
			result, txErr = s.reverse(ctx, tx, ownerID, settlementID)
			return txErr
		})
	})
	if err != nil {
		return nil, err
	}

	event := events.Event{
		Type:       events.SettlementReversed,
		OwnerID:    ownerID,
		Entry:      result.Entry,
		Settlement: result.Settlement,
		Changes: map[string]any{
			"entry_id": result.Settlement.OriginalEntryID,
			"amount":   result.Settlement.Amount.StringFixed(2),
		},
	}
	if result.RemovedDerivedID != "" {
		event.Changes["removed_derived_entry_id"] = result.RemovedDerivedID
	}
	s.pub.Publish(ctx, event)
	return result, nil
}

func (s *settlementService) reverse(ctx context.Context, tx store.Store, ownerID, settlementID string) (*ReversalResult, error) {
	settlement, err := tx.GetSettlement(ctx, ownerID, settlementID)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrSettlementNotFound)
	}
	result := &ReversalResult{Settlement: settlement}

	if settlement.DerivedEntryID != nil {
		err := tx.DeleteEntry(ctx, ownerID, *settlement.DerivedEntryID)
		switch {
		case err == nil:
			result.RemovedDerivedID = *settlement.DerivedEntryID
		case errors.Is(err, store.ErrNotFound):
			// Already deleted by the user.
		default:
			return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
		}
	}
	if err := tx.DeleteSettlement(ctx, ownerID, settlement.ID); err != nil {
		return nil, mapStoreErr(err, apperrors.ErrSettlementNotFound)
	}

	entry, err := tx.GetEntry(ctx, ownerID, settlement.OriginalEntryID)
	if errors.Is(err, store.ErrNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}

	remaining, err := tx.ListSettlements(ctx, ownerID, entry.ID)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrSettlementNotFound)
	}
	expected := entry.Version
	applySettlementState(entry, remaining)
	if err := entry.CheckInvariants(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.CompareAndUpdateEntry(ctx, entry, expected); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, err
		}
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}
	result.Entry = entry
	return result, nil
}

// GetSettlement retrieves a settlement by ID for a specific owner.
func (s *settlementService) GetSettlement(ctx context.Context, ownerID, id string) (*models.Settlement, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	settlement, err := s.store.GetSettlement(ctx, ownerID, id)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrSettlementNotFound)
	}
	return settlement, nil
}

// ListSettlements returns the active settlements of an entry, oldest first.
func (s *settlementService) ListSettlements(ctx context.Context, ownerID, entryID string) ([]models.Settlement, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetEntry(ctx, ownerID, entryID); err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}
	settlements, err := s.store.ListSettlements(ctx, ownerID, entryID)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrSettlementNotFound)
	}
	if settlements == nil {
		settlements = []models.Settlement{}
	}
	return settlements, nil
}
