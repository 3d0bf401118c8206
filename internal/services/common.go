package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/models"
	"ledgerbook/internal/money"
	"ledgerbook/internal/store"
)

const maxNotesLength = 500

// Clock supplies the current time and the zone that defines "today".
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock uses the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

// Today returns the current calendar date in the clock's zone.
func (c Clock) Today() time.Time {
	return models.CalendarDate(c.Now().In(c.Location))
}

// mapStoreErr converts store failures into AppErrors. AppErrors pass
// through untouched.
func mapStoreErr(err error, notFound *apperrors.AppError) error {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrConflict):
		return apperrors.Wrap(apperrors.ErrConcurrentModification, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

func requireOwner(ownerID string) error {
	if ownerID == "" {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func invalid(format string, args ...any) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// normalizeAmount rounds to two places and enforces the allowed range.
func normalizeAmount(field string, d decimal.Decimal) (decimal.Decimal, error) {
	amount := money.Round(d)
	if !amount.IsPositive() {
		return decimal.Zero, invalid("%s must be greater than zero", field)
	}
	if amount.GreaterThan(money.Max) {
		return decimal.Zero, invalid("%s must not exceed %s", field, money.Format(money.Max))
	}
	return amount, nil
}

// normalizeDate defaults a zero date to today and rejects future dates.
func normalizeDate(field string, d, today time.Time) (time.Time, error) {
	if d.IsZero() {
		return today, nil
	}
	date := models.CalendarDate(d)
	if date.After(today) {
		return time.Time{}, invalid("%s cannot be in the future", field)
	}
	return date, nil
}

func sumSettlements(settlements []models.Settlement) decimal.Decimal {
	total := decimal.Zero
	for _, s := range settlements {
		total = total.Add(s.Amount)
	}
	return money.Round(total)
}

func latestSettlementDate(settlements []models.Settlement) *time.Time {
	var latest *time.Time
	for i := range settlements {
		d := settlements[i].SettlementDate
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest
}

// applySettlementState derives remaining, settled and settled_at for entry
// from the settlements still active against it.
func applySettlementState(entry *models.Entry, settlements []models.Settlement) {
	if !entry.EntryType.Settleable() {
		entry.RemainingAmount = decimal.Zero
		entry.Settled = true
		d := entry.EntryDate
		entry.SettledAt = &d
		return
	}
	entry.RemainingAmount = money.Clamp(money.Round(entry.Amount.Sub(sumSettlements(settlements))))
	entry.Settled = entry.RemainingAmount.IsZero()
	if entry.Settled {
		entry.SettledAt = latestSettlementDate(settlements)
		if entry.SettledAt == nil {
			d := entry.EntryDate
			entry.SettledAt = &d
		}
	} else {
		entry.SettledAt = nil
	}
}
