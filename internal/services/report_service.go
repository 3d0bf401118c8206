package services

import (
	"context"
	"errors"

	"ledgerbook/internal/analytics"
	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/export"
	"ledgerbook/internal/logger"
	"ledgerbook/internal/models"
	"ledgerbook/internal/period"
	"ledgerbook/internal/store"
)

// reportService computes read-only views over an owner's entries.
type reportService struct {
	store store.Store
	clock Clock
}

// NewReportService creates a new ReportServicer.
func NewReportService(st store.Store, clock Clock) ReportServicer {
	return &reportService{store: st, clock: clock}
}

func (s *reportService) entries(ctx context.Context, ownerID string, r period.Range) ([]models.Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListEntries(ctx, ownerID, store.EntryFilter{Range: r})
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrEntryNotFound)
	}
	return entries, nil
}

// CashReport returns the cash view of r with category and payment method
// breakdowns.
func (s *reportService) CashReport(ctx context.Context, ownerID string, r period.Range) (*CashReport, error) {
	entries, err := s.entries(ctx, ownerID, r)
	if err != nil {
		return nil, err
	}
	return &CashReport{
		View:            analytics.CashBasis(entries, r),
		ByCategory:      analytics.CategoryBreakdown(entries, r, analytics.ViewCash),
		ByPaymentMethod: analytics.PaymentMethodBreakdown(entries, r),
	}, nil
}

// AccrualReport returns the profit view of r with category and party
// breakdowns.
func (s *reportService) AccrualReport(ctx context.Context, ownerID string, r period.Range) (*AccrualReport, error) {
	entries, err := s.entries(ctx, ownerID, r)
	if err != nil {
		return nil, err
	}
	parties, err := s.store.ListParties(ctx, ownerID)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrPartyNotFound)
	}
	return &AccrualReport{
		View:       analytics.Accrual(entries, r),
		ByCategory: analytics.CategoryBreakdown(entries, r, analytics.ViewAccrual),
		ByParty:    analytics.PartyBreakdown(entries, parties, r, analytics.ViewAccrual),
	}, nil
}

// Trend buckets r by day or month. The range must be bounded.
func (s *reportService) Trend(ctx context.Context, ownerID string, r period.Range, g period.Granularity) ([]analytics.TrendPoint, error) {
	entries, err := s.entries(ctx, ownerID, r)
	if err != nil {
		return nil, err
	}
	points, err := analytics.Trend(entries, r, g)
	if err != nil {
		return nil, rangeErr(err)
	}
	return points, nil
}

// Export renders r as a workbook. An unbounded range is exported from the
// first entry up to today with a monthly trend.
func (s *reportService) Export(ctx context.Context, ownerID string, r period.Range) ([]byte, error) {
	entries, err := s.entries(ctx, ownerID, r)
	if err != nil {
		return nil, err
	}
	parties, err := s.store.ListParties(ctx, ownerID)
	if err != nil {
		return nil, mapStoreErr(err, apperrors.ErrPartyNotFound)
	}

	bounded := s.bound(r, entries)
	g := period.Daily
	if bounded.Days() > 62 {
		g = period.Monthly
	}
	trend, err := analytics.Trend(entries, bounded, g)
	if err != nil {
		return nil, rangeErr(err)
	}

	data, err := export.Workbook(export.Report{
		Range:       r,
		GeneratedAt: s.clock.Now(),
		Cash:        analytics.CashBasis(entries, r),
		Accrual:     analytics.Accrual(entries, r),
		Entries:     entries,
		Trend:       trend,
		Pending:     analytics.PendingByParty(entries, parties),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.FromContext(ctx).Infow("ledger exported",
		"owner_id", ownerID,
		"period", r.String(),
		"entries", len(entries),
		"bytes", len(data),
	)
	return data, nil
}

// bound closes the open ends of r using the entries and today.
func (s *reportService) bound(r period.Range, entries []models.Entry) period.Range {
	out := r
	if out.To.IsZero() {
		out.To = s.clock.Today()
	}
	if out.From.IsZero() {
		out.From = out.To
		for i := range entries {
			if entries[i].EntryDate.Before(out.From) {
				out.From = entries[i].EntryDate
			}
		}
	}
	return out
}

func rangeErr(err error) error {
	switch {
	case errors.Is(err, period.ErrUnbounded),
		errors.Is(err, period.ErrInvalidRange),
		errors.Is(err, period.ErrTooManyBuckets):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
