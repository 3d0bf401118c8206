package handlers

import (
	"time"

	"ledgerbook/internal/analytics"
	"ledgerbook/internal/models"
	"ledgerbook/internal/money"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/period"
	"ledgerbook/internal/services"
)

// Money always leaves the API as a string with two fraction digits.

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

// EntryResponse represents an entry in the response.
type EntryResponse struct {
	ID                  string                  `json:"id"`
	EntryType           models.EntryType        `json:"entry_type"`
	Category            models.Category         `json:"category"`
	PaymentMethod       models.PaymentMethod    `json:"payment_method"`
	Amount              string                  `json:"amount" example:"1200.00"`
	RemainingAmount     string                  `json:"remaining_amount" example:"400.00"`
	Settled             bool                    `json:"settled"`
	Status              models.SettlementStatus `json:"status"`
	SettledAt           *string                 `json:"settled_at,omitempty" example:"2024-05-03"`
	EntryDate           string                  `json:"entry_date" example:"2024-05-01"`
	Notes               string                  `json:"notes"`
	PartyID             *string                 `json:"party_id,omitempty"`
	IsSettlementDerived bool                    `json:"is_settlement_derived"`
	SourceEntryID       *string                 `json:"source_entry_id,omitempty"`
	SourceSettlementID  *string                 `json:"source_settlement_id,omitempty"`
	Version             int64                   `json:"version"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

func newEntryResponse(e *models.Entry) *EntryResponse {
	if e == nil {
		return nil
	}
	return &EntryResponse{
		ID:                  e.ID,
		EntryType:           e.EntryType,
		Category:            e.Category,
		PaymentMethod:       e.PaymentMethod,
		Amount:              money.Format(e.Amount),
		RemainingAmount:     money.Format(e.RemainingAmount),
		Settled:             e.Settled,
		Status:              e.Status(),
		SettledAt:           formatOptionalDate(e.SettledAt),
		EntryDate:           formatDate(e.EntryDate),
		Notes:               e.Notes,
		PartyID:             e.PartyID,
		IsSettlementDerived: e.IsSettlementDerived,
		SourceEntryID:       e.SourceEntryID,
		SourceSettlementID:  e.SourceSettlementID,
		Version:             e.Version,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func newEntryPage(p *pagination.PageResponse[models.Entry]) pagination.PageResponse[EntryResponse] {
	return pagination.Map(*p, func(e *models.Entry) EntryResponse { return *newEntryResponse(e) })
}

// SettlementResponse represents a settlement in the response.
type SettlementResponse struct {
	ID              string                `json:"id"`
	OriginalEntryID string                `json:"original_entry_id"`
	SettlementType  models.SettlementType `json:"settlement_type"`
	Amount          string                `json:"amount" example:"400.00"`
	SettlementDate  string                `json:"settlement_date" example:"2024-05-03"`
	PaymentMethod   models.PaymentMethod  `json:"payment_method"`
	DerivedEntryID  *string               `json:"derived_entry_id,omitempty"`
	Notes           string                `json:"notes"`
	CreatedAt       time.Time             `json:"created_at"`
}

func newSettlementResponse(s *models.Settlement) *SettlementResponse {
	if s == nil {
		return nil
	}
	return &SettlementResponse{
		ID:              s.ID,
		OriginalEntryID: s.OriginalEntryID,
		SettlementType:  s.SettlementType,
		Amount:          money.Format(s.Amount),
		SettlementDate:  formatDate(s.SettlementDate),
		PaymentMethod:   s.PaymentMethod,
		DerivedEntryID:  s.DerivedEntryID,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
	}
}

// PartyResponse represents a party in the response.
type PartyResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Kind           models.PartyKind `json:"kind"`
	OpeningBalance string           `json:"opening_balance" example:"0.00"`
	Phone          string           `json:"phone"`
	Notes          string           `json:"notes"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func newPartyResponse(p *models.Party) *PartyResponse {
	return &PartyResponse{
		ID:             p.ID,
		Name:           p.Name,
		Kind:           p.Kind,
		OpeningBalance: money.Format(p.OpeningBalance),
		Phone:          p.Phone,
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// PartyBalanceResponse is the outstanding position with one party.
type PartyBalanceResponse struct {
	PartyID     string           `json:"party_id"`
	Name        string           `json:"name"`
	Kind        models.PartyKind `json:"kind,omitempty"`
	Receivable  string           `json:"receivable"`
	Payable     string           `json:"payable"`
	Net         string           `json:"net"`
	OpenEntries int              `json:"open_entries"`
}

func newPartyBalances(balances []analytics.PartyBalance) []PartyBalanceResponse {
	out := make([]PartyBalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = PartyBalanceResponse{
			PartyID:     b.PartyID,
			Name:        b.Name,
			Kind:        b.Kind,
			Receivable:  money.Format(b.Receivable),
			Payable:     money.Format(b.Payable),
			Net:         money.Format(b.Net),
			OpenEntries: b.OpenEntries,
		}
	}
	return out
}

// PeriodResponse is a reporting range. Empty sides are unbounded.
type PeriodResponse struct {
	From string `json:"from,omitempty" example:"2024-05-01"`
	To   string `json:"to,omitempty" example:"2024-05-31"`
}

func newPeriodResponse(r period.Range) PeriodResponse {
	var p PeriodResponse
	if !r.From.IsZero() {
		p.From = formatDate(r.From)
	}
	if !r.To.IsZero() {
		p.To = formatDate(r.To)
	}
	return p
}

// ShareResponse is one group of a breakdown.
type ShareResponse struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Amount  string `json:"amount"`
	Count   int    `json:"count"`
	Percent string `json:"percent"`
}

// BreakdownResponse splits a view into inflow and outflow groups.
type BreakdownResponse struct {
	View     analytics.View  `json:"view"`
	Income   []ShareResponse `json:"income"`
	Expense  []ShareResponse `json:"expense"`
	TotalIn  string          `json:"total_in"`
	TotalOut string          `json:"total_out"`
}

func newShares(shares []analytics.Share) []ShareResponse {
	out := make([]ShareResponse, len(shares))
	for i, s := range shares {
		out[i] = ShareResponse{
			Key:     s.Key,
			Label:   s.Label,
			Amount:  money.Format(s.Amount),
			Count:   s.Count,
			Percent: money.Format(s.Percent),
		}
	}
	return out
}

func newBreakdownResponse(b analytics.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		View:     b.View,
		Income:   newShares(b.Income),
		Expense:  newShares(b.Expense),
		TotalIn:  money.Format(b.TotalIn),
		TotalOut: money.Format(b.TotalOut),
	}
}

// CashReportResponse is the cash-basis view of a period.
type CashReportResponse struct {
	Period          PeriodResponse    `json:"period"`
	CashIn          string            `json:"cash_in" example:"2000.00"`
	CashOut         string            `json:"cash_out" example:"1700.00"`
	Balance         string            `json:"balance" example:"300.00"`
	Entries         int               `json:"entries"`
	ByCategory      BreakdownResponse `json:"by_category"`
	ByPaymentMethod BreakdownResponse `json:"by_payment_method"`
}

func newCashReportResponse(r *services.CashReport) CashReportResponse {
	return CashReportResponse{
		Period:          newPeriodResponse(r.View.Period),
		CashIn:          money.Format(r.View.CashIn),
		CashOut:         money.Format(r.View.CashOut),
		Balance:         money.Format(r.View.Balance),
		Entries:         r.View.Entries,
		ByCategory:      newBreakdownResponse(r.ByCategory),
		ByPaymentMethod: newBreakdownResponse(r.ByPaymentMethod),
	}
}

// AccrualReportResponse is the accrual-basis view of a period.
type AccrualReportResponse struct {
	Period      PeriodResponse    `json:"period"`
	Revenue     string            `json:"revenue" example:"2000.00"`
	COGS        string            `json:"cogs" example:"700.00"`
	Opex        string            `json:"opex" example:"300.00"`
	GrossProfit string            `json:"gross_profit" example:"1300.00"`
	NetProfit   string            `json:"net_profit" example:"1000.00"`
	Margin      string            `json:"margin" example:"0.5000"`
	Entries     int               `json:"entries"`
	ByCategory  BreakdownResponse `json:"by_category"`
	ByParty     BreakdownResponse `json:"by_party"`
}

func newAccrualReportResponse(r *services.AccrualReport) AccrualReportResponse {
	return AccrualReportResponse{
		Period:      newPeriodResponse(r.View.Period),
		Revenue:     money.Format(r.View.Revenue),
		COGS:        money.Format(r.View.COGS),
		Opex:        money.Format(r.View.Opex),
		GrossProfit: money.Format(r.View.GrossProfit),
		NetProfit:   money.Format(r.View.NetProfit),
		Margin:      r.View.Margin.StringFixed(4),
		Entries:     r.View.Entries,
		ByCategory:  newBreakdownResponse(r.ByCategory),
		ByParty:     newBreakdownResponse(r.ByParty),
	}
}

// TrendPointResponse carries both views for one bucket.
type TrendPointResponse struct {
	Label     string `json:"label"`
	From      string `json:"from"`
	To        string `json:"to"`
	CashIn    string `json:"cash_in"`
	CashOut   string `json:"cash_out"`
	NetCash   string `json:"net_cash"`
	Revenue   string `json:"revenue"`
	Expenses  string `json:"expenses"`
	NetProfit string `json:"net_profit"`
}

func newTrendResponse(points []analytics.TrendPoint) []TrendPointResponse {
	out := make([]TrendPointResponse, len(points))
	for i, p := range points {
		out[i] = TrendPointResponse{
			Label:     p.Label,
			From:      p.From,
			To:        p.To,
			CashIn:    money.Format(p.CashIn),
			CashOut:   money.Format(p.CashOut),
			NetCash:   money.Format(p.NetCash),
			Revenue:   money.Format(p.Revenue),
			Expenses:  money.Format(p.Expenses),
			NetProfit: money.Format(p.NetProfit),
		}
	}
	return out
}
