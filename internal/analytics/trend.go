package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/models"
	"ledgerbook/internal/money"
	"ledgerbook/internal/period"
)

// TrendPoint carries both views for one bucket.
type TrendPoint struct {
	Label     string          `json:"label"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	CashIn    decimal.Decimal `json:"cash_in"`
	CashOut   decimal.Decimal `json:"cash_out"`
	NetCash   decimal.Decimal `json:"net_cash"`
	Revenue   decimal.Decimal `json:"revenue"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetProfit decimal.Decimal `json:"net_profit"`
}

// Trend buckets the entries of a bounded range by day or month. Buckets
// are closed calendar-date intervals, so an entry belongs to exactly one.
func Trend(entries []models.Entry, r period.Range, g period.Granularity) ([]TrendPoint, error) {
	buckets, err := r.Buckets(g)
	if err != nil {
		return nil, err
	}

	points := make([]TrendPoint, len(buckets))
	for i, b := range buckets {
		points[i] = TrendPoint{
			Label:    b.Label,
			From:     b.From.Format("2006-01-02"),
			To:       b.To.Format("2006-01-02"),
			CashIn:   decimal.Zero,
			CashOut:  decimal.Zero,
			Revenue:  decimal.Zero,
			Expenses: decimal.Zero,
		}
	}

	for i := range entries {
		e := &entries[i]
		if !r.Contains(e.EntryDate) {
			continue
		}
		d := models.CalendarDate(e.EntryDate)
		idx := sort.Search(len(buckets), func(j int) bool { return !buckets[j].To.Before(d) })
		if idx == len(buckets) {
			continue
		}
		p := &points[idx]
		switch CashFlow(e) {
		case FlowIn:
			p.CashIn = p.CashIn.Add(e.Amount)
		case FlowOut:
			p.CashOut = p.CashOut.Add(e.Amount)
		}
		switch AccrualFlow(e) {
		case FlowIn:
			p.Revenue = p.Revenue.Add(e.Amount)
		case FlowOut:
			p.Expenses = p.Expenses.Add(e.Amount)
		}
	}

	for i := range points {
		p := &points[i]
		p.CashIn, p.CashOut = money.Round(p.CashIn), money.Round(p.CashOut)
		p.Revenue, p.Expenses = money.Round(p.Revenue), money.Round(p.Expenses)
		p.NetCash = p.CashIn.Sub(p.CashOut)
		p.NetProfit = p.Revenue.Sub(p.Expenses)
	}
	return points, nil
}
