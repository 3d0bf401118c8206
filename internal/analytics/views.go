// Package analytics computes the cash-basis and accrual-basis views of a
// set of entries. Every function here is pure: it reads the slice it is
// given, never mutates it, and is safe to call concurrently.
package analytics

import (
	"github.com/shopspring/decimal"

	"ledgerbook/internal/models"
	"ledgerbook/internal/money"
	"ledgerbook/internal/period"
)

// View selects the accounting basis.
type View string

const (
	ViewCash    View = "cash"
	ViewAccrual View = "accrual"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	return v == ViewCash || v == ViewAccrual
}

// Flow is the direction in which an entry moves money within a view.
type Flow int

const (
	FlowNone Flow = iota
	FlowIn
	FlowOut
)

// CashView answers "how much cash do I have" for a period.
type CashView struct {
	Period  period.Range    `json:"period"`
	CashIn  decimal.Decimal `json:"cash_in"`
	CashOut decimal.Decimal `json:"cash_out"`
	Balance decimal.Decimal `json:"balance"`
	Entries int             `json:"entries"`
}

// AccrualView answers "how profitable am I" for a period.
type AccrualView struct {
	Period      period.Range    `json:"period"`
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	Opex        decimal.Decimal `json:"opex"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	// Margin is NetProfit/Revenue to four places, zero without revenue.
	Margin  decimal.Decimal `json:"margin"`
	Entries int             `json:"entries"`
}

// CashFlow classifies an entry for the cash view. Credit entries never
// move cash; their settlements do, through derived entries.
func CashFlow(e *models.Entry) Flow {
	switch e.EntryType {
	case models.EntryTypeCashIn:
		return FlowIn
	case models.EntryTypeCashOut:
		return FlowOut
	case models.EntryTypeAdvance:
		if e.Category == models.CategorySales {
			return FlowIn
		}
		return FlowOut
	}
	return FlowNone
}

// AccrualFlow classifies an entry for the accrual view. Settlement-derived
// cash entries are skipped because their original Credit entry was already
// recognised, and advances count only once settled. Asset purchases are
// capitalised and never reach profit.
func AccrualFlow(e *models.Entry) Flow {
	switch e.EntryType {
	case models.EntryTypeCashIn, models.EntryTypeCashOut:
		if e.IsSettlementDerived {
			return FlowNone
		}
	case models.EntryTypeCredit:
	case models.EntryTypeAdvance:
		if !e.Settled {
			return FlowNone
		}
	default:
		return FlowNone
	}
	switch e.Category {
	case models.CategorySales:
		return FlowIn
	case models.CategoryCOGS, models.CategoryOpex:
		return FlowOut
	}
	return FlowNone
}

// FlowOf classifies an entry for the given view.
func FlowOf(v View, e *models.Entry) Flow {
	if v == ViewAccrual {
		return AccrualFlow(e)
	}
	return CashFlow(e)
}

// CashBasis computes the cash view of the entries dated within r.
func CashBasis(entries []models.Entry, r period.Range) CashView {
	view := CashView{Period: r, CashIn: decimal.Zero, CashOut: decimal.Zero}
	for i := range entries {
		e := &entries[i]
		if !r.Contains(e.EntryDate) {
			continue
		}
		switch CashFlow(e) {
		case FlowIn:
			view.CashIn = view.CashIn.Add(e.Amount)
		case FlowOut:
			view.CashOut = view.CashOut.Add(e.Amount)
		default:
			continue
		}
		view.Entries++
	}
	view.CashIn = money.Round(view.CashIn)
	view.CashOut = money.Round(view.CashOut)
	view.Balance = view.CashIn.Sub(view.CashOut)
	return view
}

// Accrual computes the accrual view of the entries dated within r.
func Accrual(entries []models.Entry, r period.Range) AccrualView {
	view := AccrualView{Period: r, Revenue: decimal.Zero, COGS: decimal.Zero, Opex: decimal.Zero}
	for i := range entries {
		e := &entries[i]
		if !r.Contains(e.EntryDate) {
			continue
		}
		if AccrualFlow(e) == FlowNone {
			continue
		}
		switch e.Category {
		case models.CategorySales:
			view.Revenue = view.Revenue.Add(e.Amount)
		case models.CategoryCOGS:
			view.COGS = view.COGS.Add(e.Amount)
		case models.CategoryOpex:
			view.Opex = view.Opex.Add(e.Amount)
		}
		view.Entries++
	}
	view.Revenue = money.Round(view.Revenue)
	view.COGS = money.Round(view.COGS)
	view.Opex = money.Round(view.Opex)
	view.GrossProfit = view.Revenue.Sub(view.COGS)
	view.NetProfit = view.GrossProfit.Sub(view.Opex)
	view.Margin = money.Ratio(view.NetProfit, view.Revenue)
	return view
}

// Expenses returns the accrual expenses (COGS plus Opex) of the view.
func (v AccrualView) Expenses() decimal.Decimal {
	return v.COGS.Add(v.Opex)
}
