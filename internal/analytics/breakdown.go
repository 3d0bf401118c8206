package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/models"
	"ledgerbook/internal/money"
	"ledgerbook/internal/period"
)

// Unassigned labels entries without a known party.
const Unassigned = "unassigned"

// Share is one group of a breakdown.
type Share struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
	// Percent of the total of the same flow direction.
	Percent decimal.Decimal `json:"percent"`
}

// Breakdown splits a view into inflow and outflow groups.
type Breakdown struct {
	View     View            `json:"view"`
	Income   []Share         `json:"income"`
	Expense  []Share         `json:"expense"`
	TotalIn  decimal.Decimal `json:"total_in"`
	TotalOut decimal.Decimal `json:"total_out"`
}

type grouper func(e *models.Entry) (key, label string)

type accumulator struct {
	order  []string
	shares map[string]*Share
	total  decimal.Decimal
}

func newAccumulator() *accumulator {
	return &accumulator{shares: make(map[string]*Share), total: decimal.Zero}
}

func (a *accumulator) add(key, label string, amount decimal.Decimal) {
	s, ok := a.shares[key]
	if !ok {
		s = &Share{Key: key, Label: label, Amount: decimal.Zero}
		a.shares[key] = s
		a.order = append(a.order, key)
	}
	s.Amount = s.Amount.Add(amount)
	s.Count++
	a.total = a.total.Add(amount)
}

// result returns the groups largest first, ties by key.
func (a *accumulator) result() []Share {
	out := make([]Share, 0, len(a.order))
	for _, k := range a.order {
		s := *a.shares[k]
		s.Amount = money.Round(s.Amount)
		s.Percent = money.Percent(s.Amount, a.total)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func breakdown(entries []models.Entry, r period.Range, v View, group grouper) Breakdown {
	in, out := newAccumulator(), newAccumulator()
	for i := range entries {
		e := &entries[i]
		if !r.Contains(e.EntryDate) {
			continue
		}
		key, label := group(e)
		switch FlowOf(v, e) {
		case FlowIn:
			in.add(key, label, e.Amount)
		case FlowOut:
			out.add(key, label, e.Amount)
		}
	}
	return Breakdown{
		View:     v,
		Income:   in.result(),
		Expense:  out.result(),
		TotalIn:  money.Round(in.total),
		TotalOut: money.Round(out.total),
	}
}

// CategoryBreakdown groups the view's recognised amounts by category.
func CategoryBreakdown(entries []models.Entry, r period.Range, v View) Breakdown {
	return breakdown(entries, r, v, func(e *models.Entry) (string, string) {
		return string(e.Category), string(e.Category)
	})
}

// PartyBreakdown groups the view's recognised amounts by party. Entries
// without a party, or whose party is not in parties, fall under
// Unassigned.
func PartyBreakdown(entries []models.Entry, parties []models.Party, r period.Range, v View) Breakdown {
	names := make(map[string]string, len(parties))
	for _, p := range parties {
		names[p.ID] = p.Name
	}
	return breakdown(entries, r, v, func(e *models.Entry) (string, string) {
		if e.PartyID != nil {
			if name, ok := names[*e.PartyID]; ok {
				return *e.PartyID, name
			}
		}
		return Unassigned, "Unassigned"
	})
}

// PaymentMethodBreakdown groups cash movements by payment method.
func PaymentMethodBreakdown(entries []models.Entry, r period.Range) Breakdown {
	return breakdown(entries, r, ViewCash, func(e *models.Entry) (string, string) {
		return string(e.PaymentMethod), string(e.PaymentMethod)
	})
}
