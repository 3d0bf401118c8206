package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/models"
	"ledgerbook/internal/money"
)

// PartyBalance is the outstanding position with one counterparty.
type PartyBalance struct {
	PartyID string           `json:"party_id"`
	Name    string           `json:"name"`
	Kind    models.PartyKind `json:"kind,omitempty"`
	// Receivable is owed to the business: unpaid credit sales and
	// undelivered advances paid to vendors.
	Receivable decimal.Decimal `json:"receivable"`
	// Payable is owed by the business: unpaid credit purchases and
	// undelivered advances received from customers.
	Payable     decimal.Decimal `json:"payable"`
	Net         decimal.Decimal `json:"net"`
	OpenEntries int             `json:"open_entries"`
}

// PendingByParty totals the remaining balance of open Credit and Advance
// entries per party, starting from each party's opening balance. Every
// party is listed; open entries without a known party are grouped under
// Unassigned at the end.
func PendingByParty(entries []models.Entry, parties []models.Party) []PartyBalance {
	byID := make(map[string]*PartyBalance, len(parties))
	out := make([]*PartyBalance, 0, len(parties)+1)
	for _, p := range parties {
		b := &PartyBalance{PartyID: p.ID, Name: p.Name, Kind: p.Kind, Receivable: decimal.Zero, Payable: decimal.Zero}
		if p.OpeningBalance.IsPositive() {
			if p.Kind == models.PartyKindVendor {
				b.Payable = p.OpeningBalance
			} else {
				b.Receivable = p.OpeningBalance
			}
		}
		byID[p.ID] = b
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	var unassigned *PartyBalance
	for i := range entries {
		e := &entries[i]
		if !e.EntryType.Settleable() || e.Settled || !e.RemainingAmount.IsPositive() {
			continue
		}
		var b *PartyBalance
		if e.PartyID != nil {
			b = byID[*e.PartyID]
		}
		if b == nil {
			if unassigned == nil {
				unassigned = &PartyBalance{PartyID: Unassigned, Name: "Unassigned", Receivable: decimal.Zero, Payable: decimal.Zero}
			}
			b = unassigned
		}
		if owedToUs(e) {
			b.Receivable = b.Receivable.Add(e.RemainingAmount)
		} else {
			b.Payable = b.Payable.Add(e.RemainingAmount)
		}
		b.OpenEntries++
	}
	if unassigned != nil {
		out = append(out, unassigned)
	}

	result := make([]PartyBalance, len(out))
	for i, b := range out {
		b.Receivable = money.Round(b.Receivable)
		b.Payable = money.Round(b.Payable)
		b.Net = b.Receivable.Sub(b.Payable)
		result[i] = *b
	}
	return result
}

func owedToUs(e *models.Entry) bool {
	sale := e.Category == models.CategorySales
	if e.EntryType == models.EntryTypeCredit {
		return sale
	}
	return !sale
}
