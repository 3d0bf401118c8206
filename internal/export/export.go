// Package export renders ledger reports as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"ledgerbook/internal/analytics"
	"ledgerbook/internal/models"
	"ledgerbook/internal/period"
)

// Sheet names, in workbook order.
const (
	SheetSummary = "Summary"
	SheetEntries = "Entries"
	SheetTrend   = "Trend"
	SheetParties = "Pending"
)

// Report is everything rendered into one workbook.
type Report struct {
	Range       period.Range
	GeneratedAt time.Time
	Cash        analytics.CashView
	Accrual     analytics.AccrualView
	Entries     []models.Entry
	Trend       []analytics.TrendPoint
	Pending     []analytics.PartyBalance
}

// Workbook builds the XLSX file for r.
func Workbook(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetEntries, SheetTrend, SheetParties} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, bold: bold}
	w.summary(r)
	w.entries(r.Entries)
	w.trend(r.Trend)
	w.pending(r.Pending)
	if w.err != nil {
		return nil, w.err
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so row writers stay linear.
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (w *sheetWriter) row(sheet string, n int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) header(sheet string, n int, values ...any) {
	w.row(sheet, n, values...)
	if w.err != nil {
		return
	}
	end, err := excelize.CoordinatesToCellName(len(values), n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, fmt.Sprintf("A%d", n), end, w.bold)
}

func (w *sheetWriter) widths(sheet string, widths ...float64) {
	for i, width := range widths {
		if w.err != nil {
			return
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			w.err = err
			return
		}
		w.err = w.f.SetColWidth(sheet, col, col, width)
	}
}

func (w *sheetWriter) summary(r Report) {
	rows := [][]any{
		{"Period", r.Range.String()},
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{},
		{"Cash In", r.Cash.CashIn.StringFixed(2)},
		{"Cash Out", r.Cash.CashOut.StringFixed(2)},
		{"Balance", r.Cash.Balance.StringFixed(2)},
		{},
		{"Revenue", r.Accrual.Revenue.StringFixed(2)},
		{"COGS", r.Accrual.COGS.StringFixed(2)},
		{"Opex", r.Accrual.Opex.StringFixed(2)},
		{"Gross Profit", r.Accrual.GrossProfit.StringFixed(2)},
		{"Net Profit", r.Accrual.NetProfit.StringFixed(2)},
		{"Margin", r.Accrual.Margin.StringFixed(4)},
	}
	w.header(SheetSummary, 1, "Metric", "Value")
	for i, values := range rows {
		w.row(SheetSummary, i+2, values...)
	}
	w.widths(SheetSummary, 18, 40)
}

func (w *sheetWriter) entries(entries []models.Entry) {
	w.header(SheetEntries, 1, "Date", "Type", "Category", "Payment", "Amount", "Remaining", "Status", "Party", "Notes")
	for i := range entries {
		e := &entries[i]
		party := ""
		if e.PartyID != nil {
			party = *e.PartyID
		}
		w.row(SheetEntries, i+2,
			e.EntryDate.Format("2006-01-02"),
			string(e.EntryType),
			string(e.Category),
			string(e.PaymentMethod),
			e.Amount.StringFixed(2),
			e.RemainingAmount.StringFixed(2),
			string(e.Status()),
			party,
			e.Notes,
		)
	}
	w.widths(SheetEntries, 12, 10, 10, 10, 14, 14, 18, 38, 40)
}

func (w *sheetWriter) trend(points []analytics.TrendPoint) {
	w.header(SheetTrend, 1, "Bucket", "Cash In", "Cash Out", "Net Cash", "Revenue", "Expenses", "Net Profit")
	for i, p := range points {
		w.row(SheetTrend, i+2,
			p.Label,
			p.CashIn.StringFixed(2),
			p.CashOut.StringFixed(2),
			p.NetCash.StringFixed(2),
			p.Revenue.StringFixed(2),
			p.Expenses.StringFixed(2),
			p.NetProfit.StringFixed(2),
		)
	}
	w.widths(SheetTrend, 12, 14, 14, 14, 14, 14, 14)
}

func (w *sheetWriter) pending(balances []analytics.PartyBalance) {
	w.header(SheetParties, 1, "Party", "Kind", "Receivable", "Payable", "Net", "Open Entries")
	for i, b := range balances {
		w.row(SheetParties, i+2,
			b.Name,
			string(b.Kind),
			b.Receivable.StringFixed(2),
			b.Payable.StringFixed(2),
			b.Net.StringFixed(2),
			b.OpenEntries,
		)
	}
	w.widths(SheetParties, 30, 10, 14, 14, 14, 12)
}
