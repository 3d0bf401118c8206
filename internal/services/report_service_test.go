package services

import (
	"bytes"
	"context"
	"testing"

	"ledgerbook/internal/models"
	"ledgerbook/internal/period"
	"ledgerbook/internal/testutil"
)

func TestReports(t *testing.T) {
	eachLedger(t, func(t *testing.T, l *ledger) {
		ctx := context.Background()
		owner := testutil.NewOwnerID()
		l.create(t, owner, models.EntryTypeCashIn, models.CategorySales, "2000", "2024-05-02")
		l.create(t, owner, models.EntryTypeCashOut, models.CategoryCOGS, "700", "2024-05-03")
		l.create(t, owner, models.EntryTypeCashOut, models.CategoryAssets, "900", "2024-05-03")
		credit := l.create(t, owner, models.EntryTypeCredit, models.CategoryOpex, "300", "2024-05-04")
		l.settle(t, owner, credit.ID, "100", "2024-05-06")
		l.create(t, owner, models.EntryTypeCashIn, models.CategorySales, "5000", "2024-04-20")

		may := period.Month(testutil.Date(t, "2024-05-01"))

		cash, err := l.reports.CashReport(ctx, owner, may)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, cash.View.CashIn, "2000")
		testutil.AssertDecimal(t, cash.View.CashOut, "1700")
		testutil.AssertDecimal(t, cash.View.Balance, "300")

		accrual, err := l.reports.AccrualReport(ctx, owner, may)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, accrual.View.Revenue, "2000")
		testutil.AssertDecimal(t, accrual.View.COGS, "700")
		testutil.AssertDecimal(t, accrual.View.Opex, "300")
		testutil.AssertDecimal(t, accrual.View.NetProfit, "1000")

		trend, err := l.reports.Trend(ctx, owner, may, period.Daily)
		testutil.AssertNoError(t, err)
		if len(trend) != 31 {
			t.Fatalf("expected 31 daily buckets, got %d", len(trend))
		}
		testutil.AssertDecimal(t, trend[1].CashIn, "2000")
	})
}

func TestAssetSaleIsCashOnly(t *testing.T) {
	eachLedger(t, func(t *testing.T, l *ledger) {
		ctx := context.Background()
		owner := testutil.NewOwnerID()
		l.create(t, owner, models.EntryTypeCashIn, models.CategorySales, "2000", "2024-05-02")
		l.create(t, owner, models.EntryTypeCashIn, models.CategoryAssets, "1500", "2024-05-03")

		may := period.Month(testutil.Date(t, "2024-05-01"))

		cash, err := l.reports.CashReport(ctx, owner, may)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, cash.View.CashIn, "3500")
		testutil.AssertDecimal(t, cash.View.Balance, "3500")

		accrual, err := l.reports.AccrualReport(ctx, owner, may)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, accrual.View.Revenue, "2000")
		testutil.AssertDecimal(t, accrual.View.NetProfit, "2000")
	})
}

func TestTrendRequiresBoundedRange(t *testing.T) {
	l := newLedger(setupGormStore(t))
	_, err := l.reports.Trend(context.Background(), testutil.NewOwnerID(), period.Range{}, period.Monthly)
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestExport(t *testing.T) {
	eachLedger(t, func(t *testing.T, l *ledger) {
		owner := testutil.NewOwnerID()
		l.create(t, owner, models.EntryTypeCashIn, models.CategorySales, "2000", "2023-11-02")
		l.create(t, owner, models.EntryTypeCredit, models.CategoryCOGS, "500", "2024-05-03")

		data, err := l.reports.Export(context.Background(), owner, period.Range{})
		testutil.AssertNoError(t, err)
		if !bytes.HasPrefix(data, []byte("PK")) {
			t.Error("expected an XLSX (zip) payload")
		}
	})
}
