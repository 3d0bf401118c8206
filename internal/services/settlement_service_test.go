package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"ledgerbook/internal/events"
	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/models"
	"ledgerbook/internal/period"
	"ledgerbook/internal/store"
	"ledgerbook/internal/testutil"
)

func TestCreateSettlement(t *testing.T) {
	t.Run("partial_then_full_credit_sale", func(t *testing.T) {
		eachLedger(t, func(t *testing.T, l *ledger) {
			owner := testutil.NewOwnerID()
			sale := l.create(t, owner, models.EntryTypeCredit, models.CategorySales, "5000", "2024-05-01")

			res := l.settle(t, owner, sale.ID, "3000", "2024-05-10")
			testutil.AssertDecimal(t, res.Entry.RemainingAmount, "2000")
			if res.Entry.Settled || res.Entry.SettledAt != nil {
				t.Error("expected entry to stay open after a partial settlement")
			}
			if res.Entry.Status() != models.StatusPartiallySettled {
				t.Errorf("expected partially_settled, got %s", res.Entry.Status())
			}
			if res.Settlement.SettlementType != models.SettlementTypeCredit {
				t.Errorf("expected credit settlement, got %s", res.Settlement.SettlementType)
			}

			derived := res.Derived
			if derived == nil {
				t.Fatal("expected a derived cash entry")
			}
			if derived.EntryType != models.EntryTypeCashIn || derived.Category != models.CategorySales {
				t.Errorf("expected CashIn/Sales, got %s/%s", derived.EntryType, derived.Category)
			}
			testutil.AssertDecimal(t, derived.Amount, "3000")
			if !derived.IsSettlementDerived || derived.SourceEntryID == nil || *derived.SourceEntryID != sale.ID {
				t.Error("expected derived entry to point at its source")
			}
			if !strings.HasPrefix(derived.Notes, models.SettlementNotePrefix) {
				t.Errorf("unexpected derived notes %q", derived.Notes)
			}
			if res.Settlement.DerivedEntryID == nil || *res.Settlement.DerivedEntryID != derived.ID {
				t.Error("expected settlement to reference the derived entry")
			}

			stored := l.reload(t, owner, sale.ID)
			testutil.AssertDecimal(t, stored.RemainingAmount, "2000")
			if stored.Version != 2 {
				t.Errorf("expected version 2, got %d", stored.Version)
			}

			res = l.settle(t, owner, sale.ID, "2000", "2024-05-12")
			testutil.AssertDecimal(t, res.Entry.RemainingAmount, "0")
			if !res.Entry.Settled || res.Entry.SettledAt == nil {
				t.Fatal("expected entry to be settled")
			}
			if got := res.Entry.SettledAt.Format("2006-01-02"); got != "2024-05-12" {
				t.Errorf("expected settled_at 2024-05-12, got %s", got)
			}
			if n := len(l.derivedFrom(t, owner, sale.ID)); n != 2 {
				t.Errorf("expected 2 derived entries, got %d", n)
			}
		})
	})

	t.Run("exceeding_remaining_changes_nothing", func(t *testing.T) {
		eachLedger(t, func(t *testing.T, l *ledger) {
			owner := testutil.NewOwnerID()
			sale := l.create(t, owner, models.EntryTypeCredit, models.CategorySales, "5000", "2024-05-01")
			l.settle(t, owner, sale.ID, "3000", "2024-05-10")

			_, err := l.settlements.CreateSettlement(context.Background(), owner, SettlementInput{
				EntryID: sale.ID,
				Amount:  testutil.Amount(t, "2500"),
			})
			testutil.AssertAppError(t, err, "EXCEEDS_REMAINING_BALANCE")

			stored := l.reload(t, owner, sale.ID)
			testutil.AssertDecimal(t, stored.RemainingAmount, "2000")
			if stored.Version != 2 {
				t.Errorf("expected version 2, got %d", stored.Version)
			}
			if n := len(l.derivedFrom(t, owner, sale.ID)); n != 1 {
				t.Errorf("expected 1 derived entry, got %d", n)
			}
			list, err := l.settlements.ListSettlements(context.Background(), owner, sale.ID)
			testutil.AssertNoError(t, err)
			if len(list) != 1 {
				t.Errorf("expected 1 settlement, got %d", len(list))
			}
		})
	})

	t.Run("credit_purchase_derives_cash_out", func(t *testing.T) {
		eachLedger(t, func(t *testing.T, l *ledger) {
			owner := testutil.NewOwnerID()
			purchase := l.create(t, owner, models.EntryTypeCredit, models.CategoryCOGS, "800", "2024-05-01")

			res := l.settle(t, owner, purchase.ID, "800", "2024-05-03")
			if res.Derived == nil || res.Derived.EntryType != models.EntryTypeCashOut || res.Derived.Category != models.CategoryCOGS {
				t.Fatalf("expected CashOut/COGS derived entry, got %+v", res.Derived)
			}
			if res.Derived.PaymentMethod != models.PaymentMethodCash {
				t.Errorf("expected Cash payment method, got %s", res.Derived.PaymentMethod)
			}
		})
	})

	t.Run("advance_has_no_derived_entry", func(t *testing.T) {
		eachLedger(t, func(t *testing.T, l *ledger) {
			owner := testutil.NewOwnerID()
			advance := l.create(t, owner, models.EntryTypeAdvance, models.CategorySales, "1000", "2024-05-01")

			res := l.settle(t, owner, advance.ID, "1000", "2024-05-05")
			if res.Derived != nil {
				t.Error("expected no derived entry for an advance")
			}
			if res.Settlement.SettlementType != models.SettlementTypeAdvance {
				t.Errorf("expected advance settlement, got %s", res.Settlement.SettlementType)
			}
			if !res.Entry.Settled {
				t.Error("expected advance to be settled")
			}
		})
	})

	t.Run("rejections", func(t *testing.T) {
		eachLedger(t, func(t *testing.T, l *ledger) {
			ctx := context.Background()
			owner := testutil.NewOwnerID()
			cash := l.create(t, owner, models.EntryTypeCashIn, models.CategorySales, "100", "2024-05-01")
			sale := l.create(t, owner, models.EntryTypeCredit, models.CategorySales, "100", "2024-05-10")

			cases := []struct {
				name  string
				owner string
				in    SettlementInput
				code  string
			}{
				{"not_settleable", owner, SettlementInput{EntryID: cash.ID, Amount: testutil.Amount(t, "10")}, "ENTRY_NOT_SETTLEABLE"},
				{"zero_amount", owner, SettlementInput{EntryID: sale.ID}, "INVALID_INPUT"},
				{"before_entry_date", owner, SettlementInput{EntryID: sale.ID, Amount: testutil.Amount(t, "10"), SettlementDate: testutil.Date(t, "2024-05-09")}, "INVALID_INPUT"},
				{"future_date", owner, SettlementInput{EntryID: sale.ID, Amount: testutil.Amount(t, "10"), SettlementDate: testutil.Date(t, "2024-05-16")}, "INVALID_INPUT"},
				{"payment_none", owner, SettlementInput{EntryID: sale.ID, Amount: testutil.Amount(t, "10"), PaymentMethod: models.PaymentMethodNone}, "INVALID_INPUT"},
				{"missing_entry", owner, SettlementInput{EntryID: "00000000-0000-0000-0000-000000000000", Amount: testutil.Amount(t, "10")}, "ENTRY_NOT_FOUND"},
				{"other_owner", testutil.NewOwnerID(), SettlementInput{EntryID: sale.ID, Amount: testutil.Amount(t, "10")}, "ENTRY_NOT_FOUND"},
				{"no_owner", "", SettlementInput{EntryID: sale.ID, Amount: testutil.Amount(t, "10")}, "UNAUTHORIZED"},
			}
			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					_, err := l.settlements.CreateSettlement(ctx, tc.owner, tc.in)
					testutil.AssertAppError(t, err, tc.code)
				})
			}
			testutil.AssertDecimal(t, l.reload(t, owner, sale.ID).RemainingAmount, "100")
		})
	})

	t.Run("rate_limited", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewSettlementService(st, nil, denyAll{}, testClock(), 1)
		_, err := svc.CreateSettlement(context.Background(), testutil.NewOwnerID(), SettlementInput{EntryID: "x", Amount: testutil.Amount(t, "1")})
		testutil.AssertAppError(t, err, "RATE_LIMITED")
	})

	t.Run("publishes_after_commit", func(t *testing.T) {
		l := newLedger(store.NewMemoryStore())
		owner := testutil.NewOwnerID()
		sale := l.create(t, owner, models.EntryTypeCredit, models.CategorySales, "100", "2024-05-01")
		l.settle(t, owner, sale.ID, "40", "2024-05-02")

		got := l.pub.types()
		want := []events.Type{events.EntryCreated, events.SettlementApplied}
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("expected events %v, got %v", want, got)
		}
		applied := l.pub.events[1]
		if applied.Derived == nil || applied.Settlement == nil {
			t.Error("expected the applied event to carry the settlement and derived entry")
		}
	})
}

func TestSettledCreditCountsRevenueOnce(t *testing.T) {
	eachLedger(t, func(t *testing.T, l *ledger) {
		ctx := context.Background()
		owner := testutil.NewOwnerID()
		sale := l.create(t, owner, models.EntryTypeCredit, models.CategorySales, "1000", "2024-05-02")
		l.settle(t, owner, sale.ID, "1000", "2024-05-06")

		may := period.Month(testutil.Date(t, "2024-05-01"))
		accrual, err := l.reports.AccrualReport(ctx, owner, may)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, accrual.View.Revenue, "1000")

		cash, err := l.reports.CashReport(ctx, owner, may)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, cash.View.CashIn, "1000")
	})
}

func TestReverseSettlement(t *testing.T) {
	t.Run("restores_entry", func(t *testing.T) {
		eachLedger(t, func(t *testing.T, l *ledger) {
			ctx := context.Background()
			owner := testutil.NewOwnerID()
			sale := l.create(t, owner, models.EntryTypeCredit, models.CategorySales, "800", "2024-05-01")
			before := l.reload(t, owner, sale.ID)

			res := l.settle(t, owner, sale.ID, "800", "2024-05-04")
			rev, err := l.settlements.ReverseSettlement(ctx, owner, res.Settlement.ID)
			testutil.AssertNoError(t, err)

			if rev.RemovedDerivedID != res.Derived.ID {
				t.Errorf("expected derived entry %s removed, got %q", res.Derived.ID, rev.RemovedDerivedID)
			}
			after := l.reload(t, owner, sale.ID)
			testutil.AssertDecimal(t, after.Amount, before.Amount.String())
			testutil.AssertDecimal(t, after.RemainingAmount, before.RemainingAmount.String())
			if after.Settled != before.Settled || after.SettledAt != nil {
				t.Error("expected settlement state to be restored")
			}
			if len(l.derivedFrom(t, owner, sale.ID)) != 0 {
				t.Error("expected derived entry to be gone")
			}
			_, err = l.settlements.GetSettlement(ctx, owner, res.Settlement.ID)
			testutil.AssertAppError(t, err, "SETTLEMENT_NOT_FOUND")

			_, err = l.settlements.ReverseSettlement(ctx, owner, res.Settlement.ID)
			testutil.AssertAppError(t, err, "SETTLEMENT_NOT_FOUND")
		})
	})

	t.Run("partial_reversal_recomputes_from_remaining", func(t *testing.T) {
		eachLedger(t, func(t *testing.T, l *ledger) {
			ctx := context.Background()
			owner := testutil.NewOwnerID()
			sale := l.create(t, owner, models.EntryTypeCredit, models.CategorySales, "5000", "2024-05-01")
			first := l.settle(t, owner, sale.ID, "1000", "2024-05-02")
			l.settle(t, owner, sale.ID, "2000", "2024-05-05")
			l.settle(t, owner, sale.ID, "2000", "2024-05-08")

			rev, err := l.settlements.ReverseSettlement(ctx, owner, first.Settlement.ID)
			testutil.AssertNoError(t, err)
			testutil.AssertDecimal(t, rev.Entry.RemainingAmount, "1000")
			if rev.Entry.Settled {
				t.Error("expected entry to be reopened")
			}
			if n := len(l.derivedFrom(t, owner, sale.ID)); n != 2 {
				t.Errorf("expected 2 derived entries left, got %d", n)
			}
		})
	})

	t.Run("original_deleted", func(t *testing.T) {
		eachLedger(t, func(t *testing.T, l *ledger) {
			ctx := context.Background()
			owner := testutil.NewOwnerID()
			sale := l.create(t, owner, models.EntryTypeCredit, models.CategorySales, "500", "2024-05-01")
			res := l.settle(t, owner, sale.ID, "200", "2024-05-02")

			del, err := l.entries.DeleteEntry(ctx, owner, sale.ID)
			testutil.AssertNoError(t, err)
			if del.ActiveSettlements != 1 || del.Warning == "" {
				t.Errorf("expected a warning about 1 settlement, got %+v", del)
			}

			rev, err := l.settlements.ReverseSettlement(ctx, owner, res.Settlement.ID)
			testutil.AssertNoError(t, err)
			if rev.Entry != nil {
				t.Error("expected no entry for a deleted original")
			}
			_, err = l.store.GetEntry(ctx, owner, res.Derived.ID)
			if !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected derived entry removed, got %v", err)
			}
		})
	})
}

func TestConcurrentSettlementsNeverOverSettle(t *testing.T) {
	l := newLedger(store.NewMemoryStore())
	ctx := context.Background()
	owner := testutil.NewOwnerID()
	sale := l.create(t, owner, models.EntryTypeCredit, models.CategorySales, "1000", "2024-05-01")

	amount := testutil.Amount(t, "100")
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		exceeded  atomic.Int64
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.settlements.CreateSettlement(ctx, owner, SettlementInput{
				EntryID: sale.ID,
				Amount:  amount,
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperrors.ErrExceedsRemaining):
				exceeded.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded.Load() != 10 || exceeded.Load() != 10 {
		t.Errorf("expected 10 successes and 10 rejections, got %d and %d", succeeded.Load(), exceeded.Load())
	}
	stored := l.reload(t, owner, sale.ID)
	testutil.AssertDecimal(t, stored.RemainingAmount, "0")
	if err := stored.CheckInvariants(); err != nil {
		t.Errorf("invariants broken: %v", err)
	}
	list, err := l.settlements.ListSettlements(ctx, owner, sale.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, sumSettlements(list), "1000")
}

// conflictStore makes the first n compare-and-updates inside a
// transaction lose their race.
type conflictStore struct {
	store.Store
	remaining atomic.Int64
}

func (c *conflictStore) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	return c.Store.WithinTx(ctx, func(tx store.Store) error {
		return fn(&conflictTx{Store: tx, parent: c})
	})
}

type conflictTx struct {
	store.Store
	parent *conflictStore
}

func (c *conflictTx) CompareAndUpdateEntry(ctx context.Context, entry *models.Entry, expected int64) error {
	if c.parent.remaining.Add(-1) >= 0 {
		return store.ErrConflict
	}
	return c.Store.CompareAndUpdateEntry(ctx, entry, expected)
}

func TestSettlementConflictRetry(t *testing.T) {
	setup := func(t *testing.T, conflicts int64) (*conflictStore, SettlementServicer, string, *models.Entry) {
		mem := store.NewMemoryStore()
		owner := testutil.NewOwnerID()
		sale := testutil.CreateTestEntryOn(t, mem, owner, models.EntryTypeCredit, models.CategorySales, "500", testutil.Date(t, "2024-05-01"))
		cs := &conflictStore{Store: mem}
		cs.remaining.Store(conflicts)
		return cs, NewSettlementService(cs, nil, nil, testClock(), 1), owner, sale
	}

	t.Run("retry_succeeds", func(t *testing.T) {
		cs, svc, owner, sale := setup(t, 1)
		res, err := svc.CreateSettlement(context.Background(), owner, SettlementInput{EntryID: sale.ID, Amount: testutil.Amount(t, "200")})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, res.Entry.RemainingAmount, "300")

		derived := true
		list, err := cs.ListEntries(context.Background(), owner, store.EntryFilter{Derived: &derived})
		testutil.AssertNoError(t, err)
		if len(list) != 1 {
			t.Errorf("expected exactly 1 derived entry, got %d", len(list))
		}
	})

	t.Run("retries_exhausted", func(t *testing.T) {
		cs, svc, owner, sale := setup(t, 5)
		_, err := svc.CreateSettlement(context.Background(), owner, SettlementInput{EntryID: sale.ID, Amount: testutil.Amount(t, "200")})
		testutil.AssertAppError(t, err, "CONCURRENT_MODIFICATION")

		stored, err := cs.GetEntry(context.Background(), owner, sale.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, stored.RemainingAmount, "500")
		if stored.Version != sale.Version {
			t.Errorf("expected version %d, got %d", sale.Version, stored.Version)
		}
		derived := true
		list, err := cs.ListEntries(context.Background(), owner, store.EntryFilter{Derived: &derived})
		testutil.AssertNoError(t, err)
		if len(list) != 0 {
			t.Errorf("expected no derived entries, got %d", len(list))
		}
	})
}
