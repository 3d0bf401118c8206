package alerts

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/models"
	"ledgerbook/internal/money"
)

// Rule codes.
const (
	RuleLargeExpense          = "large_expense"
	RuleNegativeBalance       = "negative_balance"
	RuleLowBalance            = "low_balance"
	RuleExpenseOverrun        = "expense_overrun"
	RuleExpensesExceedRevenue = "expense_exceeds_revenue"
)

// errNoMonthlyData marks a monthly rule that has nothing to compare.
var errNoMonthlyData = fmt.Errorf("%w: no entries recorded for the month", ErrNotApplicable)

// LargeExpense fires when a single organic expense exceeds Threshold. Asset
// sales are inflows and never fire.
type LargeExpense struct {
	Threshold decimal.Decimal
}

func (LargeExpense) Code() string { return RuleLargeExpense }

func (r LargeExpense) Evaluate(s *Snapshot) (*Finding, error) {
	e := s.NewEntry
	if e.IsSettlementDerived || e.EntryType == models.EntryTypeCashIn || !e.Category.IsExpense() {
		return nil, nil
	}
	if !e.Amount.GreaterThan(r.Threshold) {
		return nil, nil
	}
	return &Finding{
		Type:     models.AlertTypeWarning,
		Priority: 2,
		Title:    "Large expense recorded",
		Message: fmt.Sprintf("A %s expense of %s exceeds the %s threshold.",
			e.Category, money.Format(e.Amount), money.Format(r.Threshold)),
	}, nil
}

// NegativeBalance fires when the all-time cash balance is below zero.
type NegativeBalance struct{}

func (NegativeBalance) Code() string { return RuleNegativeBalance }

func (NegativeBalance) Evaluate(s *Snapshot) (*Finding, error) {
	if !s.Cash.Balance.IsNegative() {
		return nil, nil
	}
	return &Finding{
		Type:     models.AlertTypeCritical,
		Priority: 5,
		Title:    "Cash balance is negative",
		Message:  fmt.Sprintf("Cash out exceeds cash in; the balance is %s.", money.Format(s.Cash.Balance)),
	}, nil
}

// LowBalance fires when the cash balance is not negative but below
// Threshold.
type LowBalance struct {
	Threshold decimal.Decimal
}

func (LowBalance) Code() string { return RuleLowBalance }

func (r LowBalance) Evaluate(s *Snapshot) (*Finding, error) {
	b := s.Cash.Balance
	if b.IsNegative() || !b.LessThan(r.Threshold) {
		return nil, nil
	}
	return &Finding{
		Type:     models.AlertTypeWarning,
		Priority: 3,
		Title:    "Cash balance is low",
		Message:  fmt.Sprintf("The cash balance of %s is below %s.", money.Format(b), money.Format(r.Threshold)),
	}, nil
}

// monthly returns the month's revenue and expenses, or errNoMonthlyData
// when the month has no entries. A month with expenses and no revenue is
// an overrun of any ratio.
func monthly(s *Snapshot) (revenue, expenses decimal.Decimal, err error) {
	if s.Month.Entries == 0 {
		return decimal.Zero, decimal.Zero, errNoMonthlyData
	}
	return s.Month.Revenue, s.Month.Expenses(), nil
}

func monthLabel(s *Snapshot) string {
	return s.NewEntry.EntryDate.Format("January 2006")
}

// ExpenseOverrun fires when the month's accrual expenses exceed revenue
// by more than Ratio.
type ExpenseOverrun struct {
	Ratio decimal.Decimal
}

func (ExpenseOverrun) Code() string { return RuleExpenseOverrun }

func (r ExpenseOverrun) Evaluate(s *Snapshot) (*Finding, error) {
	revenue, expenses, err := monthly(s)
	if err != nil {
		return nil, err
	}
	if !expenses.GreaterThan(revenue.Mul(r.Ratio)) {
		return nil, nil
	}
	msg := fmt.Sprintf("Expenses of %s in %s are more than %sx the revenue of %s.",
		money.Format(expenses), monthLabel(s), r.Ratio.String(), money.Format(revenue))
	if revenue.IsZero() {
		msg = fmt.Sprintf("Expenses of %s in %s with no revenue recorded.", money.Format(expenses), monthLabel(s))
	}
	return &Finding{
		Type:     models.AlertTypeCritical,
		Priority: 4,
		Title:    "Expenses far exceed revenue",
		Message:  msg,
	}, nil
}

// ExpensesExceedRevenue fires when the month's expenses exceed revenue
// but stay within Ratio, leaving larger overruns to ExpenseOverrun.
type ExpensesExceedRevenue struct {
	Ratio decimal.Decimal
}

func (ExpensesExceedRevenue) Code() string { return RuleExpensesExceedRevenue }

func (r ExpensesExceedRevenue) Evaluate(s *Snapshot) (*Finding, error) {
	revenue, expenses, err := monthly(s)
	if err != nil {
		return nil, err
	}
	if !expenses.GreaterThan(revenue) || expenses.GreaterThan(revenue.Mul(r.Ratio)) {
		return nil, nil
	}
	return &Finding{
		Type:     models.AlertTypeWarning,
		Priority: 2,
		Title:    "Expenses exceed revenue",
		Message: fmt.Sprintf("Expenses of %s in %s exceed the revenue of %s.",
			money.Format(expenses), monthLabel(s), money.Format(revenue)),
	}, nil
}
