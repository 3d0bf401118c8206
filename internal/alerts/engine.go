// Package alerts evaluates advisory rules against a new entry and a fresh
// snapshot of the owner's ledger. The engine is stateless; persisting the
// produced alerts is the caller's job.
package alerts

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledgerbook/internal/analytics"
	"ledgerbook/internal/models"
	"ledgerbook/internal/period"
)

var (
	// ErrInvalidEntry is returned when the triggering entry cannot be evaluated.
	ErrInvalidEntry = errors.New("alerts: invalid entry")
	// ErrNotApplicable is wrapped by rules that lack the data to decide.
	ErrNotApplicable = errors.New("alerts: rule not applicable")
)

// Thresholds tunes the default rules.
type Thresholds struct {
	LargeExpense decimal.Decimal
	LowBalance   decimal.Decimal
	OverrunRatio decimal.Decimal
}

// DefaultThresholds returns the stock rule thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LargeExpense: decimal.NewFromInt(50000),
		LowBalance:   decimal.NewFromInt(10000),
		OverrunRatio: decimal.RequireFromString("1.5"),
	}
}

// Snapshot is the data every rule sees for one evaluation.
type Snapshot struct {
	NewEntry *models.Entry
	Entries  []models.Entry
	// Cash is the all-time cash view.
	Cash analytics.CashView
	// Month is the accrual view of the new entry's calendar month.
	Month analytics.AccrualView
}

// Finding is what a firing rule reports.
type Finding struct {
	Type     models.AlertType
	Priority int
	Title    string
	Message  string
}

// Rule is one independent alert condition. Evaluate returns nil when the
// rule does not fire and an error when it cannot be evaluated.
type Rule interface {
	Code() string
	Evaluate(s *Snapshot) (*Finding, error)
}

// Engine runs a fixed set of rules.
type Engine struct {
	rules []Rule
	log   *zap.SugaredLogger
}

// NewEngine creates an Engine. A nil logger discards rule failures.
func NewEngine(rules []Rule, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{rules: rules, log: log}
}

// NewDefaultEngine creates an Engine with the stock rules.
func NewDefaultEngine(th Thresholds, log *zap.SugaredLogger) *Engine {
	return NewEngine(DefaultRules(th), log)
}

// DefaultRules returns the stock rules in evaluation order.
func DefaultRules(th Thresholds) []Rule {
	return []Rule{
		LargeExpense{Threshold: th.LargeExpense},
		NegativeBalance{},
		LowBalance{Threshold: th.LowBalance},
		ExpenseOverrun{Ratio: th.OverrunRatio},
		ExpensesExceedRevenue{Ratio: th.OverrunRatio},
	}
}

// Evaluate runs every rule against entries plus newEntry and returns the
// alerts to append, highest priority first. A rule that fails is logged
// and skipped; only an unusable newEntry is an error.
func (e *Engine) Evaluate(entries []models.Entry, newEntry *models.Entry, now time.Time) ([]models.Alert, error) {
	if err := validate(newEntry); err != nil {
		return nil, err
	}

	snapshot := &Snapshot{NewEntry: newEntry, Entries: withEntry(entries, newEntry)}
	snapshot.Cash = analytics.CashBasis(snapshot.Entries, period.Range{})
	snapshot.Month = analytics.Accrual(snapshot.Entries, period.Month(newEntry.EntryDate))

	var out []models.Alert
	for _, rule := range e.rules {
		finding, err := rule.Evaluate(snapshot)
		if errors.Is(err, ErrNotApplicable) {
			e.log.Debugw("alert rule not applicable", "rule", rule.Code(), "reason", err)
			continue
		}
		if err != nil {
			e.log.Warnw("alert rule skipped",
				"rule", rule.Code(),
				"entry_id", newEntry.ID,
				"error", err,
			)
			continue
		}
		if finding == nil {
			continue
		}
		entryID := newEntry.ID
		out = append(out, models.Alert{
			OwnerID:   newEntry.OwnerID,
			Type:      finding.Type,
			Priority:  finding.Priority,
			Rule:      rule.Code(),
			Title:     finding.Title,
			Message:   finding.Message,
			EntryID:   &entryID,
			CreatedAt: now,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func validate(e *models.Entry) error {
	switch {
	case e == nil:
		return fmt.Errorf("%w: missing", ErrInvalidEntry)
	case e.OwnerID == "":
		return fmt.Errorf("%w: missing owner", ErrInvalidEntry)
	case !e.EntryType.Valid() || !e.Category.Valid():
		return fmt.Errorf("%w: unknown type or category", ErrInvalidEntry)
	case !e.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	case e.EntryDate.IsZero():
		return fmt.Errorf("%w: missing entry date", ErrInvalidEntry)
	}
	return nil
}

// withEntry returns entries with e included exactly once.
func withEntry(entries []models.Entry, e *models.Entry) []models.Entry {
	if e.ID != "" {
		for i := range entries {
			if entries[i].ID == e.ID {
				return entries
			}
		}
	}
	out := make([]models.Entry, 0, len(entries)+1)
	out = append(out, entries...)
	return append(out, *e)
}
