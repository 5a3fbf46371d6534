// Package budget compares candidate expenses against a project's remaining
// budget. Nothing here blocks a submission; results are informational.
package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fliptrack/internal/core"
)

// Warning describes an expense that would overrun the remaining budget.
type Warning struct {
	Remaining core.Money
	Overage   core.Money
}

func (w Warning) String() string {
	return fmt.Sprintf("This expense exceeds the remaining budget by %s (remaining: %s)",
		w.Overage.Format(), w.Remaining.Format())
}

// Check reports a warning when cost exceeds budget-spent. No check applies
// when the project has no budget or nothing remains of it.
func Check(budget, spent, cost core.Money) (Warning, bool) {
	if !budget.IsPositive() {
		return Warning{}, false
	}
	remaining := budget.Sub(spent)
	if !remaining.IsPositive() || !cost.GreaterThan(remaining) {
		return Warning{}, false
	}
	return Warning{Remaining: remaining, Overage: cost.Sub(remaining)}, true
}

// Level is the budget usage band shown on the status panel.
type Level int

const (
	OK Level = iota
	Alert
	Caution
	Exceeded
)

func (l Level) String() string {
	switch l {
	case Alert:
		return "alert"
	case Caution:
		return "warning"
	case Exceeded:
		return "exceeded"
	default:
		return "ok"
	}
}

var (
	alertAt    = decimal.NewFromInt(80)
	cautionAt  = decimal.NewFromInt(90)
	exceededAt = decimal.NewFromInt(100)
	hundred    = decimal.NewFromInt(100)
)

// Usage returns the share of the budget already spent, in percent, and the
// band it falls in. A project without a budget is always OK.
func Usage(budget, spent core.Money) (Level, decimal.Decimal) {
	if !budget.IsPositive() {
		return OK, decimal.Zero
	}
	raw := spent.Mul(hundred).Div(budget.Decimal)
	pct := raw.Round(1)
	switch {
	case raw.GreaterThanOrEqual(exceededAt):
		return Exceeded, pct
	case raw.GreaterThanOrEqual(cautionAt):
		return Caution, pct
	case raw.GreaterThanOrEqual(alertAt):
		return Alert, pct
	}
	return OK, pct
}
