package evaluator

import (
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
)

// Tier is the qualitative status bucket of a budget.
type Tier string

const (
	TierNormal   Tier = "normal"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

var (
	hundred           = decimal.NewFromInt(100)
	criticalThreshold = decimal.NewFromInt(90)
	warningThreshold  = decimal.NewFromInt(75)
)

// BudgetDefinition is the evaluator's view of a user budget. An empty
// CategoryRef covers all categories.
type BudgetDefinition struct {
	LimitAmount decimal.Decimal
	Period      core.PeriodKind
	CategoryRef string
}

// BudgetProgress is the state of a budget at a given instant.
type BudgetProgress struct {
	PeriodStart time.Time       `json:"periodStart"`
	Spent       decimal.Decimal `json:"spent"`
	LimitAmount decimal.Decimal `json:"limitAmount"`
	// Percentage is capped at 100.
	Percentage decimal.Decimal `json:"percentage"`
	// Overage is spent minus limit when positive, zero otherwise. Never capped.
	Overage decimal.Decimal `json:"overage"`
	Tier    Tier            `json:"tier"`
}

// ClassifyTier maps a spent percentage to a tier. Thresholds are inclusive.
func ClassifyTier(percentage decimal.Decimal) Tier {
	switch {
	case percentage.GreaterThanOrEqual(criticalThreshold):
		return TierCritical
	case percentage.GreaterThanOrEqual(warningThreshold):
		return TierWarning
	default:
		return TierNormal
	}
}

// EvaluateBudget computes outflow spend for the budget's current period and
// classifies it. A non-positive limit or unknown period is a
// *ConfigurationError.
func EvaluateBudget(b BudgetDefinition, events []MonetaryEvent, now time.Time) (BudgetProgress, error) {
	if !b.LimitAmount.IsPositive() {
		return BudgetProgress{}, &ConfigurationError{Field: "limitAmount", Reason: "must be greater than zero"}
	}
	start, err := PeriodStart(now, b.Period)
	if err != nil {
		return BudgetProgress{}, err
	}

	spent := Spend(events, start, now, b.CategoryRef, true)
	pct := spent.Div(b.LimitAmount).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	overage := spent.Sub(b.LimitAmount)
	if !overage.IsPositive() {
		overage = decimal.Zero
	}

	return BudgetProgress{
		PeriodStart: start,
		Spent:       spent,
		LimitAmount: b.LimitAmount,
		Percentage:  pct,
		Overage:     overage,
		Tier:        ClassifyTier(pct),
	}, nil
}
