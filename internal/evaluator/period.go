// Package evaluator holds the pure date and money arithmetic behind budgets,
// bills and subscriptions: period windows, spend aggregation, budget tiers,
// due-date urgency and next-billing projection.
//
// Every function here is deterministic in its arguments. Callers pass the
// reference instant explicitly; nothing reads the wall clock.
package evaluator

import (
	"time"

	"finsmart/internal/core"
)

// PeriodStart returns the inclusive lower bound of the period containing now,
// expressed at midnight in now's location. Weeks start on Sunday.
func PeriodStart(now time.Time, period core.PeriodKind) (time.Time, error) {
	y, m, d := now.Date()
	loc := now.Location()
	switch period {
	case core.Weekly:
		return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc), nil
	case core.Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), nil
	case core.Yearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), nil
	default:
		return time.Time{}, unknownPeriod("period", period)
	}
}
