package evaluator

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
)

// DueSoonDays is the window, in whole days, in which an unsettled item is
// reported as due soon.
const DueSoonDays = 3

// DueState is the urgency of a due item.
type DueState string

const (
	StatusSettled  DueState = "settled"
	StatusOverdue  DueState = "overdue"
	StatusDueToday DueState = "due_today"
	StatusDueSoon  DueState = "due_soon"
	StatusUpcoming DueState = "upcoming"
)

// DueItem is the shared evaluation shape of bills and subscriptions.
// Bills leave Recurrence empty.
type DueItem struct {
	Amount     decimal.Decimal
	DueAt      time.Time
	IsSettled  bool
	Recurrence core.PeriodKind
	// NextDueAt is an explicit override of the next billing instant.
	NextDueAt *time.Time
}

type DueStatus struct {
	Status        DueState `json:"status"`
	DaysRemaining int      `json:"daysRemaining"`
	OverdueByDays int      `json:"overdueByDays,omitempty"`
}

// DaysUntil returns the number of days from now to target, rounding any
// fractional day up. Instants already past yield zero or a negative value.
func DaysUntil(target, now time.Time) int {
	days := target.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}

// ClassifyDue reports how urgent item is at now.
func ClassifyDue(item DueItem, now time.Time) DueStatus {
	if item.IsSettled {
		return DueStatus{Status: StatusSettled}
	}

	days := DaysUntil(item.DueAt, now)
	switch {
	case days < 0:
		return DueStatus{Status: StatusOverdue, DaysRemaining: days, OverdueByDays: -days}
	case days == 0:
		return DueStatus{Status: StatusDueToday}
	case days <= DueSoonDays:
		return DueStatus{Status: StatusDueSoon, DaysRemaining: days}
	default:
		return DueStatus{Status: StatusUpcoming, DaysRemaining: days}
	}
}

// ClassifyAll classifies every item, preserving input order.
func ClassifyAll(items []DueItem, now time.Time) []DueStatus {
	out := make([]DueStatus, 0, len(items))
	for _, it := range items {
		out = append(out, ClassifyDue(it, now))
	}
	return out
}
