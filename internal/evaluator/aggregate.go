package evaluator

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonetaryEvent is one dated transaction as seen by the evaluator. Amount is
// never negative; direction is carried by IsOutflow.
type MonetaryEvent struct {
	Amount     decimal.Decimal
	OccurredAt time.Time
	IsOutflow  bool
	// CategoryRef is empty when the event is uncategorised.
	CategoryRef string
}

// Spend sums the amounts of events that occurred within [periodStart, now],
// match categoryRef (any category when empty) and whose direction equals
// outflow. An empty or fully filtered input sums to zero.
func Spend(events []MonetaryEvent, periodStart, now time.Time, categoryRef string, outflow bool) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range events {
		if ev.OccurredAt.Before(periodStart) || ev.OccurredAt.After(now) {
			continue
		}
		if categoryRef != "" && ev.CategoryRef != categoryRef {
			continue
		}
		if ev.IsOutflow != outflow {
			continue
		}
		total = total.Add(ev.Amount)
	}
	return total
}
