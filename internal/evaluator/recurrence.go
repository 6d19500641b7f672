package evaluator

import (
	"time"

	"finsmart/internal/core"
)

// Advancer moves an anchor instant forward by n recurrence units.
// Implementations compute from the anchor each time so that clamped
// month-end dates do not drift across iterations.
type Advancer interface {
	Advance(anchor time.Time, n int) time.Time
}

// WeeklyAdvancer adds 7n calendar days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Advance(anchor time.Time, n int) time.Time {
	return anchor.AddDate(0, 0, 7*n)
}

// MonthlyAdvancer adds n calendar months, clamping the day to month end.
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Advance(anchor time.Time, n int) time.Time {
	return addMonthsClamped(anchor, n)
}

// YearlyAdvancer adds n calendar years; Feb 29 becomes Feb 28 off leap years.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Advance(anchor time.Time, n int) time.Time {
	return addMonthsClamped(anchor, 12*n)
}

var advancers = map[core.PeriodKind]Advancer{
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{},
	core.Yearly:  YearlyAdvancer{},
}

// GetAdvancer returns the advancer registered for a period.
func GetAdvancer(period core.PeriodKind) (Advancer, error) {
	a, ok := advancers[period]
	if !ok {
		return nil, unknownPeriod("recurrence", period)
	}
	return a, nil
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := daysIn(first.Year(), first.Month(), t.Location())
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
