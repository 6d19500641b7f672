package evaluator

import (
	"fmt"
	"time"
)

// MaxProjectionSteps bounds how many recurrence units NextOccurrence will
// advance before giving up.
const MaxProjectionSteps = 10000

// NextOccurrence projects the next billing instant of a recurring item that
// falls strictly after now.
//
// An explicit NextDueAt in the future is returned as is. Otherwise the later
// of DueAt and NextDueAt is used as the anchor and advanced by whole units of
// Recurrence. Items without a recurrence, or with an unknown one, yield a
// *ConfigurationError; failing to pass now within MaxProjectionSteps yields an
// *InvariantViolation.
func NextOccurrence(item DueItem, now time.Time) (time.Time, error) {
	if item.NextDueAt != nil && item.NextDueAt.After(now) {
		return *item.NextDueAt, nil
	}
	if item.Recurrence == "" {
		return time.Time{}, &ConfigurationError{Field: "recurrence", Reason: "item does not recur"}
	}
	adv, err := GetAdvancer(item.Recurrence)
	if err != nil {
		return time.Time{}, err
	}

	anchor := item.DueAt
	if item.NextDueAt != nil && item.NextDueAt.After(anchor) {
		anchor = *item.NextDueAt
	}
	if anchor.After(now) {
		return anchor, nil
	}

	for n := 1; n <= MaxProjectionSteps; n++ {
		next := adv.Advance(anchor, n)
		if next.After(now) {
			return next, nil
		}
	}
	return time.Time{}, &InvariantViolation{
		Op:     "NextOccurrence",
		Detail: fmt.Sprintf("%s recurrence from %s did not pass %s within %d steps", item.Recurrence, anchor.Format(time.RFC3339), now.Format(time.RFC3339), MaxProjectionSteps),
	}
}
