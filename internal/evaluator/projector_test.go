package evaluator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsmart/internal/core"
)

func TestNextOccurrence(t *testing.T) {
	now := at(2025, time.March, 20, 12, 0)
	future := at(2025, time.March, 25, 0, 0)
	stale := at(2025, time.March, 1, 0, 0)

	tests := []struct {
		name string
		item DueItem
		now  time.Time
		want time.Time
	}{
		{
			name: "monthly forty days ago advances twice",
			item: DueItem{DueAt: now.AddDate(0, 0, -40), Recurrence: core.Monthly},
			now:  now,
			want: at(2025, time.April, 8, 12, 0),
		},
		{
			name: "future override wins",
			item: DueItem{DueAt: now.AddDate(0, 0, -40), Recurrence: core.Monthly, NextDueAt: &future},
			now:  now,
			want: future,
		},
		{
			name: "stale override is advanced",
			item: DueItem{DueAt: at(2025, time.January, 1, 0, 0), Recurrence: core.Monthly, NextDueAt: &stale},
			now:  now,
			want: at(2025, time.April, 1, 0, 0),
		},
		{
			name: "future due date is returned as is",
			item: DueItem{DueAt: now.AddDate(0, 0, 5), Recurrence: core.Weekly},
			now:  now,
			want: now.AddDate(0, 0, 5),
		},
		{
			name: "weekly",
			item: DueItem{DueAt: at(2025, time.March, 1, 9, 0), Recurrence: core.Weekly},
			now:  now,
			want: at(2025, time.March, 22, 9, 0),
		},
		{
			name: "due exactly now is advanced",
			item: DueItem{DueAt: now, Recurrence: core.Weekly},
			now:  now,
			want: now.AddDate(0, 0, 7),
		},
		{
			name: "month end clamps without drifting",
			item: DueItem{DueAt: at(2025, time.January, 31, 0, 0), Recurrence: core.Monthly},
			now:  at(2025, time.March, 1, 0, 0),
			want: at(2025, time.March, 31, 0, 0),
		},
		{
			name: "clamps into february",
			item: DueItem{DueAt: at(2025, time.January, 31, 0, 0), Recurrence: core.Monthly},
			now:  at(2025, time.February, 1, 0, 0),
			want: at(2025, time.February, 28, 0, 0),
		},
		{
			name: "yearly from leap day",
			item: DueItem{DueAt: at(2024, time.February, 29, 0, 0), Recurrence: core.Yearly},
			now:  at(2024, time.March, 1, 0, 0),
			want: at(2025, time.February, 28, 0, 0),
		},
		{
			name: "yearly back on leap day",
			item: DueItem{DueAt: at(2024, time.February, 29, 0, 0), Recurrence: core.Yearly},
			now:  at(2027, time.June, 1, 0, 0),
			want: at(2028, time.February, 29, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.item, tt.now)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "NextOccurrence() = %v, want %v", got, tt.want)
			assert.True(t, got.After(tt.now))
		})
	}
}

func TestNextOccurrenceIdempotent(t *testing.T) {
	now := at(2025, time.March, 20, 12, 0)
	item := DueItem{DueAt: at(2024, time.October, 31, 8, 0), Recurrence: core.Monthly}

	first, err := NextOccurrence(item, now)
	require.NoError(t, err)
	second, err := NextOccurrence(item, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	advanced := item
	advanced.DueAt = first
	later, err := NextOccurrence(advanced, first)
	require.NoError(t, err)
	assert.True(t, later.After(first), "expected %v after %v", later, first)
}

func TestNextOccurrenceDoesNotMutate(t *testing.T) {
	override := at(2025, time.January, 1, 0, 0)
	item := DueItem{DueAt: at(2024, time.December, 1, 0, 0), Recurrence: core.Monthly, NextDueAt: &override}
	before := item

	_, err := NextOccurrence(item, at(2025, time.March, 20, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, before, item)
	assert.Equal(t, at(2025, time.January, 1, 0, 0), override)
}

func TestNextOccurrenceErrors(t *testing.T) {
	now := at(2025, time.March, 20, 12, 0)

	_, err := NextOccurrence(DueItem{DueAt: now.AddDate(0, -1, 0)}, now)
	assert.True(t, errors.Is(err, ErrConfiguration), "no recurrence: %v", err)

	_, err = NextOccurrence(DueItem{DueAt: now.AddDate(0, -1, 0), Recurrence: "fortnightly"}, now)
	assert.True(t, errors.Is(err, ErrConfiguration), "unknown recurrence: %v", err)

	_, err = NextOccurrence(DueItem{DueAt: time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC), Recurrence: core.Weekly}, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariant))
	var inv *InvariantViolation
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "NextOccurrence", inv.Op)
}

func TestGetAdvancer(t *testing.T) {
	anchor := at(2025, time.January, 31, 10, 0)

	a, err := GetAdvancer(core.Monthly)
	require.NoError(t, err)
	assert.Equal(t, at(2025, time.February, 28, 10, 0), a.Advance(anchor, 1))
	assert.Equal(t, at(2025, time.April, 30, 10, 0), a.Advance(anchor, 3))
	assert.Equal(t, at(2026, time.January, 31, 10, 0), a.Advance(anchor, 12))

	w, err := GetAdvancer(core.Weekly)
	require.NoError(t, err)
	assert.Equal(t, at(2025, time.February, 14, 10, 0), w.Advance(anchor, 2))

	_, err = GetAdvancer(core.PeriodKind("daily"))
	assert.True(t, errors.Is(err, ErrConfiguration))
}
