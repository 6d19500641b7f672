package evaluator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDue(t *testing.T) {
	now := at(2025, time.March, 20, 12, 0)

	tests := []struct {
		name  string
		item  DueItem
		want  DueStatus
	}{
		{
			name: "due in two days",
			item: DueItem{Amount: dec("80"), DueAt: now.Add(48 * time.Hour)},
			want: DueStatus{Status: StatusDueSoon, DaysRemaining: 2},
		},
		{
			name: "exactly one day overdue",
			item: DueItem{Amount: dec("80"), DueAt: now.Add(-24 * time.Hour)},
			want: DueStatus{Status: StatusOverdue, DaysRemaining: -1, OverdueByDays: 1},
		},
		{
			name: "fractional day rounds up",
			item: DueItem{Amount: dec("80"), DueAt: now.Add(11*time.Hour + 12*time.Minute)},
			want: DueStatus{Status: StatusDueSoon, DaysRemaining: 1},
		},
		{
			name: "due at now",
			item: DueItem{Amount: dec("80"), DueAt: now},
			want: DueStatus{Status: StatusDueToday},
		},
		{
			name: "an hour past rounds to today",
			item: DueItem{Amount: dec("80"), DueAt: now.Add(-time.Hour)},
			want: DueStatus{Status: StatusDueToday},
		},
		{
			name: "edge of due soon window",
			item: DueItem{Amount: dec("80"), DueAt: now.Add(72 * time.Hour)},
			want: DueStatus{Status: StatusDueSoon, DaysRemaining: 3},
		},
		{
			name: "just beyond due soon window",
			item: DueItem{Amount: dec("80"), DueAt: now.Add(73 * time.Hour)},
			want: DueStatus{Status: StatusUpcoming, DaysRemaining: 4},
		},
		{
			name: "long overdue",
			item: DueItem{Amount: dec("80"), DueAt: now.AddDate(0, 0, -10)},
			want: DueStatus{Status: StatusOverdue, DaysRemaining: -10, OverdueByDays: 10},
		},
		{
			name: "settled wins over overdue",
			item: DueItem{Amount: dec("80"), DueAt: now.AddDate(0, 0, -10), IsSettled: true},
			want: DueStatus{Status: StatusSettled},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDue(tt.item, now))
		})
	}
}

func TestClassifyDueDeterministic(t *testing.T) {
	now := at(2025, time.March, 20, 12, 0)
	item := DueItem{Amount: dec("12"), DueAt: now.Add(30 * time.Hour)}
	assert.Equal(t, ClassifyDue(item, now), ClassifyDue(item, now))
}

func TestClassifyAll(t *testing.T) {
	now := at(2025, time.March, 20, 12, 0)

	empty := ClassifyAll(nil, now)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	got := ClassifyAll([]DueItem{
		{DueAt: now.AddDate(0, 0, 10)},
		{DueAt: now.AddDate(0, 0, -2)},
	}, now)
	assert.Equal(t, []DueStatus{
		{Status: StatusUpcoming, DaysRemaining: 10},
		{Status: StatusOverdue, DaysRemaining: -2, OverdueByDays: 2},
	}, got)
}

func TestDaysUntil(t *testing.T) {
	now := at(2025, time.March, 20, 12, 0)
	assert.Equal(t, 0, DaysUntil(now, now))
	assert.Equal(t, 1, DaysUntil(now.Add(time.Minute), now))
	assert.Equal(t, -1, DaysUntil(now.Add(-25*time.Hour), now))
	assert.Equal(t, 7, DaysUntil(now.AddDate(0, 0, 7), now))
}
