package evaluator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsmart/internal/core"
)

func TestEvaluateBudgetMonthlyScenario(t *testing.T) {
	now := at(2025, time.March, 20, 12, 0)
	events := []MonetaryEvent{
		{Amount: dec("200"), OccurredAt: at(2025, time.March, 2, 10, 0), IsOutflow: true},
		{Amount: dec("150"), OccurredAt: at(2025, time.March, 9, 10, 0), IsOutflow: true},
		{Amount: dec("100"), OccurredAt: at(2025, time.March, 18, 10, 0), IsOutflow: true},
		{Amount: dec("1000"), OccurredAt: at(2025, time.February, 15, 10, 0), IsOutflow: true},
	}

	got, err := EvaluateBudget(BudgetDefinition{LimitAmount: dec("500"), Period: core.Monthly}, events, now)
	require.NoError(t, err)

	assert.Equal(t, at(2025, time.March, 1, 0, 0), got.PeriodStart)
	assertDecimal(t, "450", got.Spent)
	assertDecimal(t, "500", got.LimitAmount)
	assertDecimal(t, "90", got.Percentage)
	assertDecimal(t, "0", got.Overage)
	assert.Equal(t, TierCritical, got.Tier)
}

func TestEvaluateBudgetOverLimit(t *testing.T) {
	now := at(2025, time.March, 20, 12, 0)
	events := []MonetaryEvent{
		{Amount: dec("650.50"), OccurredAt: at(2025, time.March, 19, 10, 0), IsOutflow: true},
	}

	got, err := EvaluateBudget(BudgetDefinition{LimitAmount: dec("500"), Period: core.Weekly}, events, now)
	require.NoError(t, err)

	assertDecimal(t, "100", got.Percentage)
	assertDecimal(t, "150.50", got.Overage)
	assertDecimal(t, "650.50", got.Spent)
	assert.Equal(t, TierCritical, got.Tier)
}

func TestEvaluateBudgetCategoryAndDirection(t *testing.T) {
	now := at(2025, time.June, 10, 12, 0)
	events := []MonetaryEvent{
		{Amount: dec("60"), OccurredAt: at(2025, time.June, 1, 10, 0), IsOutflow: true, CategoryRef: "food"},
		{Amount: dec("300"), OccurredAt: at(2025, time.June, 2, 10, 0), IsOutflow: true, CategoryRef: "housing"},
		{Amount: dec("90"), OccurredAt: at(2025, time.June, 3, 10, 0), IsOutflow: false, CategoryRef: "food"},
	}

	got, err := EvaluateBudget(BudgetDefinition{LimitAmount: dec("200"), Period: core.Yearly, CategoryRef: "food"}, events, now)
	require.NoError(t, err)

	assertDecimal(t, "60", got.Spent)
	assertDecimal(t, "30", got.Percentage)
	assert.Equal(t, TierNormal, got.Tier)
}

func TestEvaluateBudgetNoEvents(t *testing.T) {
	got, err := EvaluateBudget(BudgetDefinition{LimitAmount: dec("100"), Period: core.Monthly}, nil, at(2025, time.June, 10, 12, 0))
	require.NoError(t, err)
	assert.True(t, got.Spent.IsZero())
	assert.True(t, got.Percentage.IsZero())
	assert.Equal(t, TierNormal, got.Tier)
}

func TestEvaluateBudgetConfigurationErrors(t *testing.T) {
	now := at(2025, time.June, 10, 12, 0)
	tests := []struct {
		name  string
		def   BudgetDefinition
		field string
	}{
		{"zero limit", BudgetDefinition{LimitAmount: dec("0"), Period: core.Monthly}, "limitAmount"},
		{"negative limit", BudgetDefinition{LimitAmount: dec("-5"), Period: core.Monthly}, "limitAmount"},
		{"unknown period", BudgetDefinition{LimitAmount: dec("5"), Period: "quarterly"}, "period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateBudget(tt.def, nil, now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.False(t, errors.Is(err, ErrInvariant))

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestClassifyTierBoundaries(t *testing.T) {
	tests := []struct {
		pct  string
		want Tier
	}{
		{"100", TierCritical},
		{"90", TierCritical},
		{"89.999", TierWarning},
		{"75", TierWarning},
		{"74.999", TierNormal},
		{"0", TierNormal},
	}
	for _, tt := range tests {
		t.Run(tt.pct, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTier(dec(tt.pct)))
		})
	}
}
