package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category id.
type CategoryAmount struct {
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
}

// MonthOverview is the compact summary shown on the dashboard cards for the
// month containing the evaluation instant.
type MonthOverview struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12

	TotalBalance    decimal.Decimal `json:"totalBalance"`
	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	MonthlySpending decimal.Decimal `json:"monthlySpending"`
	// SavingsRate is (income-spending)/income*100, zero when there is no income.
	SavingsRate decimal.Decimal `json:"savingsRate"`
	// SubscriptionsMonthly is the monthly-equivalent cost of active subscriptions.
	SubscriptionsMonthly decimal.Decimal  `json:"subscriptionsMonthly"`
	ByCategory           []CategoryAmount `json:"byCategory"`
}

// GoalProgress is the completion of a savings goal, capped at 100.
type GoalProgress struct {
	Goal       Goal            `json:"goal"`
	Percentage decimal.Decimal `json:"percentage"`
	Remaining  decimal.Decimal `json:"remaining"`
	// DaysRemaining is set only when the goal has a target date.
	DaysRemaining *int `json:"daysRemaining,omitempty"`
	Achieved      bool `json:"achieved"`
}
