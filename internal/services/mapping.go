package services

import (
	"finsmart/internal/core"
	"finsmart/internal/evaluator"
)

// TransactionEvent projects a transaction onto the evaluator's event shape.
func TransactionEvent(t core.Transaction) evaluator.MonetaryEvent {
	return evaluator.MonetaryEvent{
		Amount:      t.Amount,
		OccurredAt:  t.Date,
		IsOutflow:   t.IsExpense,
		CategoryRef: t.CategoryID,
	}
}

func TransactionEvents(ts []core.Transaction) []evaluator.MonetaryEvent {
	events := make([]evaluator.MonetaryEvent, len(ts))
	for i, t := range ts {
		events[i] = TransactionEvent(t)
	}
	return events
}

func BudgetDefinition(b core.Budget) evaluator.BudgetDefinition {
	return evaluator.BudgetDefinition{
		LimitAmount: b.Amount,
		Period:      b.Period,
		CategoryRef: b.CategoryID,
	}
}

// BillItem maps a one-off bill; bills never recur.
func BillItem(b core.Bill) evaluator.DueItem {
	return evaluator.DueItem{
		Amount:    b.Amount,
		DueAt:     b.DueDate,
		IsSettled: b.IsPaid,
	}
}

// SubscriptionItem anchors the recurrence at the start date and treats any
// non-active subscription as settled.
func SubscriptionItem(s core.Subscription) evaluator.DueItem {
	return evaluator.DueItem{
		Amount:     s.Amount,
		DueAt:      s.StartDate,
		IsSettled:  s.Status != core.SubscriptionActive,
		Recurrence: s.BillingCycle,
		NextDueAt:  s.NextBillingDate,
	}
}
