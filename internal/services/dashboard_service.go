// Package services composes the store and the evaluator into per-user views
// and side effects (sync publishing, alert scans).
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finsmart/internal/cache"
	"finsmart/internal/core"
	"finsmart/internal/evaluator"
	applog "finsmart/internal/log"
	"finsmart/internal/ports"
)

var (
	hundred  = decimal.NewFromInt(100)
	twelve   = decimal.NewFromInt(12)
	fiftyTwo = decimal.NewFromInt(52)
)

type (
	BudgetStatus struct {
		Budget   core.Budget              `json:"budget"`
		Progress evaluator.BudgetProgress `json:"progress"`
	}

	BillStatus struct {
		Bill   core.Bill           `json:"bill"`
		Status evaluator.DueStatus `json:"status"`
	}

	SubscriptionStatus struct {
		Subscription core.Subscription `json:"subscription"`
		// NextBillingDate is the projected instant; nil for settled items.
		NextBillingDate *time.Time          `json:"nextBillingDate,omitempty"`
		Status          evaluator.DueStatus `json:"status"`
	}

	// Dashboard bundles every per-user view at one instant.
	Dashboard struct {
		Now           time.Time            `json:"now"`
		Summary       core.MonthOverview   `json:"summary"`
		Budgets       []BudgetStatus       `json:"budgets"`
		Bills         []BillStatus         `json:"bills"`
		Subscriptions []SubscriptionStatus `json:"subscriptions"`
		Goals         []core.GoalProgress  `json:"goals"`
	}
)

// DashboardService evaluates a user's data at a caller-supplied instant.
// Summaries are cached per user and minute until Invalidate is called.
type DashboardService struct {
	store  ports.Store
	cache  *cache.LRUCache[core.MonthOverview]
	logger *applog.Logger
}

func NewDashboardService(store ports.Store, summaryCache *cache.LRUCache[core.MonthOverview], logger *applog.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		cache:  summaryCache,
		logger: logger.WithComponent(applog.ComponentDashboard),
	}
}

// Invalidate drops cached views for userID after a write.
func (s *DashboardService) Invalidate(userID string) {
	if s.cache != nil {
		s.cache.DeletePrefix(userID + ":")
	}
}

// BudgetStatuses evaluates every budget of the user. The first evaluator
// error is returned.
func (s *DashboardService) BudgetStatuses(ctx context.Context, userID string, now time.Time) ([]BudgetStatus, error) {
	var (
		budgets []core.Budget
		txs     []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		budgets, err = s.store.ListBudgets(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		txs, err = s.store.ListTransactions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	return evaluateBudgets(budgets, TransactionEvents(txs), now)
}

func evaluateBudgets(budgets []core.Budget, events []evaluator.MonetaryEvent, now time.Time) ([]BudgetStatus, error) {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		p, err := evaluator.EvaluateBudget(BudgetDefinition(b), events, now)
		if err != nil {
			return nil, fmt.Errorf("evaluate budget %s: %w", b.ID, err)
		}
		out = append(out, BudgetStatus{Budget: b, Progress: p})
	}
	return out, nil
}

func (s *DashboardService) BillStatuses(ctx context.Context, userID string, now time.Time) ([]BillStatus, error) {
	bills, err := s.store.ListBills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}
	return evaluateBills(bills, now), nil
}

func evaluateBills(bills []core.Bill, now time.Time) []BillStatus {
	out := make([]BillStatus, 0, len(bills))
	for _, b := range bills {
		out = append(out, BillStatus{Bill: b, Status: evaluator.ClassifyDue(BillItem(b), now)})
	}
	return out
}

// SubscriptionStatuses projects each active subscription to its next billing
// instant and classifies that instant.
func (s *DashboardService) SubscriptionStatuses(ctx context.Context, userID string, now time.Time) ([]SubscriptionStatus, error) {
	subs, err := s.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	out, err := evaluateSubscriptions(subs, now)
	if err != nil && errors.Is(err, evaluator.ErrInvariant) {
		applog.LogError(ctx, "Subscription projection failed", err,
			applog.ErrorTypeInvariant, applog.ComponentDashboard, applog.OpEvaluate,
			applog.NewFields().WithUser(userID))
	}
	return out, err
}

func evaluateSubscriptions(subs []core.Subscription, now time.Time) ([]SubscriptionStatus, error) {
	out := make([]SubscriptionStatus, 0, len(subs))
	for _, sub := range subs {
		st, err := evaluateSubscription(sub, now)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// evaluateSubscription projects an active subscription to its next billing
// instant and classifies it; non-active ones are classified as settled.
func evaluateSubscription(sub core.Subscription, now time.Time) (SubscriptionStatus, error) {
	item := SubscriptionItem(sub)
	if item.IsSettled {
		return SubscriptionStatus{Subscription: sub, Status: evaluator.ClassifyDue(item, now)}, nil
	}
	next, err := evaluator.NextOccurrence(item, now)
	if err != nil {
		return SubscriptionStatus{}, fmt.Errorf("project subscription %s: %w", sub.ID, err)
	}
	projected := item
	projected.DueAt = next
	return SubscriptionStatus{
		Subscription:    sub,
		NextBillingDate: &next,
		Status:          evaluator.ClassifyDue(projected, now),
	}, nil
}

// Summary reports the month containing now.
func (s *DashboardService) Summary(ctx context.Context, userID string, now time.Time) (core.MonthOverview, error) {
	// The offset decides which month now falls in.
	key := userID + ":summary:" + now.Format("2006-01-02T15:04Z07:00")
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
	}

	var (
		txs        []core.Transaction
		subs       []core.Subscription
		categories []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = s.store.ListTransactions(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		subs, err = s.store.ListSubscriptions(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.store.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthOverview{}, fmt.Errorf("load summary data: %w", err)
	}

	overview, err := summarize(txs, subs, categories, now)
	if err != nil {
		return core.MonthOverview{}, err
	}
	if s.cache != nil {
		s.cache.Set(key, overview)
	}
	return overview, nil
}

func summarize(txs []core.Transaction, subs []core.Subscription, categories []core.Category, now time.Time) (core.MonthOverview, error) {
	events := TransactionEvents(txs)
	monthStart, err := evaluator.PeriodStart(now, core.Monthly)
	if err != nil {
		return core.MonthOverview{}, err
	}

	income := evaluator.Spend(events, monthStart, now, "", false)
	spending := evaluator.Spend(events, monthStart, now, "", true)

	rate := decimal.Zero
	if income.IsPositive() {
		rate = income.Sub(spending).Div(income).Mul(hundred).Round(2)
	}

	balance := decimal.Zero
	for _, t := range txs {
		if t.IsExpense {
			balance = balance.Sub(t.Amount)
		} else {
			balance = balance.Add(t.Amount)
		}
	}

	return core.MonthOverview{
		Year:                 now.Year(),
		Month:                int(now.Month()),
		TotalBalance:         balance,
		MonthlyIncome:        income,
		MonthlySpending:      spending,
		SavingsRate:          rate,
		SubscriptionsMonthly: MonthlySubscriptionCost(subs),
		ByCategory:           spendingByCategory(events, categories, monthStart, now),
	}, nil
}

func spendingByCategory(events []evaluator.MonetaryEvent, categories []core.Category, start, now time.Time) []core.CategoryAmount {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	seen := make(map[string]bool)
	var out []core.CategoryAmount
	for _, ev := range events {
		if !ev.IsOutflow || ev.CategoryRef == "" || seen[ev.CategoryRef] {
			continue
		}
		seen[ev.CategoryRef] = true
		amount := evaluator.Spend(events, start, now, ev.CategoryRef, true)
		if amount.IsZero() {
			continue
		}
		name := names[ev.CategoryRef]
		if name == "" {
			name = ev.CategoryRef
		}
		out = append(out, core.CategoryAmount{CategoryID: ev.CategoryRef, Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// MonthlySubscriptionCost normalises active subscriptions to a monthly
// amount: yearly / 12, weekly * 52 / 12.
func MonthlySubscriptionCost(subs []core.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, s := range subs {
		if s.Status != core.SubscriptionActive {
			continue
		}
		switch s.BillingCycle {
		case core.Monthly:
			total = total.Add(s.Amount)
		case core.Yearly:
			total = total.Add(s.Amount.Div(twelve))
		case core.Weekly:
			total = total.Add(s.Amount.Mul(fiftyTwo).Div(twelve))
		}
	}
	return total.Round(2)
}

func (s *DashboardService) GoalProgress(ctx context.Context, userID string, now time.Time) ([]core.GoalProgress, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	return evaluateGoals(goals, now), nil
}

func evaluateGoals(goals []core.Goal, now time.Time) []core.GoalProgress {
	out := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, EvaluateGoal(g, now))
	}
	return out
}

// EvaluateGoal computes completion (capped at 100), the remaining amount and,
// for dated goals, the days left.
func EvaluateGoal(g core.Goal, now time.Time) core.GoalProgress {
	pct := decimal.Zero
	if g.TargetAmount.IsPositive() {
		pct = g.CurrentAmount.Div(g.TargetAmount).Mul(hundred).Round(2)
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
	}
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	p := core.GoalProgress{
		Goal:       g,
		Percentage: pct,
		Remaining:  remaining,
		Achieved:   g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount),
	}
	if g.TargetDate != nil {
		days := evaluator.DaysUntil(*g.TargetDate, now)
		p.DaysRemaining = &days
	}
	return p
}

// Overview loads every collection once, concurrently, and evaluates all views.
func (s *DashboardService) Overview(ctx context.Context, userID string, now time.Time) (Dashboard, error) {
	var (
		txs        []core.Transaction
		budgets    []core.Budget
		bills      []core.Bill
		subs       []core.Subscription
		goals      []core.Goal
		categories []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { txs, err = s.store.ListTransactions(gctx, userID); return err })
	g.Go(func() (err error) { budgets, err = s.store.ListBudgets(gctx, userID); return err })
	g.Go(func() (err error) { bills, err = s.store.ListBills(gctx, userID); return err })
	g.Go(func() (err error) { subs, err = s.store.ListSubscriptions(gctx, userID); return err })
	g.Go(func() (err error) { goals, err = s.store.ListGoals(gctx, userID); return err })
	g.Go(func() (err error) { categories, err = s.store.ListCategories(gctx); return err })
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	summary, err := summarize(txs, subs, categories, now)
	if err != nil {
		return Dashboard{}, err
	}
	budgetStatuses, err := evaluateBudgets(budgets, TransactionEvents(txs), now)
	if err != nil {
		return Dashboard{}, err
	}
	subStatuses, err := evaluateSubscriptions(subs, now)
	if err != nil {
		if errors.Is(err, evaluator.ErrInvariant) {
			applog.LogError(ctx, "Subscription projection failed", err,
				applog.ErrorTypeInvariant, applog.ComponentDashboard, applog.OpEvaluate,
				applog.NewFields().WithUser(userID))
		}
		return Dashboard{}, err
	}

	s.logger.DebugContext(ctx, "Dashboard evaluated",
		applog.FieldUserID, userID,
		"budgets", len(budgetStatuses),
		"bills", len(bills),
		"subscriptions", len(subStatuses))

	return Dashboard{
		Now:           now,
		Summary:       summary,
		Budgets:       budgetStatuses,
		Bills:         evaluateBills(bills, now),
		Subscriptions: subStatuses,
		Goals:         evaluateGoals(goals, now),
	}, nil
}
