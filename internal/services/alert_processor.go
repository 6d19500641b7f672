package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"finsmart/internal/amqp"
	"finsmart/internal/core"
	"finsmart/internal/evaluator"
	applog "finsmart/internal/log"
	"finsmart/internal/ports"
)

// AlertPublisher is satisfied by *amqp.Client.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, msg amqp.AlertMessage) error
}

const alertScanConcurrency = 4

// AlertProcessor scans every user and publishes one alert per budget at
// warning or critical tier and per bill or subscription that is overdue, due
// today or due soon.
type AlertProcessor struct {
	users     ports.UserStore
	dashboard *DashboardService
	publisher AlertPublisher
	logger    *applog.Logger
}

func NewAlertProcessor(users ports.UserStore, dashboard *DashboardService, publisher AlertPublisher, logger *applog.Logger) *AlertProcessor {
	return &AlertProcessor{
		users:     users,
		dashboard: dashboard,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentAlerts),
	}
}

// Run evaluates all users at now and returns the number of alerts published.
// Failures for one user are logged and do not stop the scan.
func (p *AlertProcessor) Run(ctx context.Context, now time.Time) (int, error) {
	ids, err := p.users.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	p.logger.InfoContext(ctx, "Processing alerts", "users", len(ids), "now", now.Format(time.RFC3339))

	var published atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(alertScanConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			alerts, err := p.AlertsFor(gctx, id, now)
			if err != nil {
				applog.LogError(gctx, "Failed to evaluate user", err,
					applog.ErrorTypeDatabase, applog.ComponentAlerts, applog.OpEvaluate,
					applog.NewFields().WithUser(id))
				return nil
			}
			for _, a := range alerts {
				if err := p.publisher.PublishAlert(gctx, a); err != nil {
					applog.LogError(gctx, "Failed to publish alert", err,
						applog.ErrorTypeNetwork, applog.ComponentAlerts, applog.OpPublish,
						applog.NewFields().WithUser(id).WithEntity(string(a.Kind), a.ItemID))
					continue
				}
				published.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(published.Load()), err
	}
	if err := ctx.Err(); err != nil {
		return int(published.Load()), err
	}

	p.logger.InfoContext(ctx, "Alert processing complete", "published", published.Load(), "users", len(ids))
	return int(published.Load()), nil
}

// AlertsFor builds the alerts for one user without publishing them. A budget
// or subscription that cannot be evaluated is logged and skipped so the
// user's other alerts still go out; only load failures are returned.
func (p *AlertProcessor) AlertsFor(ctx context.Context, userID string, now time.Time) ([]amqp.AlertMessage, error) {
	var (
		txs     []core.Transaction
		budgets []core.Budget
		bills   []core.Bill
		subs    []core.Subscription
	)
	store := p.dashboard.store
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { txs, err = store.ListTransactions(gctx, userID); return err })
	g.Go(func() (err error) { budgets, err = store.ListBudgets(gctx, userID); return err })
	g.Go(func() (err error) { bills, err = store.ListBills(gctx, userID); return err })
	g.Go(func() (err error) { subs, err = store.ListSubscriptions(gctx, userID); return err })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load alert data: %w", err)
	}

	events := TransactionEvents(txs)
	budgetStatuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		progress, err := evaluator.EvaluateBudget(BudgetDefinition(b), events, now)
		if err != nil {
			p.logSkipped(ctx, userID, "budget", b.ID, err)
			continue
		}
		budgetStatuses = append(budgetStatuses, BudgetStatus{Budget: b, Progress: progress})
	}
	subStatuses := make([]SubscriptionStatus, 0, len(subs))
	for _, sub := range subs {
		st, err := evaluateSubscription(sub, now)
		if err != nil {
			p.logSkipped(ctx, userID, "subscription", sub.ID, err)
			continue
		}
		subStatuses = append(subStatuses, st)
	}

	ts := now.UTC()
	var alerts []amqp.AlertMessage
	for _, b := range budgetStatuses {
		if b.Progress.Tier == evaluator.TierNormal {
			continue
		}
		alerts = append(alerts, amqp.AlertMessage{
			UserID: userID,
			Kind:   amqp.AlertBudget,
			ItemID: b.Budget.ID,
			Name:   b.Budget.Name,
			Status: string(b.Progress.Tier),
			Detail: fmt.Sprintf("Spent %s of %s (%s%%)",
				core.FormatAmount(b.Progress.Spent), core.FormatAmount(b.Progress.LimitAmount),
				b.Progress.Percentage.Round(0).String()),
			Amount:    b.Progress.Spent,
			Timestamp: ts,
		})
	}
	for _, b := range evaluateBills(bills, now) {
		if !alerting(b.Status.Status) {
			continue
		}
		alerts = append(alerts, amqp.AlertMessage{
			UserID:    userID,
			Kind:      amqp.AlertBill,
			ItemID:    b.Bill.ID,
			Name:      b.Bill.Name,
			Status:    string(b.Status.Status),
			Detail:    DescribeDue(b.Status),
			Amount:    b.Bill.Amount,
			Timestamp: ts,
		})
	}
	for _, s := range subStatuses {
		if !alerting(s.Status.Status) {
			continue
		}
		alerts = append(alerts, amqp.AlertMessage{
			UserID:    userID,
			Kind:      amqp.AlertSubscription,
			ItemID:    s.Subscription.ID,
			Name:      s.Subscription.Name,
			Status:    string(s.Status.Status),
			Detail:    DescribeDue(s.Status),
			Amount:    s.Subscription.Amount,
			Timestamp: ts,
		})
	}
	return alerts, nil
}

func (p *AlertProcessor) logSkipped(ctx context.Context, userID, entity, id string, err error) {
	errorType := applog.ErrorTypeInternal
	switch {
	case errors.Is(err, evaluator.ErrInvariant):
		errorType = applog.ErrorTypeInvariant
	case errors.Is(err, evaluator.ErrConfiguration):
		errorType = applog.ErrorTypeConfiguration
	}
	applog.LogError(ctx, "Skipping item that cannot be evaluated", err,
		errorType, applog.ComponentAlerts, applog.OpEvaluate,
		applog.NewFields().WithUser(userID).WithEntity(entity, id))
}

func alerting(s evaluator.DueState) bool {
	switch s {
	case evaluator.StatusOverdue, evaluator.StatusDueToday, evaluator.StatusDueSoon:
		return true
	}
	return false
}

// DescribeDue renders a due status as a short human sentence.
func DescribeDue(s evaluator.DueStatus) string {
	switch s.Status {
	case evaluator.StatusSettled:
		return "Settled"
	case evaluator.StatusOverdue:
		return fmt.Sprintf("Overdue by %d %s", s.OverdueByDays, plural(s.OverdueByDays, "day"))
	case evaluator.StatusDueToday:
		return "Due today"
	default:
		return fmt.Sprintf("Due in %d %s", s.DaysRemaining, plural(s.DaysRemaining, "day"))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
