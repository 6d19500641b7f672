package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"finsmart/internal/core"
)

// Bills

const billColumns = `id, user_id, name, amount, due_date, is_paid, category, icon`

func scanBill(row rowScanner) (core.Bill, error) {
	var b core.Bill
	var due string
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &due, &b.IsPaid, &b.Category, &b.Icon); err != nil {
		return core.Bill{}, err
	}
	d, err := parseTime(due)
	if err != nil {
		return core.Bill{}, err
	}
	b.DueDate = d
	return b, nil
}

func (r *SQLiteRepository) ListBills(ctx context.Context, userID string) ([]core.Bill, error) {
	list, err := queryList(ctx, r, scanBill, `SELECT `+billColumns+` FROM bills WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return list, nil
}

func (r *SQLiteRepository) GetBill(ctx context.Context, id string) (core.Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id))
	if err != nil {
		return core.Bill{}, notFound(err)
	}
	return b, nil
}

func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	b.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Name, b.Amount.String(), formatTime(b.DueDate), b.IsPaid, b.Category, b.Icon)
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) UpdateBill(ctx context.Context, b core.Bill) error {
	return r.execAffecting(ctx,
		`UPDATE bills SET name = ?, amount = ?, due_date = ?, is_paid = ?, category = ?, icon = ? WHERE id = ?`,
		b.Name, b.Amount.String(), formatTime(b.DueDate), b.IsPaid, b.Category, b.Icon, b.ID)
}

func (r *SQLiteRepository) DeleteBill(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM bills WHERE id = ?`, id)
}

// Subscriptions

const subscriptionColumns = `id, user_id, name, amount, billing_cycle, category, status, icon, start_date, next_billing_date`

func scanSubscription(row rowScanner) (core.Subscription, error) {
	var s core.Subscription
	var cycle, status, start string
	var next sql.NullString
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Amount, &cycle, &s.Category, &status, &s.Icon, &start, &next); err != nil {
		return core.Subscription{}, err
	}
	s.BillingCycle = core.PeriodKind(cycle)
	s.Status = core.SubscriptionStatus(status)

	sd, err := parseTime(start)
	if err != nil {
		return core.Subscription{}, err
	}
	s.StartDate = sd
	if s.NextBillingDate, err = parseNullTime(next); err != nil {
		return core.Subscription{}, err
	}
	return s, nil
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, userID string) ([]core.Subscription, error) {
	list, err := queryList(ctx, r, scanSubscription, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return list, nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id))
	if err != nil {
		return core.Subscription{}, notFound(err)
	}
	return s, nil
}

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	s.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Name, s.Amount.String(), string(s.BillingCycle), s.Category, string(s.Status), s.Icon,
		formatTime(s.StartDate), formatNullTime(s.NextBillingDate))
	if err != nil {
		return core.Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, s core.Subscription) error {
	return r.execAffecting(ctx,
		`UPDATE subscriptions SET name = ?, amount = ?, billing_cycle = ?, category = ?, status = ?, icon = ?, start_date = ?, next_billing_date = ? WHERE id = ?`,
		s.Name, s.Amount.String(), string(s.BillingCycle), s.Category, string(s.Status), s.Icon,
		formatTime(s.StartDate), formatNullTime(s.NextBillingDate), s.ID)
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
}
