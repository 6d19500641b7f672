package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"finsmart/internal/core"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func queryList[T any](ctx context.Context, r *SQLiteRepository, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Transactions

const transactionColumns = `id, user_id, amount, description, category_id, occurred_at, is_expense, merchant`

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var occurred string
	if err := row.Scan(&t.ID, &t.UserID, &t.Amount, &t.Description, &t.CategoryID, &occurred, &t.IsExpense, &t.Merchant); err != nil {
		return core.Transaction{}, err
	}
	d, err := parseTime(occurred)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = d
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	list, err := queryList(ctx, r, scanTransaction, `SELECT `+transactionColumns+` FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return list, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		return core.Transaction{}, notFound(err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Amount.String(), t.Description, t.CategoryID, formatTime(t.Date), t.IsExpense, t.Merchant)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return r.execAffecting(ctx,
		`UPDATE transactions SET amount = ?, description = ?, category_id = ?, occurred_at = ?, is_expense = ?, merchant = ? WHERE id = ?`,
		t.Amount.String(), t.Description, t.CategoryID, formatTime(t.Date), t.IsExpense, t.Merchant, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM transactions WHERE id = ?`, id)
}

// Budgets

const budgetColumns = `id, user_id, name, category_id, amount, period`

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	var period string
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.CategoryID, &b.Amount, &period); err != nil {
		return core.Budget{}, err
	}
	b.Period = core.PeriodKind(period)
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	list, err := queryList(ctx, r, scanBudget, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return list, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if err != nil {
		return core.Budget{}, notFound(err)
	}
	return b, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Name, b.CategoryID, b.Amount.String(), string(b.Period))
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	return r.execAffecting(ctx,
		`UPDATE budgets SET name = ?, category_id = ?, amount = ?, period = ? WHERE id = ?`,
		b.Name, b.CategoryID, b.Amount.String(), string(b.Period), b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM budgets WHERE id = ?`, id)
}

// Goals

const goalColumns = `id, user_id, name, target_amount, current_amount, target_date, category, icon`

func scanGoal(row rowScanner) (core.Goal, error) {
	var g core.Goal
	var target sql.NullString
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &target, &g.Category, &g.Icon); err != nil {
		return core.Goal{}, err
	}
	td, err := parseNullTime(target)
	if err != nil {
		return core.Goal{}, err
	}
	g.TargetDate = td
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	list, err := queryList(ctx, r, scanGoal, `SELECT `+goalColumns+` FROM goals WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return list, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if err != nil {
		return core.Goal{}, notFound(err)
	}
	return g, nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), formatNullTime(g.TargetDate), g.Category, g.Icon)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	return r.execAffecting(ctx,
		`UPDATE goals SET name = ?, target_amount = ?, current_amount = ?, target_date = ?, category = ?, icon = ? WHERE id = ?`,
		g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), formatNullTime(g.TargetDate), g.Category, g.Icon, g.ID)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM goals WHERE id = ?`, id)
}
