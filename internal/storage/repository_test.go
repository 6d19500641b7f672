package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsmart/internal/core"
	"finsmart/internal/ports"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finsmart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteUsersAndCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, core.User{Username: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = repo.CreateUser(ctx, core.User{Username: "ALICE", PasswordHash: "hash"})
	assert.True(t, errors.Is(err, ports.ErrConflict))

	got, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = repo.GetUser(ctx, "missing")
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(core.DefaultCategories()))
}

func TestSQLiteTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, core.User{Username: "bob", PasswordHash: "h"})
	require.NoError(t, err)

	when := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID:      u.ID,
		Amount:      decimal.RequireFromString("42.17"),
		Description: "Groceries",
		CategoryID:  "food",
		Date:        when,
		IsExpense:   true,
	})
	require.NoError(t, err)

	got, err := repo.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("42.17")))
	assert.True(t, got.Date.Equal(when))
	assert.True(t, got.IsExpense)
	assert.Equal(t, "food", got.CategoryID)

	got.IsExpense = false
	require.NoError(t, repo.UpdateTransaction(ctx, got))
	list, err := repo.ListTransactions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsExpense)

	require.NoError(t, repo.DeleteTransaction(ctx, tx.ID))
	assert.True(t, errors.Is(repo.DeleteTransaction(ctx, tx.ID), ports.ErrNotFound))
}

func TestSQLiteSubscriptionOptionalDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, core.User{Username: "carol", PasswordHash: "h"})
	require.NoError(t, err)

	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	sub, err := repo.CreateSubscription(ctx, core.Subscription{
		UserID:       u.ID,
		Name:         "Streaming",
		Amount:       decimal.RequireFromString("15.99"),
		BillingCycle: core.Monthly,
		Category:     "Entertainment",
		Status:       core.SubscriptionActive,
		StartDate:    start,
	})
	require.NoError(t, err)

	got, err := repo.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, got.NextBillingDate)
	assert.Equal(t, core.Monthly, got.BillingCycle)

	next := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	got.NextBillingDate = &next
	got.Status = core.SubscriptionCancelled
	require.NoError(t, repo.UpdateSubscription(ctx, got))

	again, err := repo.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, again.NextBillingDate)
	assert.True(t, again.NextBillingDate.Equal(next))
	assert.Equal(t, core.SubscriptionCancelled, again.Status)
}

func TestSQLiteEmptyLists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bills, err := repo.ListBills(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, bills)
	assert.Empty(t, bills)

	goals, err := repo.ListGoals(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, goals)
}
