package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsmart/internal/amqp"
	"finsmart/internal/core"
	applog "finsmart/internal/log"
	"finsmart/internal/storage/memory"
)

type fakeExporter struct {
	mu        sync.Mutex
	rows      map[string]string
	deleted   []string
	upsertErr error
}

func newFakeExporter() *fakeExporter {
	return &fakeExporter{rows: map[string]string{}}
}

func (f *fakeExporter) UpsertTransaction(_ context.Context, t core.Transaction, categoryName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	f.rows[t.ID] = categoryName
	return "Transactions!A2:G2", nil
}

func (f *fakeExporter) DeleteTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeNotifier struct {
	got []amqp.AlertMessage
	err error
}

func (f *fakeNotifier) Notify(_ context.Context, a amqp.AlertMessage) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, a)
	return nil
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func seed(t *testing.T, store *memory.Store) (core.User, core.Transaction) {
	t.Helper()
	ctx := context.Background()
	u, err := store.CreateUser(ctx, core.User{Username: "ana"})
	require.NoError(t, err)
	tx, err := store.CreateTransaction(ctx, core.Transaction{
		UserID:      u.ID,
		Amount:      decimal.NewFromInt(40),
		Description: "Dinner",
		CategoryID:  "food",
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		IsExpense:   true,
	})
	require.NoError(t, err)
	return u, tx
}

func TestHandleSyncMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert exports with category name", func(t *testing.T) {
		store := memory.New()
		u, tx := seed(t, store)
		exp := newFakeExporter()
		w := NewSyncWorker(store, exp, quietLogger())

		err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(u.ID, tx.ID, amqp.OpUpsert))
		require.NoError(t, err)
		assert.Equal(t, "Food & Dining", exp.rows[tx.ID])
	})

	t.Run("delete removes the row", func(t *testing.T) {
		store := memory.New()
		u, tx := seed(t, store)
		exp := newFakeExporter()
		w := NewSyncWorker(store, exp, quietLogger())

		require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(u.ID, tx.ID, amqp.OpUpsert)))
		require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(u.ID, tx.ID, amqp.OpDelete)))
		assert.NotContains(t, exp.rows, tx.ID)
	})

	t.Run("missing transaction is removed from the ledger", func(t *testing.T) {
		store := memory.New()
		u, _ := seed(t, store)
		exp := newFakeExporter()
		w := NewSyncWorker(store, exp, quietLogger())

		require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(u.ID, "gone", amqp.OpUpsert)))
		assert.Equal(t, []string{"gone"}, exp.deleted)
	})

	t.Run("foreign owner is dropped as malformed", func(t *testing.T) {
		store := memory.New()
		_, tx := seed(t, store)
		w := NewSyncWorker(store, newFakeExporter(), quietLogger())

		err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage("someone-else", tx.ID, amqp.OpUpsert))
		assert.ErrorIs(t, err, amqp.ErrMalformedMessage)
	})

	t.Run("exporter failure is returned for requeue", func(t *testing.T) {
		store := memory.New()
		u, tx := seed(t, store)
		exp := newFakeExporter()
		exp.upsertErr = errors.New("quota exceeded")
		w := NewSyncWorker(store, exp, quietLogger())

		err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(u.ID, tx.ID, amqp.OpUpsert))
		require.Error(t, err)
		assert.NotErrorIs(t, err, amqp.ErrMalformedMessage)
	})
}

func TestStartupSyncCheck(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, tx := seed(t, store)
	exp := newFakeExporter()

	w := NewSyncWorker(store, exp, quietLogger())
	require.NoError(t, w.StartupSyncCheck(ctx))
	assert.Len(t, exp.rows, 1)
	assert.Contains(t, exp.rows, tx.ID)
}

func TestHandleAlertMessage(t *testing.T) {
	ctx := context.Background()
	msg := amqp.AlertMessage{UserID: "u1", Kind: amqp.AlertBill, ItemID: "b1", Name: "Rent", Status: "overdue"}

	n := &fakeNotifier{}
	w := NewAlertWorker(n, quietLogger())
	require.NoError(t, w.HandleAlertMessage(ctx, msg))
	require.Len(t, n.got, 1)
	assert.Equal(t, "b1", n.got[0].ItemID)

	failing := NewAlertWorker(&fakeNotifier{err: errors.New("telegram down")}, quietLogger())
	assert.Error(t, failing.HandleAlertMessage(ctx, msg))
}
