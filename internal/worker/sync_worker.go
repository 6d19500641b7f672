// Package worker holds the message handlers run by finsmart-worker.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"finsmart/internal/amqp"
	"finsmart/internal/core"
	applog "finsmart/internal/log"
	"finsmart/internal/ports"
)

// SyncStore is the read side of the store the exporter needs.
type SyncStore interface {
	ports.UserStore
	ports.CategoryReader
	ports.TransactionStore
}

// SyncWorker mirrors transactions into the export ledger.
type SyncWorker struct {
	store    SyncStore
	exporter ports.TransactionExporter
	logger   *applog.Logger

	catMu      sync.Mutex
	categories map[string]string
}

func NewSyncWorker(store SyncStore, exporter ports.TransactionExporter, logger *applog.Logger) *SyncWorker {
	return &SyncWorker{
		store:    store,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleSyncMessage reloads the transaction named by msg and upserts or
// removes its row. A transaction that no longer exists is removed from the
// ledger, since the delete message may still be in flight.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg amqp.TransactionSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		applog.FieldUserID, msg.UserID,
		applog.FieldEntityID, msg.TransactionID,
		applog.FieldOperation, string(msg.Op))

	if msg.Op == amqp.OpDelete {
		return w.remove(ctx, msg.TransactionID)
	}

	t, err := w.store.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, ports.ErrNotFound) {
		w.logger.WarnContext(ctx, "Transaction gone before export, removing row",
			applog.FieldEntityID, msg.TransactionID)
		return w.remove(ctx, msg.TransactionID)
	}
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", msg.TransactionID, err)
	}
	if t.UserID != msg.UserID {
		return fmt.Errorf("%w: transaction %s does not belong to user %s", amqp.ErrMalformedMessage, t.ID, msg.UserID)
	}

	return w.export(ctx, t)
}

func (w *SyncWorker) export(ctx context.Context, t core.Transaction) error {
	name, err := w.categoryName(ctx, t.CategoryID)
	if err != nil {
		// The id is still a usable label.
		w.logger.WarnContext(ctx, "Category lookup failed", applog.FieldError, err.Error())
	}
	ref, err := w.exporter.UpsertTransaction(ctx, t, name)
	if err != nil {
		return fmt.Errorf("export transaction %s: %w", t.ID, err)
	}
	w.logger.InfoContext(ctx, "Successfully synced transaction",
		applog.FieldEntityID, t.ID,
		applog.FieldSheetsRef, ref,
		applog.FieldAmount, t.Amount.StringFixed(2))
	return nil
}

func (w *SyncWorker) remove(ctx context.Context, id string) error {
	if err := w.exporter.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete exported transaction %s: %w", id, err)
	}
	w.logger.InfoContext(ctx, "Successfully deleted exported transaction", applog.FieldEntityID, id)
	return nil
}

// categoryName resolves a category id against the reference set, loaded
// once per worker.
func (w *SyncWorker) categoryName(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	w.catMu.Lock()
	defer w.catMu.Unlock()
	if w.categories == nil {
		cats, err := w.store.ListCategories(ctx)
		if err != nil {
			return "", fmt.Errorf("list categories: %w", err)
		}
		w.categories = make(map[string]string, len(cats))
		for _, c := range cats {
			w.categories[c.ID] = c.Name
		}
	}
	return w.categories[id], nil
}

// StartupSyncCheck re-exports every stored transaction. Upserts are keyed by
// id, so this recovers rows for messages lost while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	userIDs, err := w.store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users for startup sync: %w", err)
	}

	successCount, errorCount := 0, 0
	for _, userID := range userIDs {
		txs, err := w.store.ListTransactions(ctx, userID)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to list transactions for startup sync",
				applog.FieldUserID, userID, applog.FieldError, err.Error())
			errorCount++
			continue
		}
		for _, t := range txs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := w.export(ctx, t); err != nil {
				w.logger.ErrorContext(ctx, "Failed to sync transaction during startup",
					applog.FieldEntityID, t.ID, applog.FieldError, err.Error())
				errorCount++
				continue
			}
			successCount++
		}
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		"users", len(userIDs),
		"synced", successCount,
		"errors", errorCount)
	return nil
}
