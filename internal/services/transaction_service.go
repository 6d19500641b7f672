package services

import (
	"context"
	"fmt"

	"finsmart/internal/amqp"
	"finsmart/internal/core"
	applog "finsmart/internal/log"
	"finsmart/internal/ports"
)

// SyncPublisher is satisfied by *amqp.Client.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, msg amqp.TransactionSyncMessage) error
}

// Invalidator drops cached per-user views after a write.
type Invalidator interface {
	Invalidate(userID string)
}

// TransactionService writes transactions to the store first and then
// publishes a sync message. A failed publish is logged and never fails the
// request; the row is already saved.
type TransactionService struct {
	store       ports.TransactionStore
	publisher   SyncPublisher
	invalidator Invalidator
	logger      *applog.Logger
}

// NewTransactionService accepts a nil publisher or invalidator.
func NewTransactionService(store ports.TransactionStore, publisher SyncPublisher, invalidator Invalidator, logger *applog.Logger) *TransactionService {
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger.WithComponent(applog.ComponentLedger),
	}
}

func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.afterWrite(ctx, created.UserID, created.ID, amqp.OpUpsert)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.afterWrite(ctx, t.UserID, t.ID, amqp.OpUpsert)
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, t core.Transaction) error {
	if err := s.store.DeleteTransaction(ctx, t.ID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.afterWrite(ctx, t.UserID, t.ID, amqp.OpDelete)
	return nil
}

func (s *TransactionService) afterWrite(ctx context.Context, userID, id string, op amqp.SyncOp) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP not configured, skipping sync message", applog.FieldEntityID, id)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, amqp.NewTransactionSyncMessage(userID, id, op)); err != nil {
		applog.LogError(ctx, "Failed to publish sync message", err,
			applog.ErrorTypeNetwork, applog.ComponentLedger, applog.OpPublish,
			applog.NewFields().WithUser(userID).WithEntity("transaction", id))
	}
}
