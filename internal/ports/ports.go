// Package ports declares the persistence boundaries consumed by services and
// the HTTP layer. Every backend in internal/storage implements Store.
package ports

import (
	"context"
	"errors"

	"finsmart/internal/core"
)

var (
	// ErrNotFound is returned by Get, Update and Delete for unknown ids.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("already exists")
)

type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id string) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		// ListUserIDs returns every registered user id, for batch jobs.
		ListUserIDs(ctx context.Context) ([]string, error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	// Get* look rows up by id regardless of owner so callers can tell a
	// foreign row from a missing one. List* carry no ordering guarantee.
	TransactionStore interface {
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		GetBudget(ctx context.Context, id string) (core.Budget, error)
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, id string) error
	}

	BillStore interface {
		ListBills(ctx context.Context, userID string) ([]core.Bill, error)
		GetBill(ctx context.Context, id string) (core.Bill, error)
		CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)
		UpdateBill(ctx context.Context, b core.Bill) error
		DeleteBill(ctx context.Context, id string) error
	}

	SubscriptionStore interface {
		ListSubscriptions(ctx context.Context, userID string) ([]core.Subscription, error)
		GetSubscription(ctx context.Context, id string) (core.Subscription, error)
		CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
		UpdateSubscription(ctx context.Context, s core.Subscription) error
		DeleteSubscription(ctx context.Context, id string) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
		GetGoal(ctx context.Context, id string) (core.Goal, error)
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, id string) error
	}

	// Store is the full persistence surface of the application.
	Store interface {
		UserStore
		CategoryReader
		TransactionStore
		BudgetStore
		BillStore
		SubscriptionStore
		GoalStore
		Ping(ctx context.Context) error
		Close() error
	}

	// TransactionExporter mirrors transactions into an external ledger keyed
	// by transaction id. Deleting an unknown id is not an error.
	TransactionExporter interface {
		UpsertTransaction(ctx context.Context, t core.Transaction, categoryName string) (rowRef string, err error)
		DeleteTransaction(ctx context.Context, id string) error
	}
)
