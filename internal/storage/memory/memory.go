// Package memory is a mutex-guarded in-process implementation of ports.Store.
// It starts empty except for the default categories.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"finsmart/internal/core"
	"finsmart/internal/ports"
)

// collection holds rows of one entity keyed by id.
type collection[T any] struct {
	rows  map[string]T
	owner func(T) string
}

func newCollection[T any](owner func(T) string) collection[T] {
	return collection[T]{rows: make(map[string]T), owner: owner}
}

func (c collection[T]) list(userID string) []T {
	out := make([]T, 0)
	for _, r := range c.rows {
		if c.owner(r) == userID {
			out = append(out, r)
		}
	}
	return out
}

func (c collection[T]) get(id string) (T, error) {
	r, ok := c.rows[id]
	if !ok {
		var zero T
		return zero, ports.ErrNotFound
	}
	return r, nil
}

func (c collection[T]) replace(id string, r T) error {
	if _, ok := c.rows[id]; !ok {
		return ports.ErrNotFound
	}
	c.rows[id] = r
	return nil
}

func (c collection[T]) remove(id string) error {
	if _, ok := c.rows[id]; !ok {
		return ports.ErrNotFound
	}
	delete(c.rows, id)
	return nil
}

type Store struct {
	mu            sync.RWMutex
	users         map[string]core.User
	categories    []core.Category
	transactions  collection[core.Transaction]
	budgets       collection[core.Budget]
	bills         collection[core.Bill]
	subscriptions collection[core.Subscription]
	goals         collection[core.Goal]
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:         make(map[string]core.User),
		categories:    core.DefaultCategories(),
		transactions:  newCollection(func(t core.Transaction) string { return t.UserID }),
		budgets:       newCollection(func(b core.Budget) string { return b.UserID }),
		bills:         newCollection(func(b core.Bill) string { return b.UserID }),
		subscriptions: newCollection(func(s core.Subscription) string { return s.UserID }),
		goals:         newCollection(func(g core.Goal) string { return g.UserID }),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return core.User{}, ports.ErrConflict
		}
	}
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, ports.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return core.User{}, ports.ErrNotFound
}

func (s *Store) ListUserIDs(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) ListCategories(context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.categories...), nil
}

// Transactions

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions.list(userID), nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions.get(id)
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.transactions.rows[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions.replace(t.ID, t)
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions.remove(id)
}

// Budgets

func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budgets.list(userID), nil
}

func (s *Store) GetBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budgets.get(id)
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.NewString()
	s.budgets.rows[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.replace(b.ID, b)
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.remove(id)
}

// Bills

func (s *Store) ListBills(_ context.Context, userID string) ([]core.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bills.list(userID), nil
}

func (s *Store) GetBill(_ context.Context, id string) (core.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bills.get(id)
}

func (s *Store) CreateBill(_ context.Context, b core.Bill) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.NewString()
	s.bills.rows[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bills.replace(b.ID, b)
}

func (s *Store) DeleteBill(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bills.remove(id)
}

// Subscriptions

func (s *Store) ListSubscriptions(_ context.Context, userID string) ([]core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscriptions.list(userID), nil
}

func (s *Store) GetSubscription(_ context.Context, id string) (core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscriptions.get(id)
}

func (s *Store) CreateSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = uuid.NewString()
	s.subscriptions.rows[sub.ID] = sub
	return sub, nil
}

func (s *Store) UpdateSubscription(_ context.Context, sub core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions.replace(sub.ID, sub)
}

func (s *Store) DeleteSubscription(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions.remove(id)
}

// Goals

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goals.list(userID), nil
}

func (s *Store) GetGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goals.get(id)
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uuid.NewString()
	s.goals.rows[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals.replace(g.ID, g)
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals.remove(id)
}
