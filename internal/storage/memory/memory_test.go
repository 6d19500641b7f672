package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
	"finsmart/internal/ports"
)

func TestUsersUniqueUsername(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, core.User{Username: "alice", PasswordHash: "x"})
	if err != nil || u.ID == "" {
		t.Fatalf("unexpected create: user=%+v err=%v", u, err)
	}
	if _, err := s.CreateUser(ctx, core.User{Username: "Alice"}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "ALICE")
	if err != nil || got.ID != u.ID {
		t.Fatalf("lookup by username: got=%+v err=%v", got, err)
	}
	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	ids, _ := s.ListUserIDs(ctx)
	if len(ids) != 1 || ids[0] != u.ID {
		t.Fatalf("ListUserIDs() = %v", ids)
	}
}

func TestTransactionsScopedByUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	a, _ := s.CreateTransaction(ctx, core.Transaction{UserID: "u1", Amount: decimal.NewFromInt(10), Description: "a", Date: day, IsExpense: true})
	_, _ = s.CreateTransaction(ctx, core.Transaction{UserID: "u2", Amount: decimal.NewFromInt(20), Description: "b", Date: day})

	list, err := s.ListTransactions(ctx, "u1")
	if err != nil || len(list) != 1 || list[0].ID != a.ID {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	a.Description = "changed"
	if err := s.UpdateTransaction(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetTransaction(ctx, a.ID)
	if got.Description != "changed" {
		t.Fatalf("GetTransaction().Description = %q, want %q", got.Description, "changed")
	}

	if err := s.DeleteTransaction(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, a.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if err := s.UpdateTransaction(ctx, a); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestEmptyListsAreNotNil(t *testing.T) {
	s := New()
	ctx := context.Background()
	bills, _ := s.ListBills(ctx, "nobody")
	if bills == nil || len(bills) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", bills)
	}
	subs, _ := s.ListSubscriptions(ctx, "nobody")
	if subs == nil || len(subs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", subs)
	}
}

func TestCategoriesSeeded(t *testing.T) {
	cats, err := New().ListCategories(context.Background())
	if err != nil || len(cats) != len(core.DefaultCategories()) {
		t.Fatalf("unexpected categories: %v err=%v", cats, err)
	}
}
