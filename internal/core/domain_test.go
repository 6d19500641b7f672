package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var day = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPeriodKindValid(t *testing.T) {
	for _, p := range []PeriodKind{Weekly, Monthly, Yearly} {
		if !p.Valid() {
			t.Fatalf("%q expected valid", p)
		}
	}
	for _, p := range []PeriodKind{"", "daily", "Monthly"} {
		if p.Valid() {
			t.Fatalf("%q expected invalid", p)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:      decimal.NewFromInt(100),
		Description: "ok",
		Date:        day,
		IsExpense:   true,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Amount: decimal.NewFromInt(1), Description: "a"},                     // zero date
		{Amount: decimal.NewFromInt(1), Description: "", Date: day},           // empty description
		{Amount: decimal.Zero, Description: "a", Date: day},                   // zero amount
		{Amount: decimal.NewFromInt(-5), Description: "a", Date: day},         // negative
		{Amount: decimal.NewFromInt(1), Description: strings.Repeat("x", 201), Date: day},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{Name: "Food", Amount: decimal.NewFromInt(500), Period: Monthly}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Period = "fortnightly"
	if err := bad.Validate(); err != ErrInvalidPeriod {
		t.Fatalf("Validate() = %v, want %v", err, ErrInvalidPeriod)
	}
	bad = good
	bad.Amount = decimal.Zero
	if err := bad.Validate(); err != ErrInvalidAmount {
		t.Fatalf("Validate() = %v, want %v", err, ErrInvalidAmount)
	}
}

func TestSubscriptionValidate(t *testing.T) {
	good := Subscription{
		Name:         "Netflix",
		Amount:       decimal.RequireFromString("15.99"),
		BillingCycle: Monthly,
		Category:     "Entertainment",
		Status:       SubscriptionActive,
		StartDate:    day,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Status = "expired"
	if err := bad.Validate(); err != ErrInvalidStatus {
		t.Fatalf("Validate() = %v, want %v", err, ErrInvalidStatus)
	}

	ancient := time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
	bad = good
	bad.BillingCycle = Weekly
	bad.StartDate = ancient
	if err := bad.Validate(); err != ErrDateOutOfRange {
		t.Fatalf("Validate() = %v, want %v", err, ErrDateOutOfRange)
	}
	if !IsValidationError(bad.Validate()) {
		t.Fatal("out-of-range start date should be a validation error")
	}
	bad = good
	bad.NextBillingDate = &ancient
	if err := bad.Validate(); err != ErrDateOutOfRange {
		t.Fatalf("Validate() = %v, want %v", err, ErrDateOutOfRange)
	}
	edge := good
	edge.StartDate = time.Date(MinDateYear, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := edge.Validate(); err != nil {
		t.Fatalf("Validate() at the lower bound = %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	good := Goal{Name: "Car", TargetAmount: decimal.NewFromInt(1000)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.CurrentAmount = decimal.NewFromInt(-1)
	if err := bad.Validate(); err != ErrNegativeAmount {
		t.Fatalf("Validate() = %v, want %v", err, ErrNegativeAmount)
	}
}

func TestDefaultCategoriesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range DefaultCategories() {
		if seen[c.ID] {
			t.Fatalf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = true
	}
	if !seen["income"] {
		t.Fatalf("expected income category")
	}
}

func TestIsValidationError(t *testing.T) {
	wrapped := fmt.Errorf("create budget: %w", ErrInvalidPeriod)
	if !IsValidationError(wrapped) {
		t.Errorf("IsValidationError(%v) = false, want true", wrapped)
	}
	if IsValidationError(errors.New("disk full")) {
		t.Error("IsValidationError(disk full) = true, want false")
	}
}
