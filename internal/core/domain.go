package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Weekly  PeriodKind = "weekly"
	Monthly PeriodKind = "monthly"
	Yearly  PeriodKind = "yearly"
)

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

type (
	// PeriodKind is the recurrence cadence shared by budgets and subscriptions.
	PeriodKind string

	SubscriptionStatus string

	User struct {
		ID           string    `json:"id"`
		Username     string    `json:"username"`
		PasswordHash string    `json:"-"`
		FirstName    string    `json:"firstName,omitempty"`
		LastName     string    `json:"lastName,omitempty"`
		Email        string    `json:"email,omitempty"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		CategoryID  string          `json:"categoryId,omitempty"`
		Date        time.Time       `json:"date"`
		IsExpense   bool            `json:"isExpense"`
		Merchant    string          `json:"merchant,omitempty"`
	}

	Budget struct {
		ID         string          `json:"id"`
		UserID     string          `json:"userId"`
		Name       string          `json:"name"`
		CategoryID string          `json:"categoryId,omitempty"`
		Amount     decimal.Decimal `json:"amount"`
		Period     PeriodKind      `json:"period"`
	}

	Bill struct {
		ID       string          `json:"id"`
		UserID   string          `json:"userId"`
		Name     string          `json:"name"`
		Amount   decimal.Decimal `json:"amount"`
		DueDate  time.Time       `json:"dueDate"`
		IsPaid   bool            `json:"isPaid"`
		Category string          `json:"category"`
		Icon     string          `json:"icon,omitempty"`
	}

	Subscription struct {
		ID              string             `json:"id"`
		UserID          string             `json:"userId"`
		Name            string             `json:"name"`
		Amount          decimal.Decimal    `json:"amount"`
		BillingCycle    PeriodKind         `json:"billingCycle"`
		Category        string             `json:"category"`
		Status          SubscriptionStatus `json:"status"`
		Icon            string             `json:"icon,omitempty"`
		StartDate       time.Time          `json:"startDate"`
		NextBillingDate *time.Time         `json:"nextBillingDate,omitempty"`
	}

	Goal struct {
		ID            string          `json:"id"`
		UserID        string          `json:"userId"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		TargetDate    *time.Time      `json:"targetDate,omitempty"`
		Category      string          `json:"category,omitempty"`
		Icon          string          `json:"icon,omitempty"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrInvalidStatus      = errors.New("invalid subscription status")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyUsername      = errors.New("empty username")
	ErrUsernameTooLong    = errors.New("username too long (max 64 characters)")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrMissingDate        = errors.New("date cannot be zero")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrDateOutOfRange     = errors.New("date must not be before 1970-01-01")
)

// MinDateYear is the earliest year accepted for billing anchors. Weekly
// projection from it stays well inside the evaluator's step bound.
const MinDateYear = 1970

var validationErrors = []error{
	ErrInvalidAmount, ErrInvalidPeriod, ErrInvalidStatus, ErrEmptyName,
	ErrEmptyDescription, ErrEmptyCategory, ErrEmptyUsername, ErrUsernameTooLong,
	ErrWeakPassword, ErrMissingDate, ErrNegativeAmount, ErrDescriptionTooLong,
	ErrDateOutOfRange,
}

// IsValidationError reports whether err stems from entity validation.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the supported cadences.
func (p PeriodKind) Valid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionPaused, SubscriptionCancelled:
		return true
	default:
		return false
	}
}

// ValidateAmount requires a strictly positive amount.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func validateText(s string, empty error) error {
	if len(strings.TrimSpace(s)) == 0 {
		return empty
	}
	if len(s) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if len(u.Username) > 64 {
		return ErrUsernameTooLong
	}
	return nil
}

// ValidatePassword checks the plain-text password before hashing.
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return ErrWeakPassword
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if err := validateText(t.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (b Budget) Validate() error {
	if err := validateText(b.Name, ErrEmptyName); err != nil {
		return err
	}
	if err := ValidateAmount(b.Amount); err != nil {
		return err
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

func (b Bill) Validate() error {
	if err := validateText(b.Name, ErrEmptyName); err != nil {
		return err
	}
	if err := ValidateAmount(b.Amount); err != nil {
		return err
	}
	if b.DueDate.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (s Subscription) Validate() error {
	if err := validateText(s.Name, ErrEmptyName); err != nil {
		return err
	}
	if err := ValidateAmount(s.Amount); err != nil {
		return err
	}
	if !s.BillingCycle.Valid() {
		return ErrInvalidPeriod
	}
	if strings.TrimSpace(s.Category) == "" {
		return ErrEmptyCategory
	}
	if !s.Status.Valid() {
		return ErrInvalidStatus
	}
	if s.StartDate.IsZero() {
		return ErrMissingDate
	}
	if s.StartDate.Year() < MinDateYear {
		return ErrDateOutOfRange
	}
	if s.NextBillingDate != nil && s.NextBillingDate.Year() < MinDateYear {
		return ErrDateOutOfRange
	}
	return nil
}

func (g Goal) Validate() error {
	if err := validateText(g.Name, ErrEmptyName); err != nil {
		return err
	}
	if err := ValidateAmount(g.TargetAmount); err != nil {
		return err
	}
	if g.CurrentAmount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// DefaultCategories is the reference category set every backend is seeded with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "housing", Name: "Housing", Color: "#3B82F6", Icon: "home"},
		{ID: "food", Name: "Food & Dining", Color: "#10B981", Icon: "utensils"},
		{ID: "transportation", Name: "Transportation", Color: "#F59E0B", Icon: "car"},
		{ID: "entertainment", Name: "Entertainment", Color: "#8B5CF6", Icon: "film"},
		{ID: "utilities", Name: "Utilities", Color: "#EC4899", Icon: "bolt"},
		{ID: "shopping", Name: "Shopping", Color: "#6366F1", Icon: "shopping-cart"},
		{ID: "healthcare", Name: "Healthcare", Color: "#EF4444", Icon: "medkit"},
		{ID: "personal-care", Name: "Personal Care", Color: "#14B8A6", Icon: "spa"},
		{ID: "education", Name: "Education", Color: "#F97316", Icon: "graduation-cap"},
		{ID: "subscriptions", Name: "Subscriptions", Color: "#A855F7", Icon: "calendar-alt"},
		{ID: "income", Name: "Income", Color: "#22C55E", Icon: "hand-holding-dollar"},
	}
}
