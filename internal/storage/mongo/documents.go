package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
)

// Amounts are persisted as decimal strings so no precision is lost to
// BSON doubles.

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	UsernameKey  string    `bson:"usernameKey"`
	PasswordHash string    `bson:"passwordHash"`
	FirstName    string    `bson:"firstName,omitempty"`
	LastName     string    `bson:"lastName,omitempty"`
	Email        string    `bson:"email,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
}

type categoryDoc struct {
	ID    string `bson:"_id"`
	Name  string `bson:"name"`
	Color string `bson:"color"`
	Icon  string `bson:"icon"`
	Order int    `bson:"order"`
}

type transactionDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	Amount      string    `bson:"amount"`
	Description string    `bson:"description"`
	CategoryID  string    `bson:"categoryId,omitempty"`
	Date        time.Time `bson:"date"`
	IsExpense   bool      `bson:"isExpense"`
	Merchant    string    `bson:"merchant,omitempty"`
}

type budgetDoc struct {
	ID         string `bson:"_id"`
	UserID     string `bson:"userId"`
	Name       string `bson:"name"`
	CategoryID string `bson:"categoryId,omitempty"`
	Amount     string `bson:"amount"`
	Period     string `bson:"period"`
}

type billDoc struct {
	ID       string    `bson:"_id"`
	UserID   string    `bson:"userId"`
	Name     string    `bson:"name"`
	Amount   string    `bson:"amount"`
	DueDate  time.Time `bson:"dueDate"`
	IsPaid   bool      `bson:"isPaid"`
	Category string    `bson:"category"`
	Icon     string    `bson:"icon,omitempty"`
}

type subscriptionDoc struct {
	ID              string     `bson:"_id"`
	UserID          string     `bson:"userId"`
	Name            string     `bson:"name"`
	Amount          string     `bson:"amount"`
	BillingCycle    string     `bson:"billingCycle"`
	Category        string     `bson:"category"`
	Status          string     `bson:"status"`
	Icon            string     `bson:"icon,omitempty"`
	StartDate       time.Time  `bson:"startDate"`
	NextBillingDate *time.Time `bson:"nextBillingDate,omitempty"`
}

type goalDoc struct {
	ID            string     `bson:"_id"`
	UserID        string     `bson:"userId"`
	Name          string     `bson:"name"`
	TargetAmount  string     `bson:"targetAmount"`
	CurrentAmount string     `bson:"currentAmount"`
	TargetDate    *time.Time `bson:"targetDate,omitempty"`
	Category      string     `bson:"category,omitempty"`
	Icon          string     `bson:"icon,omitempty"`
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode %s %q: %w", field, s, err)
	}
	return d, nil
}

func fromUser(u core.User, key string) userDoc {
	return userDoc{
		ID: u.ID, Username: u.Username, UsernameKey: key, PasswordHash: u.PasswordHash,
		FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, CreatedAt: u.CreatedAt,
	}
}

func (d userDoc) toCore() (core.User, error) {
	return core.User{
		ID: d.ID, Username: d.Username, PasswordHash: d.PasswordHash,
		FirstName: d.FirstName, LastName: d.LastName, Email: d.Email, CreatedAt: d.CreatedAt,
	}, nil
}

func (d categoryDoc) toCore() (core.Category, error) {
	return core.Category{ID: d.ID, Name: d.Name, Color: d.Color, Icon: d.Icon}, nil
}

func fromTransaction(t core.Transaction) transactionDoc {
	return transactionDoc{
		ID: t.ID, UserID: t.UserID, Amount: t.Amount.String(), Description: t.Description,
		CategoryID: t.CategoryID, Date: t.Date, IsExpense: t.IsExpense, Merchant: t.Merchant,
	}
}

func (d transactionDoc) toCore() (core.Transaction, error) {
	amt, err := parseAmount("amount", d.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID: d.ID, UserID: d.UserID, Amount: amt, Description: d.Description,
		CategoryID: d.CategoryID, Date: d.Date, IsExpense: d.IsExpense, Merchant: d.Merchant,
	}, nil
}

func fromBudget(b core.Budget) budgetDoc {
	return budgetDoc{
		ID: b.ID, UserID: b.UserID, Name: b.Name, CategoryID: b.CategoryID,
		Amount: b.Amount.String(), Period: string(b.Period),
	}
}

func (d budgetDoc) toCore() (core.Budget, error) {
	amt, err := parseAmount("amount", d.Amount)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		ID: d.ID, UserID: d.UserID, Name: d.Name, CategoryID: d.CategoryID,
		Amount: amt, Period: core.PeriodKind(d.Period),
	}, nil
}

func fromBill(b core.Bill) billDoc {
	return billDoc{
		ID: b.ID, UserID: b.UserID, Name: b.Name, Amount: b.Amount.String(),
		DueDate: b.DueDate, IsPaid: b.IsPaid, Category: b.Category, Icon: b.Icon,
	}
}

func (d billDoc) toCore() (core.Bill, error) {
	amt, err := parseAmount("amount", d.Amount)
	if err != nil {
		return core.Bill{}, err
	}
	return core.Bill{
		ID: d.ID, UserID: d.UserID, Name: d.Name, Amount: amt,
		DueDate: d.DueDate, IsPaid: d.IsPaid, Category: d.Category, Icon: d.Icon,
	}, nil
}

func fromSubscription(s core.Subscription) subscriptionDoc {
	return subscriptionDoc{
		ID: s.ID, UserID: s.UserID, Name: s.Name, Amount: s.Amount.String(),
		BillingCycle: string(s.BillingCycle), Category: s.Category, Status: string(s.Status),
		Icon: s.Icon, StartDate: s.StartDate, NextBillingDate: s.NextBillingDate,
	}
}

func (d subscriptionDoc) toCore() (core.Subscription, error) {
	amt, err := parseAmount("amount", d.Amount)
	if err != nil {
		return core.Subscription{}, err
	}
	return core.Subscription{
		ID: d.ID, UserID: d.UserID, Name: d.Name, Amount: amt,
		BillingCycle: core.PeriodKind(d.BillingCycle), Category: d.Category,
		Status: core.SubscriptionStatus(d.Status), Icon: d.Icon,
		StartDate: d.StartDate, NextBillingDate: d.NextBillingDate,
	}, nil
}

func fromGoal(g core.Goal) goalDoc {
	return goalDoc{
		ID: g.ID, UserID: g.UserID, Name: g.Name, TargetAmount: g.TargetAmount.String(),
		CurrentAmount: g.CurrentAmount.String(), TargetDate: g.TargetDate, Category: g.Category, Icon: g.Icon,
	}
}

func (d goalDoc) toCore() (core.Goal, error) {
	target, err := parseAmount("targetAmount", d.TargetAmount)
	if err != nil {
		return core.Goal{}, err
	}
	current, err := parseAmount("currentAmount", d.CurrentAmount)
	if err != nil {
		return core.Goal{}, err
	}
	return core.Goal{
		ID: d.ID, UserID: d.UserID, Name: d.Name, TargetAmount: target,
		CurrentAmount: current, TargetDate: d.TargetDate, Category: d.Category, Icon: d.Icon,
	}, nil
}
