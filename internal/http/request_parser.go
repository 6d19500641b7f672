// Package http provides HTTP server and handler implementations.
//
// This file implements request decoding: JSON bodies, flexible dates, the
// evaluation-instant override and the entity payloads.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads at most maxBodyBytes of JSON into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// ParseNow returns the evaluation instant: the RFC 3339 ?now= override when
// present, the wall clock otherwise. An unencoded "+" offset arrives as a
// space after query decoding and is read back as "+".
func ParseNow(r *http.Request, clock func() time.Time) (time.Time, error) {
	v := strings.ReplaceAll(strings.TrimSpace(r.URL.Query().Get("now")), " ", "+")
	if v == "" {
		return clock(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid now parameter %q: must be RFC 3339", v)
	}
	return t, nil
}

// FlexDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC
// midnight). An empty string decodes to the zero time.
type FlexDate struct {
	time.Time
}

func (d *FlexDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

func optionalDate(d *FlexDate) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

type (
	transactionInput struct {
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		CategoryID  string          `json:"categoryId"`
		Date        FlexDate        `json:"date"`
		IsExpense   *bool           `json:"isExpense"`
		Merchant    string          `json:"merchant"`
	}

	budgetInput struct {
		Name       string          `json:"name"`
		CategoryID string          `json:"categoryId"`
		Amount     decimal.Decimal `json:"amount"`
		Period     core.PeriodKind `json:"period"`
	}

	billInput struct {
		Name     string          `json:"name"`
		Amount   decimal.Decimal `json:"amount"`
		DueDate  FlexDate        `json:"dueDate"`
		IsPaid   bool            `json:"isPaid"`
		Category string          `json:"category"`
		Icon     string          `json:"icon"`
	}

	subscriptionInput struct {
		Name            string                  `json:"name"`
		Amount          decimal.Decimal         `json:"amount"`
		BillingCycle    core.PeriodKind         `json:"billingCycle"`
		Category        string                  `json:"category"`
		Status          core.SubscriptionStatus `json:"status"`
		Icon            string                  `json:"icon"`
		StartDate       FlexDate                `json:"startDate"`
		NextBillingDate *FlexDate               `json:"nextBillingDate"`
	}

	goalInput struct {
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		TargetDate    *FlexDate       `json:"targetDate"`
		Category      string          `json:"category"`
		Icon          string          `json:"icon"`
	}

	loginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
)

// Transactions default to expenses; amounts are rounded to cents.
func (in transactionInput) toTransaction(userID string) core.Transaction {
	isExpense := true
	if in.IsExpense != nil {
		isExpense = *in.IsExpense
	}
	return core.Transaction{
		UserID:      userID,
		Amount:      in.Amount.Round(2),
		Description: sanitizeInput(in.Description),
		CategoryID:  sanitizeInput(in.CategoryID),
		Date:        in.Date.Time,
		IsExpense:   isExpense,
		Merchant:    sanitizeInput(in.Merchant),
	}
}

func (in budgetInput) toBudget(userID string) core.Budget {
	return core.Budget{
		UserID:     userID,
		Name:       sanitizeInput(in.Name),
		CategoryID: sanitizeInput(in.CategoryID),
		Amount:     in.Amount.Round(2),
		Period:     core.PeriodKind(strings.ToLower(string(in.Period))),
	}
}

func (in billInput) toBill(userID string) core.Bill {
	return core.Bill{
		UserID:   userID,
		Name:     sanitizeInput(in.Name),
		Amount:   in.Amount.Round(2),
		DueDate:  in.DueDate.Time,
		IsPaid:   in.IsPaid,
		Category: sanitizeInput(in.Category),
		Icon:     sanitizeInput(in.Icon),
	}
}

// New subscriptions are active and start now unless told otherwise.
func (in subscriptionInput) toSubscription(userID string, now time.Time) core.Subscription {
	status := core.SubscriptionStatus(strings.ToLower(string(in.Status)))
	if status == "" {
		status = core.SubscriptionActive
	}
	start := in.StartDate.Time
	if start.IsZero() {
		start = now
	}
	return core.Subscription{
		UserID:          userID,
		Name:            sanitizeInput(in.Name),
		Amount:          in.Amount.Round(2),
		BillingCycle:    core.PeriodKind(strings.ToLower(string(in.BillingCycle))),
		Category:        sanitizeInput(in.Category),
		Status:          status,
		Icon:            sanitizeInput(in.Icon),
		StartDate:       start,
		NextBillingDate: optionalDate(in.NextBillingDate),
	}
}

func (in goalInput) toGoal(userID string) core.Goal {
	return core.Goal{
		UserID:        userID,
		Name:          sanitizeInput(in.Name),
		TargetAmount:  in.TargetAmount.Round(2),
		CurrentAmount: in.CurrentAmount.Round(2),
		TargetDate:    optionalDate(in.TargetDate),
		Category:      sanitizeInput(in.Category),
		Icon:          sanitizeInput(in.Icon),
	}
}
