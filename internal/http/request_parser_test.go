package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"finsmart/internal/core"
)

func TestParseNow(t *testing.T) {
	clock := func() time.Time { return fixedNow }

	tests := []struct {
		name    string
		target  string
		want    time.Time
		wantErr bool
	}{
		{"default clock", "/api/bills/status", fixedNow, false},
		{"override", "/api/bills/status?now=2024-01-02T03:04:05Z", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), false},
		{"with offset", "/x?now=2024-01-02T03:04:05%2B02:00", time.Date(2024, 1, 2, 1, 4, 5, 0, time.UTC), false},
		{"unencoded plus offset", "/x?now=2025-03-20T12:00:00+02:00", time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC), false},
		{"negative offset", "/x?now=2025-03-20T12:00:00-02:00", time.Date(2025, 3, 20, 14, 0, 0, 0, time.UTC), false},
		{"date only rejected", "/x?now=2024-01-02", time.Time{}, true},
		{"garbage", "/x?now=soon", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNow(httptest.NewRequest("GET", tt.target, nil), clock)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseNow() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNow() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseNow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlexDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{`"2024-02-29"`, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), false},
		{`"2024-02-29T12:30:00Z"`, time.Date(2024, 2, 29, 12, 30, 0, 0, time.UTC), false},
		{`""`, time.Time{}, false},
		{`"29/02/2024"`, time.Time{}, true},
		{`20240229`, time.Time{}, true},
	}
	for _, tt := range tests {
		var d FlexDate
		err := json.Unmarshal([]byte(tt.in), &d)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Unmarshal(%s) error = nil, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.in, err)
			continue
		}
		if !d.Equal(tt.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, d.Time, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Coffee  ", "Coffee"},
		{"a\x00b\x07c", "abc"},
		{"line\nbreak\ttab", "line\nbreak\ttab"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPayloadDefaults(t *testing.T) {
	var tx transactionInput
	if err := json.Unmarshal([]byte(`{"amount":"3.456","description":" Tea "}`), &tx); err != nil {
		t.Fatal(err)
	}
	got := tx.toTransaction("u1")
	if !got.IsExpense {
		t.Error("transactions default to expenses")
	}
	if got.Amount.String() != "3.46" || got.Description != "Tea" || got.UserID != "u1" {
		t.Errorf("toTransaction() = %+v", got)
	}

	var sub subscriptionInput
	if err := json.Unmarshal([]byte(`{"name":"Gym","amount":30,"billingCycle":"Monthly","category":"health"}`), &sub); err != nil {
		t.Fatal(err)
	}
	s := sub.toSubscription("u1", fixedNow)
	if s.Status != core.SubscriptionActive || !s.StartDate.Equal(fixedNow) || s.BillingCycle != core.Monthly {
		t.Errorf("toSubscription() = %+v", s)
	}
	if s.NextBillingDate != nil {
		t.Errorf("NextBillingDate = %v, want nil", s.NextBillingDate)
	}

	var goal goalInput
	if err := json.Unmarshal([]byte(`{"name":"Car","targetAmount":5000,"targetDate":"2025-06-01"}`), &goal); err != nil {
		t.Fatal(err)
	}
	g := goal.toGoal("u1")
	if g.TargetDate == nil || !g.TargetDate.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("TargetDate = %v", g.TargetDate)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
