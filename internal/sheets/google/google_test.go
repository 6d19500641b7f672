package google

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"

	"finsmart/internal/core"
	applog "finsmart/internal/log"
)

// fakeSheet serves the three Values endpoints the exporter uses over an
// in-memory column of rows.
type fakeSheet struct {
	mu   sync.Mutex
	rows map[int][]any
}

func (f *fakeSheet) columnA() [][]any {
	maxRow := 0
	for r := range f.rows {
		if r > maxRow {
			maxRow = r
		}
	}
	out := make([][]any, maxRow)
	for r := 1; r <= maxRow; r++ {
		if row, ok := f.rows[r]; ok && len(row) > 0 {
			out[r-1] = []any{row[0]}
		} else {
			out[r-1] = []any{}
		}
	}
	return out
}

// rowFromRange extracts N from "Sheet!AN:GN".
func rowFromRange(rng string) int {
	_, cells, _ := strings.Cut(rng, "!")
	start, _, _ := strings.Cut(cells, ":")
	n, _ := strconv.Atoi(strings.TrimLeft(start, "ABCDEFG"))
	return n
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, rng, _ := strings.Cut(r.URL.Path, "/values/")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": f.columnA()})
	case r.Method == http.MethodPut:
		var body struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.rows[rowFromRange(rng)] = body.Values[0]
		json.NewEncoder(w).Encode(map[string]any{"updatedRange": rng})
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":clear"):
		rng = strings.TrimSuffix(rng, ":clear")
		delete(f.rows, rowFromRange(rng))
		json.NewEncoder(w).Encode(map[string]any{"clearedRange": rng})
	default:
		http.Error(w, "unexpected request", http.StatusBadRequest)
	}
}

func newTestExporter(t *testing.T) (*Exporter, *fakeSheet) {
	t.Helper()
	fake := &fakeSheet{rows: map[int][]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	logger := applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	e, err := New(context.Background(), Config{SpreadsheetID: "sheet-1", SheetName: "Transactions"}, logger,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e, fake
}

func sampleTx(id string) core.Transaction {
	return core.Transaction{
		ID:          id,
		UserID:      "u1",
		Amount:      decimal.RequireFromString("12.5"),
		Description: "Groceries",
		CategoryID:  "food",
		Date:        time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		IsExpense:   true,
		Merchant:    "Market",
	}
}

func TestUpsertTransaction(t *testing.T) {
	ctx := context.Background()
	e, fake := newTestExporter(t)

	ref, err := e.UpsertTransaction(ctx, sampleTx("tx-1"), "Food & Dining")
	if err != nil {
		t.Fatalf("UpsertTransaction() error = %v", err)
	}
	if ref != "Transactions!A2:G2" {
		t.Errorf("ref = %q, want Transactions!A2:G2", ref)
	}
	if got := fake.rows[1][0]; got != "ID" {
		t.Errorf("header not written, row 1 = %v", fake.rows[1])
	}
	if got := fake.rows[2][6]; got != "-12.50" {
		t.Errorf("amount cell = %v, want -12.50", got)
	}

	ref, err = e.UpsertTransaction(ctx, sampleTx("tx-2"), "")
	if err != nil || ref != "Transactions!A3:G3" {
		t.Fatalf("second UpsertTransaction() = %q, %v", ref, err)
	}

	updated := sampleTx("tx-1")
	updated.Description = "Weekly groceries"
	ref, err = e.UpsertTransaction(ctx, updated, "Food & Dining")
	if err != nil || ref != "Transactions!A2:G2" {
		t.Fatalf("update UpsertTransaction() = %q, %v", ref, err)
	}
	if got := fake.rows[2][2]; got != "Weekly groceries" {
		t.Errorf("description = %v, want updated value", got)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	e, fake := newTestExporter(t)

	if _, err := e.UpsertTransaction(ctx, sampleTx("tx-1"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.UpsertTransaction(ctx, sampleTx("tx-2"), ""); err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteTransaction(ctx, "tx-1"); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, ok := fake.rows[2]; ok {
		t.Error("row 2 should be cleared")
	}
	if err := e.DeleteTransaction(ctx, "missing"); err != nil {
		t.Errorf("DeleteTransaction(missing) error = %v, want nil", err)
	}
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	logger := applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	if _, err := New(context.Background(), Config{}, logger); err == nil {
		t.Error("expected error without spreadsheet id")
	}
	_, err := New(context.Background(), Config{SpreadsheetID: "x"}, logger)
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Errorf("expected credentials error, got %v", err)
	}
}

func TestTransactionRow(t *testing.T) {
	income := sampleTx("tx-9")
	income.IsExpense = false
	income.Merchant = ""
	row := transactionRow(income, "")

	want := []any{"tx-9", "2024-03-02", "Groceries", "", "food", "Income", "12.50"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestFindRow(t *testing.T) {
	values := [][]any{{"ID"}, {"a"}, {}, {"b"}}
	tests := []struct {
		id   string
		want int
	}{
		{"a", 2},
		{"b", 4},
		{"ID", 0},
		{"zzz", 0},
	}
	for _, tt := range tests {
		if got := findRow(values, tt.id); got != tt.want {
			t.Errorf("findRow(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}
