package google

import (
	"fmt"
	"strings"

	"finsmart/internal/core"
)

// Column layout of the export sheet, A through G.
var headerRow = []any{"ID", "Date", "Description", "Merchant", "Category", "Type", "Amount"}

const lastColumn = "G"

// transactionRow renders t as one sheet row. Expenses are written as
// negative amounts so a SUM over column G yields the net balance.
func transactionRow(t core.Transaction, categoryName string) []any {
	kind := "Income"
	amount := t.Amount
	if t.IsExpense {
		kind = "Expense"
		amount = amount.Neg()
	}
	if categoryName == "" {
		categoryName = t.CategoryID
	}
	return []any{
		t.ID,
		t.Date.Format("2006-01-02"),
		t.Description,
		t.Merchant,
		categoryName,
		kind,
		amount.StringFixed(2),
	}
}

// findRow returns the 1-based row whose first cell equals id, or 0. The
// header row never matches.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn, row)
}
