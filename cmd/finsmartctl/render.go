package main

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"finsmart/internal/evaluator"
	"finsmart/internal/services"
)

var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorBlue   = lipgloss.Color("#83a598")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")
)

// palette renders styled text, or plain text when colour is off.
type palette struct {
	ok, warn, bad, info, dim, header lipgloss.Style
}

func newPalette(color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{plain, plain, plain, plain, plain, plain}
	}
	return palette{
		ok:     lipgloss.NewStyle().Foreground(colorGreen),
		warn:   lipgloss.NewStyle().Foreground(colorYellow),
		bad:    lipgloss.NewStyle().Foreground(colorRed),
		info:   lipgloss.NewStyle().Foreground(colorBlue),
		dim:    lipgloss.NewStyle().Foreground(colorDim),
		header: lipgloss.NewStyle().Foreground(colorHeader).Bold(true),
	}
}

func (p palette) tier(t evaluator.Tier) string {
	switch t {
	case evaluator.TierCritical:
		return p.bad.Render(string(t))
	case evaluator.TierWarning:
		return p.warn.Render(string(t))
	default:
		return p.ok.Render(string(t))
	}
}

func (p palette) due(s evaluator.DueState) string {
	switch s {
	case evaluator.StatusOverdue:
		return p.bad.Render(string(s))
	case evaluator.StatusDueToday, evaluator.StatusDueSoon:
		return p.warn.Render(string(s))
	case evaluator.StatusUpcoming:
		return p.info.Render(string(s))
	default:
		return p.dim.Render(string(s))
	}
}

func renderBudgets(p palette, statuses []services.BudgetStatus) string {
	if len(statuses) == 0 {
		return p.dim.Render("no budgets") + "\n"
	}
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{
			s.Budget.Name,
			string(s.Budget.Period),
			money(s.Progress.Spent),
			money(s.Progress.LimitAmount),
			s.Progress.Percentage.StringFixed(1) + "%",
			p.tier(s.Progress.Tier),
		})
	}
	return renderTable(p, []string{"BUDGET", "PERIOD", "SPENT", "LIMIT", "USED", "TIER"}, rows)
}

// dueRow flattens bills and subscriptions into one list.
type dueRow struct {
	Name   string
	Kind   string
	Amount decimal.Decimal
	Due    *time.Time
	Status evaluator.DueStatus
}

func dueRows(bills []services.BillStatus, subs []services.SubscriptionStatus) []dueRow {
	rows := make([]dueRow, 0, len(bills)+len(subs))
	for _, b := range bills {
		due := b.Bill.DueDate
		rows = append(rows, dueRow{Name: b.Bill.Name, Kind: "bill", Amount: b.Bill.Amount, Due: &due, Status: b.Status})
	}
	for _, s := range subs {
		rows = append(rows, dueRow{Name: s.Subscription.Name, Kind: "subscription", Amount: s.Subscription.Amount, Due: s.NextBillingDate, Status: s.Status})
	}
	// Soonest first; settled items without a date sink to the bottom.
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Due, rows[j].Due
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return rows
}

func renderDue(p palette, rows []dueRow) string {
	if len(rows) == 0 {
		return p.dim.Render("no bills or subscriptions") + "\n"
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		due, days := "-", "-"
		if r.Due != nil {
			due = r.Due.Format("2006-01-02")
		}
		switch r.Status.Status {
		case evaluator.StatusSettled:
		case evaluator.StatusOverdue:
			days = "-" + strconv.Itoa(r.Status.OverdueByDays)
		default:
			days = strconv.Itoa(r.Status.DaysRemaining)
		}
		out = append(out, []string{r.Name, r.Kind, money(r.Amount), due, days, p.due(r.Status.Status)})
	}
	return renderTable(p, []string{"NAME", "KIND", "AMOUNT", "DUE", "DAYS", "STATUS"}, out)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// renderTable pads columns by visible width so styled cells stay aligned.
func renderTable(p palette, headers []string, rows [][]string) string {
	const colGap = 2
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style(cell))
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return p.header.Render(s) })
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	writeRow(seps, func(s string) string { return p.dim.Render(s) })
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}
