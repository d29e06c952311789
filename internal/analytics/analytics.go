// Package analytics derives read-only metrics from a ledger snapshot.
//
// Every function is pure: given the same snapshot (and, where relevant, the
// same reference time) it returns the same result. Nothing here mutates
// state or touches storage.
package analytics

import (
	"sort"
	"time"

	"lastapp/internal/core"
)

// Status classifies budget utilization for display. Thresholds apply to the
// raw (unclamped) ratio so an overspent budget is always reported as
// exceeded even though its progress bar caps at 100%.
type Status string

const (
	StatusNormal   Status = "normal"   // ratio < 75
	StatusCaution  Status = "caution"  // 75 <= ratio < 90, color-only hint
	StatusCritical Status = "critical" // 90 <= ratio < 100
	StatusExceeded Status = "exceeded" // ratio >= 100
)

// Progress describes how far a budget has been consumed.
type Progress struct {
	Spent core.Money `json:"spent"`
	// Ratio is the unclamped utilization percentage. It can exceed 100.
	Ratio float64 `json:"ratio"`
	// Percent is Ratio clamped to [0, 100] for progress bars. Clamping must
	// never hide the over-budget condition, hence the separate Ratio.
	Percent float64 `json:"percent"`
	Status  Status  `json:"status"`
}

type CategoryAmount struct {
	Category core.Category `json:"category"`
	Total    core.Money    `json:"total"`
}

// MonthTotal is the spend for one calendar month. Year and Month carry the
// chronological sort key; Label alone ("Jan 2025") is not date-sortable.
type MonthTotal struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Label string     `json:"label"`
	Total core.Money `json:"total"`
}

// BudgetSpend is the spend attributed to one budget, including the
// "unknown" bucket for expenses whose budget no longer exists.
type BudgetSpend struct {
	BudgetID string     `json:"budgetId"`
	Name     string     `json:"name"`
	Total    core.Money `json:"total"`
}

// Summary aggregates the whole snapshot for the overview view.
type Summary struct {
	TotalSpent    core.Money `json:"totalSpent"`
	TotalBudgeted core.Money `json:"totalBudgeted"`
	// Remaining is negative when overall spend exceeds the overall budget.
	Remaining    core.Money `json:"remaining"`
	ExpenseCount int        `json:"expenseCount"`
	BudgetCount  int        `json:"budgetCount"`
}

// UnknownBudgetLabel names the bucket for expenses with a dangling budget
// reference. Dangling references are tolerated, never an error.
const UnknownBudgetLabel = "unknown budget"

// TotalSpent sums the amounts of all expenses charged to budgetID. It
// returns zero for an unknown id: referential integrity is not enforced, so
// an id that matches nothing is indistinguishable from an unused budget.
func TotalSpent(expenses []core.Expense, budgetID string) core.Money {
	var total core.Money
	for _, e := range expenses {
		if e.BudgetID == budgetID {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// StatusForRatio maps a raw utilization ratio to its warning tier.
func StatusForRatio(ratio float64) Status {
	switch {
	case ratio >= 100:
		return StatusExceeded
	case ratio >= 90:
		return StatusCritical
	case ratio >= 75:
		return StatusCaution
	default:
		return StatusNormal
	}
}

// BudgetProgress computes utilization of a budget against the given
// expenses. A zero budget amount yields zero progress rather than a
// division error.
func BudgetProgress(b core.Budget, expenses []core.Expense) Progress {
	spent := TotalSpent(expenses, b.ID)
	var ratio float64
	if b.Amount.Cents > 0 {
		ratio = float64(spent.Cents) / float64(b.Amount.Cents) * 100
	}
	percent := ratio
	if percent > 100 {
		percent = 100
	}
	return Progress{
		Spent:   spent,
		Ratio:   ratio,
		Percent: percent,
		Status:  StatusForRatio(ratio),
	}
}

// CategoryBreakdown sums expense amounts per category. The sum of all
// mapped values equals the sum of all expense amounts.
func CategoryBreakdown(expenses []core.Expense) map[core.Category]core.Money {
	totals := make(map[core.Category]core.Money)
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

// RankCategories returns per-category totals sorted by amount descending,
// ties broken by first-encountered order in the input.
func RankCategories(expenses []core.Expense) []CategoryAmount {
	totals := make(map[core.Category]core.Money)
	firstSeen := make(map[core.Category]int)
	var order []core.Category
	for i, e := range expenses {
		if _, ok := totals[e.Category]; !ok {
			firstSeen[e.Category] = i
			order = append(order, e.Category)
		}
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}

	ranked := make([]CategoryAmount, 0, len(order))
	for _, c := range order {
		ranked = append(ranked, CategoryAmount{Category: c, Total: totals[c]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Total.Cents != ranked[j].Total.Cents {
			return ranked[i].Total.Cents > ranked[j].Total.Cents
		}
		return firstSeen[ranked[i].Category] < firstSeen[ranked[j].Category]
	})
	return ranked
}

// MonthlyBreakdown buckets expenses by the calendar month of CreatedAt and
// returns the buckets in chronological order.
func MonthlyBreakdown(expenses []core.Expense) []MonthTotal {
	type ym struct {
		year  int
		month time.Month
	}
	totals := make(map[ym]core.Money)
	for _, e := range expenses {
		k := ym{year: e.CreatedAt.Year(), month: e.CreatedAt.Month()}
		totals[k] = totals[k].Add(e.Amount)
	}

	months := make([]MonthTotal, 0, len(totals))
	for k, total := range totals {
		label := time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
		months = append(months, MonthTotal{
			Year:  k.year,
			Month: k.month,
			Label: label,
			Total: total,
		})
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})
	return months
}

// GroupByBudget attributes expense totals to their budgets in budget
// insertion order. Expenses whose BudgetID matches no budget are collected
// in a trailing "unknown budget" bucket.
func GroupByBudget(s core.Snapshot) []BudgetSpend {
	known := make(map[string]bool, len(s.Budgets))
	for _, b := range s.Budgets {
		known[b.ID] = true
	}

	out := make([]BudgetSpend, 0, len(s.Budgets)+1)
	for _, b := range s.Budgets {
		out = append(out, BudgetSpend{
			BudgetID: b.ID,
			Name:     b.Name,
			Total:    TotalSpent(s.Expenses, b.ID),
		})
	}

	var dangling core.Money
	for _, e := range s.Expenses {
		if !known[e.BudgetID] {
			dangling = dangling.Add(e.Amount)
		}
	}
	if dangling.Cents > 0 {
		out = append(out, BudgetSpend{Name: UnknownBudgetLabel, Total: dangling})
	}
	return out
}

// PercentOfTotal returns amount as a percentage of total, 0 when total is
// zero so callers never see NaN.
func PercentOfTotal(amount, total core.Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	return float64(amount.Cents) / float64(total.Cents) * 100
}

// Summarize computes the overview numbers for a snapshot.
func Summarize(s core.Snapshot) Summary {
	var spent, budgeted core.Money
	for _, e := range s.Expenses {
		spent = spent.Add(e.Amount)
	}
	for _, b := range s.Budgets {
		budgeted = budgeted.Add(b.Amount)
	}
	return Summary{
		TotalSpent:    spent,
		TotalBudgeted: budgeted,
		Remaining:     budgeted.Sub(spent),
		ExpenseCount:  len(s.Expenses),
		BudgetCount:   len(s.Budgets),
	}
}
