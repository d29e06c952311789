package analytics

import (
	"testing"
	"time"

	"lastapp/internal/core"
)

func expense(id, budgetID string, cents int64, cat core.Category, created time.Time) core.Expense {
	return core.Expense{
		ID:          id,
		BudgetID:    budgetID,
		Description: "test expense",
		Amount:      core.Money{Cents: cents},
		Category:    cat,
		CreatedAt:   created,
	}
}

var june = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestTotalSpent(t *testing.T) {
	expenses := []core.Expense{
		expense("e1", "b1", 4000, core.CategoryFood, june),
		expense("e2", "b1", 5500, core.CategoryFood, june),
		expense("e3", "b2", 300, core.CategoryBills, june),
	}

	if got := TotalSpent(expenses, "b1").Cents; got != 9500 {
		t.Fatalf("expected 9500, got %d", got)
	}
	if got := TotalSpent(expenses, "b2").Cents; got != 300 {
		t.Fatalf("expected 300, got %d", got)
	}
	// Unknown budget id is not an error, just zero.
	if got := TotalSpent(expenses, "missing").Cents; got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := TotalSpent(nil, "b1").Cents; got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}
}

func TestBudgetProgressTiers(t *testing.T) {
	budget := core.Budget{ID: "b1", Name: "Groceries", Amount: core.Money{Cents: 10000}, CreatedAt: june}
	expenses := []core.Expense{
		expense("e1", "b1", 4000, core.CategoryFood, june),
		expense("e2", "b1", 5500, core.CategoryFood, june),
	}

	p := BudgetProgress(budget, expenses)
	if p.Spent.Cents != 9500 {
		t.Fatalf("expected spent 9500, got %d", p.Spent.Cents)
	}
	if p.Ratio != 95.0 || p.Percent != 95.0 {
		t.Fatalf("expected 95.0/95.0, got ratio=%v percent=%v", p.Ratio, p.Percent)
	}
	if p.Status != StatusCritical {
		t.Fatalf("expected critical, got %s", p.Status)
	}

	// A third expense pushes the budget over: the bar clamps at 100 but
	// the raw ratio keeps the exceeded flag honest.
	expenses = append(expenses, expense("e3", "b1", 1000, core.CategoryFood, june))
	p = BudgetProgress(budget, expenses)
	if p.Ratio != 105.0 {
		t.Fatalf("expected raw ratio 105.0, got %v", p.Ratio)
	}
	if p.Percent != 100.0 {
		t.Fatalf("expected clamped percent 100.0, got %v", p.Percent)
	}
	if p.Status != StatusExceeded {
		t.Fatalf("expected exceeded, got %s", p.Status)
	}
}

func TestStatusForRatio(t *testing.T) {
	cases := []struct {
		ratio float64
		want  Status
	}{
		{0, StatusNormal},
		{74.99, StatusNormal},
		{75, StatusCaution},
		{89.99, StatusCaution},
		{90, StatusCritical},
		{99.99, StatusCritical},
		{100, StatusExceeded},
		{250, StatusExceeded},
	}
	for _, tc := range cases {
		if got := StatusForRatio(tc.ratio); got != tc.want {
			t.Fatalf("ratio %v: expected %s, got %s", tc.ratio, tc.want, got)
		}
	}
}

func TestBudgetProgressMonotonic(t *testing.T) {
	budget := core.Budget{ID: "b1", Name: "Fun", Amount: core.Money{Cents: 5000}, CreatedAt: june}
	var expenses []core.Expense
	prev := -1.0
	for i := 0; i < 10; i++ {
		expenses = append(expenses, expense("e", "b1", 700, core.CategoryEntertainment, june))
		p := BudgetProgress(budget, expenses)
		if p.Ratio <= prev {
			t.Fatalf("ratio not increasing at step %d: %v <= %v", i, p.Ratio, prev)
		}
		if p.Percent > 100 {
			t.Fatalf("clamped percent above 100: %v", p.Percent)
		}
		prev = p.Ratio
	}
}

func TestCategoryBreakdownConservation(t *testing.T) {
	expenses := []core.Expense{
		expense("e1", "b1", 4000, core.CategoryFood, june),
		expense("e2", "b1", 5500, core.CategoryFood, june),
		expense("e3", "b2", 300, core.CategoryBills, june),
		expense("e4", "gone", 1200, core.CategoryTransport, june),
	}

	breakdown := CategoryBreakdown(expenses)
	var sum int64
	for _, total := range breakdown {
		sum += total.Cents
	}
	if sum != 11000 {
		t.Fatalf("conservation violated: expected 11000, got %d", sum)
	}
	if breakdown[core.CategoryFood].Cents != 9500 {
		t.Fatalf("expected food 9500, got %d", breakdown[core.CategoryFood].Cents)
	}
}

func TestRankCategoriesOrder(t *testing.T) {
	expenses := []core.Expense{
		expense("e1", "b1", 300, core.CategoryBills, june),
		expense("e2", "b1", 4000, core.CategoryFood, june),
		expense("e3", "b1", 300, core.CategoryTransport, june), // ties with bills
	}

	ranked := RankCategories(expenses)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranked))
	}
	if ranked[0].Category != core.CategoryFood {
		t.Fatalf("expected food first, got %s", ranked[0].Category)
	}
	// Tie broken by first-encountered order: bills before transport.
	if ranked[1].Category != core.CategoryBills || ranked[2].Category != core.CategoryTransport {
		t.Fatalf("tie-break wrong: got %s, %s", ranked[1].Category, ranked[2].Category)
	}
}

func TestMonthlyBreakdown(t *testing.T) {
	may := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	december := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		expense("e1", "b1", 4000, core.CategoryFood, june),
		expense("e2", "b1", 2000, core.CategoryFood, may),
		expense("e3", "b1", 1000, core.CategoryBills, december),
		expense("e4", "b1", 500, core.CategoryFood, june),
	}

	months := MonthlyBreakdown(expenses)
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}

	// Chronological order across a year boundary.
	if months[0].Label != "Dec 2024" || months[1].Label != "May 2025" || months[2].Label != "Jun 2025" {
		t.Fatalf("wrong order: %s, %s, %s", months[0].Label, months[1].Label, months[2].Label)
	}
	if months[2].Total.Cents != 4500 {
		t.Fatalf("expected June total 4500, got %d", months[2].Total.Cents)
	}

	var sum int64
	for _, m := range months {
		sum += m.Total.Cents
	}
	if sum != 7500 {
		t.Fatalf("conservation violated: expected 7500, got %d", sum)
	}
}

func TestGroupByBudgetUnknownBucket(t *testing.T) {
	snap := core.Snapshot{
		Budgets: []core.Budget{
			{ID: "b1", Name: "Groceries", Amount: core.Money{Cents: 10000}, CreatedAt: june},
		},
		Expenses: []core.Expense{
			expense("e1", "b1", 4000, core.CategoryFood, june),
			expense("e2", "deleted-budget", 700, core.CategoryOther, june),
		},
	}

	groups := GroupByBudget(snap)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Name != "Groceries" || groups[0].Total.Cents != 4000 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Name != UnknownBudgetLabel || groups[1].Total.Cents != 700 {
		t.Fatalf("dangling expense not grouped: %+v", groups[1])
	}
}

func TestPercentOfTotal(t *testing.T) {
	if got := PercentOfTotal(core.Money{Cents: 2500}, core.Money{Cents: 10000}); got != 25.0 {
		t.Fatalf("expected 25.0, got %v", got)
	}
	// Zero total must not produce NaN.
	if got := PercentOfTotal(core.Money{Cents: 2500}, core.Money{}); got != 0 {
		t.Fatalf("expected 0 for zero total, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	snap := core.Snapshot{
		Budgets: []core.Budget{
			{ID: "b1", Name: "A", Amount: core.Money{Cents: 10000}, CreatedAt: june},
			{ID: "b2", Name: "B", Amount: core.Money{Cents: 5000}, CreatedAt: june},
		},
		Expenses: []core.Expense{
			expense("e1", "b1", 9500, core.CategoryFood, june),
			expense("e2", "b2", 8000, core.CategoryBills, june),
		},
	}

	s := Summarize(snap)
	if s.TotalSpent.Cents != 17500 || s.TotalBudgeted.Cents != 15000 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.Remaining.Cents != -2500 {
		t.Fatalf("expected negative remaining, got %d", s.Remaining.Cents)
	}
	if s.ExpenseCount != 2 || s.BudgetCount != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}
}
