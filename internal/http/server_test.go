package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lastapp/internal/analytics"
	"lastapp/internal/core"
	"lastapp/internal/kv/memory"
	"lastapp/internal/ledger"
	"lastapp/internal/services"
)

func newTestServer(t *testing.T) (*httptest.Server, *services.LedgerService) {
	t.Helper()
	l := ledger.New(memory.New())
	svc := services.NewLedgerService(l, nil)
	srv := NewServer(":0", svc)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.limiter.stop()
		_ = svc.Close()
	})
	return ts, svc
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createBudget(t *testing.T, ts *httptest.Server, name, amount string) core.Budget {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/budgets",
		fmt.Sprintf(`{"name":%q,"amount":%q}`, name, amount))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create budget: status %d", resp.StatusCode)
	}
	var b core.Budget
	decodeBody(t, resp, &b)
	return b
}

func createExpense(t *testing.T, ts *httptest.Server, budgetID, description, amount, category string) core.Expense {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/expenses",
		fmt.Sprintf(`{"budgetId":%q,"description":%q,"amount":%q,"category":%q}`,
			budgetID, description, amount, category))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense: status %d", resp.StatusCode)
	}
	var e core.Expense
	decodeBody(t, resp, &e)
	return e
}

func TestBudgetUtilizationFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	b := createBudget(t, ts, "Groceries", "100")
	if b.Amount.Cents != 10000 {
		t.Fatalf("expected 10000 cents, got %d", b.Amount.Cents)
	}

	createExpense(t, ts, b.ID, "weekly shop", "40.00", "food")
	createExpense(t, ts, b.ID, "market", "55.00", "food")

	resp, err := http.Get(ts.URL + "/api/budgets")
	if err != nil {
		t.Fatalf("GET budgets: %v", err)
	}
	var views []budgetView
	decodeBody(t, resp, &views)
	if len(views) != 1 {
		t.Fatalf("expected 1 budget, got %d", len(views))
	}
	v := views[0]
	if v.Spent.Cents != 9500 || v.Ratio != 95 || v.Status != analytics.StatusCritical {
		t.Fatalf("unexpected progress: %+v", v.Progress)
	}

	// One more expense pushes it over; the bar clamps, the status does not.
	createExpense(t, ts, b.ID, "extras", "10", "food")
	resp, _ = http.Get(ts.URL + "/api/budgets")
	decodeBody(t, resp, &views)
	v = views[0]
	if v.Ratio != 105 || v.Percent != 100 || v.Status != analytics.StatusExceeded {
		t.Fatalf("unexpected over-budget progress: %+v", v.Progress)
	}
}

func TestDeleteExpenseIsIdempotent(t *testing.T) {
	ts, _ := newTestServer(t)

	b := createBudget(t, ts, "Transport", "50")
	e := createExpense(t, ts, b.ID, "bus pass", "25.00", "transport")

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/expenses/"+e.ID, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete attempt %d: status %d", i+1, resp.StatusCode)
		}
	}

	resp, _ := http.Get(ts.URL + "/api/expenses")
	var expenses []core.Expense
	decodeBody(t, resp, &expenses)
	if len(expenses) != 0 {
		t.Fatalf("expected no expenses, got %d", len(expenses))
	}
}

func TestRejectedPayloads(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		url  string
		body string
		want int
	}{
		{"malformed json", "/api/budgets", `{not json`, http.StatusBadRequest},
		{"unknown field", "/api/budgets", `{"name":"x","amount":"10","extra":true}`, http.StatusBadRequest},
		{"bad amount", "/api/budgets", `{"name":"x","amount":"abc"}`, http.StatusUnprocessableEntity},
		{"empty name", "/api/budgets", `{"name":"","amount":"10"}`, http.StatusUnprocessableEntity},
		{"bad category", "/api/expenses", `{"budgetId":"b","description":"x","amount":"1","category":"fun"}`, http.StatusUnprocessableEntity},
		{"negative amount", "/api/expenses", `{"budgetId":"b","description":"x","amount":"-1","category":"food"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+tt.url, tt.body)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	b := createBudget(t, ts, "Everything", "200")
	createExpense(t, ts, b.ID, "groceries", "60.00", "food")
	createExpense(t, ts, b.ID, "cinema", "20.00", "entertainment")
	// Dangling budget reference lands in the "unknown budget" bucket.
	createExpense(t, ts, "gone", "mystery", "30.00", "other")

	resp, err := http.Get(ts.URL + "/api/analytics/summary")
	if err != nil {
		t.Fatalf("GET summary: %v", err)
	}
	var summary summaryResponse
	decodeBody(t, resp, &summary)
	if summary.TotalSpent.Cents != 11000 || summary.ExpenseCount != 3 {
		t.Fatalf("unexpected summary: %+v", summary.Summary)
	}
	if summary.Remaining.Cents != 20000-11000 {
		t.Fatalf("unexpected remaining: %d", summary.Remaining.Cents)
	}
	last := summary.ByBudget[len(summary.ByBudget)-1]
	if last.Name != analytics.UnknownBudgetLabel || last.Total.Cents != 3000 {
		t.Fatalf("unexpected unknown bucket: %+v", last)
	}

	resp, err = http.Get(ts.URL + "/api/analytics/categories")
	if err != nil {
		t.Fatalf("GET categories: %v", err)
	}
	var categories []categoryView
	decodeBody(t, resp, &categories)
	if len(categories) != 3 || categories[0].Category != core.CategoryFood {
		t.Fatalf("unexpected ranking: %+v", categories)
	}
	var totalPercent float64
	for _, c := range categories {
		totalPercent += c.Percent
	}
	if totalPercent < 99.9 || totalPercent > 100.1 {
		t.Fatalf("percentages do not sum to 100: %f", totalPercent)
	}

	resp, err = http.Get(ts.URL + "/api/analytics/monthly")
	if err != nil {
		t.Fatalf("GET monthly: %v", err)
	}
	var monthly []analytics.MonthTotal
	decodeBody(t, resp, &monthly)
	if len(monthly) != 1 || monthly[0].Total.Cents != 11000 {
		t.Fatalf("unexpected monthly breakdown: %+v", monthly)
	}
}

func TestAnalyticsCacheTracksRevision(t *testing.T) {
	ts, _ := newTestServer(t)

	b := createBudget(t, ts, "Cache", "100")
	createExpense(t, ts, b.ID, "first", "10.00", "food")

	get := func() summaryResponse {
		resp, err := http.Get(ts.URL + "/api/analytics/summary")
		if err != nil {
			t.Fatalf("GET summary: %v", err)
		}
		var s summaryResponse
		decodeBody(t, resp, &s)
		return s
	}

	if got := get().TotalSpent.Cents; got != 1000 {
		t.Fatalf("expected 1000 spent, got %d", got)
	}
	// The cached response must not survive a mutation.
	createExpense(t, ts, b.ID, "second", "5.00", "food")
	if got := get().TotalSpent.Cents; got != 1500 {
		t.Fatalf("stale analytics after mutation: %d", got)
	}
}

func TestOnboardingFlag(t *testing.T) {
	ts, _ := newTestServer(t)

	var flag onboardingResponse
	resp, err := http.Get(ts.URL + "/api/onboarding")
	if err != nil {
		t.Fatalf("GET onboarding: %v", err)
	}
	decodeBody(t, resp, &flag)
	if flag.Seen {
		t.Fatal("flag should start unset")
	}

	resp = postJSON(t, ts.URL+"/api/onboarding", "")
	decodeBody(t, resp, &flag)
	if !flag.Seen {
		t.Fatal("POST should set the flag")
	}

	resp, _ = http.Get(ts.URL + "/api/onboarding")
	decodeBody(t, resp, &flag)
	if !flag.Seen {
		t.Fatal("flag should stay set")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/api/budgets", "/api/expenses", "/api/analytics/summary"} {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("PUT %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("PUT %s: status %d", path, resp.StatusCode)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, resp.StatusCode)
		}
	}
}
