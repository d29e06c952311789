package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"lastapp/internal/analytics"
)

type summaryResponse struct {
	analytics.Summary
	ByBudget []analytics.BudgetSpend `json:"byBudget"`
}

type categoryView struct {
	analytics.CategoryAmount
	// Percent is this category's share of total spend.
	Percent float64 `json:"percent"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.serveCachedAnalytics(w, r, "summary", func() (any, error) {
		snap := s.svc.Snapshot()
		return summaryResponse{
			Summary:  analytics.Summarize(snap),
			ByBudget: analytics.GroupByBudget(snap),
		}, nil
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.serveCachedAnalytics(w, r, "categories", func() (any, error) {
		snap := s.svc.Snapshot()
		total := analytics.Summarize(snap).TotalSpent
		ranked := analytics.RankCategories(snap.Expenses)
		views := make([]categoryView, 0, len(ranked))
		for _, ca := range ranked {
			views = append(views, categoryView{
				CategoryAmount: ca,
				Percent:        analytics.PercentOfTotal(ca.Total, total),
			})
		}
		return views, nil
	})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	s.serveCachedAnalytics(w, r, "monthly", func() (any, error) {
		return analytics.MonthlyBreakdown(s.svc.Snapshot().Expenses), nil
	})
}

// serveCachedAnalytics computes (or replays) an analytics response keyed by
// the ledger revision at request time.
func (s *Server) serveCachedAnalytics(w http.ResponseWriter, r *http.Request, name string, compute func() (any, error)) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	key := fmt.Sprintf("%s:%d", name, s.svc.Revision())
	if body, ok := s.analyticsCache.Get(key); ok {
		writeJSONBytes(w, http.StatusOK, body)
		return
	}

	result, err := compute()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "analytics computation failed")
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "analytics encoding failed")
		return
	}

	s.analyticsCache.Set(key, body)
	writeJSONBytes(w, http.StatusOK, body)
}
