// Package http exposes the ledger and analytics over a JSON API. This is
// the collaborator surface the mobile/web clients render from; no view
// logic lives here.
package http

import (
	"context"
	"net/http"
	"time"

	"lastapp/internal/cache"
	"lastapp/internal/services"
)

type Server struct {
	http.Server
	svc     *services.LedgerService
	limiter *rateLimiter

	// Analytics responses are cached per ledger revision: equal revisions
	// imply identical snapshots, so entries never go stale, only unused.
	analyticsCache *cache.LRUCache[[]byte]
}

func NewServer(addr string, svc *services.LedgerService) *Server {
	s := &Server{
		svc:            svc,
		limiter:        newRateLimiter(),
		analyticsCache: cache.NewLRUCache[[]byte](64, 5*time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleHealth)

	mux.HandleFunc("/api/budgets", s.handleBudgets)
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/", s.handleExpenseByID)
	mux.HandleFunc("/api/analytics/summary", s.handleSummary)
	mux.HandleFunc("/api/analytics/categories", s.handleCategories)
	mux.HandleFunc("/api/analytics/monthly", s.handleMonthly)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/onboarding", s.handleOnboarding)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.limiter.middleware(logRequests(mux)),
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Shutdown stops the rate limiter bookkeeping before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.Server.Shutdown(ctx)
}
