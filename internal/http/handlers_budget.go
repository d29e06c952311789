package http

import (
	"log/slog"
	"net/http"
	"time"

	"lastapp/internal/analytics"
	"lastapp/internal/core"
	applog "lastapp/internal/log"
)

type createBudgetRequest struct {
	Name string `json:"name"`
	// Amount is a decimal string ("250" or "250.50"); the engine stores
	// cents.
	Amount string `json:"amount"`
}

// budgetView is a budget enriched with its utilization, the shape the
// budget list screen renders directly.
type budgetView struct {
	core.Budget
	analytics.Progress
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBudget(w, r)
	case http.MethodGet:
		s.listBudgets(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	b := core.Budget{
		ID:        core.NewID(),
		Name:      req.Name,
		Amount:    core.Money{Cents: cents},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.svc.AddBudget(r.Context(), b); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	slog.InfoContext(r.Context(), "Budget created",
		applog.FieldBudgetID, b.ID,
		applog.FieldAmount, b.Amount.Cents)

	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Snapshot()
	views := make([]budgetView, 0, len(snap.Budgets))
	for _, b := range snap.Budgets {
		views = append(views, budgetView{
			Budget:   b,
			Progress: analytics.BudgetProgress(b, snap.Expenses),
		})
	}
	writeJSON(w, http.StatusOK, views)
}
