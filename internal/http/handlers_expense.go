package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"lastapp/internal/core"
	applog "lastapp/internal/log"
)

type createExpenseRequest struct {
	BudgetID    string `json:"budgetId"`
	Description string `json:"description"`
	// Amount is a decimal string; the engine stores cents.
	Amount       string `json:"amount"`
	Category     string `json:"category"`
	ReceiptImage string `json:"receiptImage,omitempty"`
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createExpense(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.svc.Snapshot().Expenses)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unknown category")
		return
	}

	// The budget reference is not resolved on purpose: a dangling id is
	// tolerated and grouped under "unknown budget" in analytics.
	e := core.Expense{
		ID:           core.NewID(),
		BudgetID:     req.BudgetID,
		Description:  req.Description,
		Amount:       core.Money{Cents: cents},
		Category:     category,
		ReceiptImage: req.ReceiptImage,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.svc.AddExpense(r.Context(), e); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	slog.InfoContext(r.Context(), "Expense created",
		applog.FieldExpenseID, e.ID,
		applog.FieldBudgetID, e.BudgetID,
		applog.FieldAmount, e.Amount.Cents,
		applog.FieldCategory, string(e.Category))

	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	// Idempotent: deleting an unknown id is a no-op, not an error.
	s.svc.DeleteExpense(r.Context(), id)

	slog.InfoContext(r.Context(), "Expense delete handled", applog.FieldExpenseID, id)
	w.WriteHeader(http.StatusNoContent)
}
