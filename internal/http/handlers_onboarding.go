package http

import (
	"log/slog"
	"net/http"

	applog "lastapp/internal/log"
)

type onboardingResponse struct {
	Seen bool `json:"seen"`
}

// handleOnboarding exposes the one-time welcome flag. It lives in its own
// kv slot, outside the ledger collections.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, onboardingResponse{Seen: s.svc.WelcomeSeen(r.Context())})
	case http.MethodPost:
		if err := s.svc.MarkWelcomeSeen(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Failed to persist welcome flag",
				applog.FieldError, err.Error())
			writeError(w, http.StatusInternalServerError, "could not persist flag")
			return
		}
		writeJSON(w, http.StatusOK, onboardingResponse{Seen: true})
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
