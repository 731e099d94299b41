package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/repository"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil && s.log != nil {
		s.log.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeError maps the application error taxonomy onto HTTP statuses. The
// central handler owns logging and Sentry reporting; the client only ever
// sees the user-facing message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	userMessage := "internal error"
	if s.errs != nil {
		userMessage, _ = s.errs.Handle(r.Context(), err)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case "E100":
			status = http.StatusBadRequest
		case "E300":
			status = http.StatusBadGateway
		case "E400":
			status = http.StatusUnauthorized
		}

		s.writeJSON(w, status, errorResponse{Error: appErr.UserMessage, Code: appErr.Code})
		return
	}

	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: userMessage})
}
