package httpapi

import (
	"net/http"
	"strings"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/auth"
)

// requireAuth verifies the bearer token and stores the user ID on the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, apperr.NewAuthError("missing bearer token"))
			return
		}

		userID, err := s.verifier.VerifyToken(token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(r.Context(), userID)))
	})
}
