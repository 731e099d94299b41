package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/auth"
	"github.com/budgetpilot/budgetpilot/internal/budget"
	"github.com/budgetpilot/budgetpilot/internal/domain"
	"github.com/budgetpilot/budgetpilot/internal/scrape"
)

const maxBodyBytes = 1 << 20

// handleMarket serves a market snapshot for an explicit location. The
// aggregator never fails; degraded sources surface through provenance
// fields, not errors.
func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := scrape.Params{
		CountryCode: q.Get("country"),
		City:        q.Get("city"),
	}
	if params.CountryCode == "" {
		s.writeError(w, r, apperr.NewValidationError("country query parameter is required"))
		return
	}

	if raw := q.Get("lat"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, r, apperr.NewValidationError("lat must be a number"))
			return
		}
		params.Lat = lat
	}
	if raw := q.Get("lon"); raw != "" {
		lon, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, r, apperr.NewValidationError("lon must be a number"))
			return
		}
		params.Lon = lon
	}
	if raw := q.Get("items"); raw != "" {
		params.Items = strings.Split(raw, ",")
	}

	snapshot := s.market.Snapshot(r.Context(), params)
	s.writeJSON(w, http.StatusOK, snapshot)
}

// handleGetBudget returns the stored budget record for the authenticated
// user, or null when nothing was saved yet.
func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	record, err := s.repo.GetBudgetData(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

// handleSaveBudget validates the submitted profile, prices it against a
// fresh market snapshot and persists profile plus estimates together.
func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var profile domain.UserProfile
	if err := decodeBody(r, &profile); err != nil {
		s.writeError(w, r, err)
		return
	}

	budget.NormalizeProfile(&profile)
	if err := budget.ValidateProfile(&profile); err != nil {
		s.writeError(w, r, err)
		return
	}

	snapshot := s.market.Snapshot(r.Context(), scrape.Params{
		CountryCode: profile.CountryCode,
		City:        profile.City,
		Lat:         profile.Lat,
		Lon:         profile.Lon,
		Items:       profile.GroceryItems,
	})

	estimates := budget.ComputeFullBudget(&profile, snapshot)
	record := &domain.BudgetRecord{Profile: profile, Estimates: &estimates}

	if err := s.repo.SaveBudgetData(r.Context(), userID, record); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

type computeRequest struct {
	Profile  domain.UserProfile     `json:"profile"`
	Snapshot *domain.MarketSnapshot `json:"snapshot"`
}

// handleComputeBudget prices a profile against a caller-supplied snapshot
// without touching storage or external sources.
func (s *Server) handleComputeBudget(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Snapshot == nil {
		s.writeError(w, r, apperr.NewValidationError("snapshot is required"))
		return
	}

	budget.NormalizeProfile(&req.Profile)
	if err := budget.ValidateProfile(&req.Profile); err != nil {
		s.writeError(w, r, err)
		return
	}

	breakdown := budget.ComputeFullBudget(&req.Profile, req.Snapshot)
	s.writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	notifications, err := s.repo.ListNotifications(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, notifications)
}

type markReadRequest struct {
	ID int64 `json:"id"`
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req markReadRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ID <= 0 {
		s.writeError(w, r, apperr.NewValidationError("notification id is required"))
		return
	}

	if err := s.repo.MarkNotificationRead(r.Context(), userID, req.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleHealth reports the status of every registered dependency check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results := s.checker.Check(r.Context())

	status := http.StatusOK
	for _, result := range results {
		if result != "OK" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	s.writeJSON(w, status, map[string]any{
		"status": http.StatusText(status),
		"checks": results,
	})
}

func decodeBody(r *http.Request, dest any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		return apperr.NewValidationError("request body is not valid JSON")
	}

	return nil
}
