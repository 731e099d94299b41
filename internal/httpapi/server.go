// Package httpapi exposes the budget service over HTTP: market data, budget
// persistence and computation, notifications and operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/auth"
	"github.com/budgetpilot/budgetpilot/internal/domain"
	"github.com/budgetpilot/budgetpilot/internal/health"
	"github.com/budgetpilot/budgetpilot/internal/middleware"
	"github.com/budgetpilot/budgetpilot/internal/repository"
	"github.com/budgetpilot/budgetpilot/internal/scrape"
	"github.com/budgetpilot/budgetpilot/pkg/config"
	"github.com/budgetpilot/budgetpilot/pkg/graceful"
	"github.com/budgetpilot/budgetpilot/pkg/logger"
)

// MarketProvider is the slice of the aggregator the API serves.
type MarketProvider interface {
	Snapshot(ctx context.Context, p scrape.Params) *domain.MarketSnapshot
}

// Server bundles the HTTP handlers with their dependencies.
type Server struct {
	repo     repository.BudgetRepository
	market   MarketProvider
	verifier *auth.Verifier
	checker  *health.Checker
	errs     *apperr.Handler
	log      *slog.Logger
}

func NewServer(
	repo repository.BudgetRepository,
	market MarketProvider,
	verifier *auth.Verifier,
	checker *health.Checker,
	errs *apperr.Handler,
	log *slog.Logger,
) *Server {
	return &Server{
		repo:     repo,
		market:   market,
		verifier: verifier,
		checker:  checker,
		errs:     errs,
		log:      log,
	}
}

// Handler builds the routing table with per-route middleware.
func (s *Server) Handler(rateLimit *middleware.RateLimitMiddleware) http.Handler {
	mux := http.NewServeMux()

	route := func(pattern, name string, h http.HandlerFunc, wrap ...func(http.Handler) http.Handler) {
		var handler http.Handler = h
		for i := len(wrap) - 1; i >= 0; i-- {
			handler = wrap[i](handler)
		}
		mux.Handle(pattern, middleware.Metrics(name, handler))
	}

	perUser := func(next http.Handler) http.Handler { return next }
	market := perUser
	if rateLimit != nil {
		perUser = rateLimit.PerUser
		market = rateLimit.Market
	}

	route("GET /api/market", "market", s.handleMarket, market)
	route("GET /api/budget", "budget_get", s.handleGetBudget, s.requireAuth, perUser)
	route("POST /api/budget", "budget_save", s.handleSaveBudget, s.requireAuth, perUser)
	route("POST /api/budget/compute", "budget_compute", s.handleComputeBudget, s.requireAuth, perUser)
	route("GET /api/notifications", "notifications_list", s.handleListNotifications, s.requireAuth, perUser)
	route("POST /api/notifications/mark-read", "notifications_mark_read", s.handleMarkNotificationRead, s.requireAuth, perUser)
	route("GET /api/health", "health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = middleware.New(s.log)(handler)
	handler = logger.Middleware(handler)

	return handler
}

// Graceful wraps the handler in the shutdown-aware HTTP server.
func (s *Server) Graceful(cfg config.HTTPConfig, rateLimit *middleware.RateLimitMiddleware) *graceful.Server {
	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: s.Handler(rateLimit),
	}

	return graceful.NewServer(s.log, srv, cfg.ShutdownTimeout)
}
