// Package handlers contains the asynq task handlers for the background jobs.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/hibiken/asynq"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/budget"
	"github.com/budgetpilot/budgetpilot/internal/domain"
	"github.com/budgetpilot/budgetpilot/internal/jobs"
	"github.com/budgetpilot/budgetpilot/internal/notify"
	"github.com/budgetpilot/budgetpilot/internal/repository"
	"github.com/budgetpilot/budgetpilot/internal/scrape"
	"github.com/budgetpilot/budgetpilot/pkg/metrics"
)

// SnapshotProvider is the slice of the market aggregator the drift pass needs.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, p scrape.Params) *domain.MarketSnapshot
}

// DriftCheckHandler re-prices every stored budget against fresh market data
// and notifies users whose variable costs moved past the threshold.
type DriftCheckHandler struct {
	repo      repository.BudgetRepository
	market    SnapshotProvider
	notifier  notify.Notifier
	log       *slog.Logger
	threshold float64

	running atomic.Bool
	now     func() time.Time
}

func NewDriftCheckHandler(
	repo repository.BudgetRepository,
	market SnapshotProvider,
	notifier notify.Notifier,
	threshold float64,
	log *slog.Logger,
) *DriftCheckHandler {
	if notifier == nil {
		notifier = notify.Noop{}
	}

	return &DriftCheckHandler{
		repo:      repo,
		market:    market,
		notifier:  notifier,
		log:       log,
		threshold: threshold,
		now:       time.Now,
	}
}

// ProcessTask runs one drift pass. Overlapping invocations are collapsed: if
// a pass is still in flight the new one is skipped, not queued.
func (h *DriftCheckHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.DriftCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode drift check payload: %w", err)
	}

	if !h.running.CompareAndSwap(false, true) {
		metrics.RecordDriftRun("skipped")
		if h.log != nil {
			h.log.WarnContext(ctx, "drift check already running, skipping", slog.String("trigger", payload.Trigger))
		}
		return nil
	}
	defer h.running.Store(false)

	if h.log != nil {
		h.log.InfoContext(ctx, "drift check started", slog.String("trigger", payload.Trigger))
	}

	users, err := h.repo.GetUsersWithBudgetData(ctx)
	if err != nil {
		metrics.RecordDriftRun("error")
		return fmt.Errorf("load users for drift check: %w", err)
	}

	var notified, failed int
	for _, user := range users {
		sent, err := h.checkUser(ctx, user)
		if err != nil {
			failed++
			if h.log != nil {
				h.log.ErrorContext(ctx, "drift check failed for user",
					slog.Int64("user_id", user.UserID), slog.Any("error", err))
			}
			continue
		}
		if sent {
			notified++
		}
	}

	metrics.RecordDriftRun("ok")
	if h.log != nil {
		h.log.InfoContext(ctx, "drift check finished",
			slog.Int("users", len(users)),
			slog.Int("notified", notified),
			slog.Int("failed", failed))
	}

	return nil
}

// checkUser re-prices one stored budget. It reports whether a notification
// was created.
func (h *DriftCheckHandler) checkUser(ctx context.Context, user domain.StoredUser) (bool, error) {
	if user.Record.Estimates == nil {
		return false, nil
	}

	profile := user.Record.Profile
	budget.NormalizeProfile(&profile)
	if err := budget.ValidateProfile(&profile); err != nil {
		return false, fmt.Errorf("stored profile invalid: %w", err)
	}

	snapshot := h.market.Snapshot(ctx, scrape.Params{
		CountryCode: profile.CountryCode,
		City:        profile.City,
		Lat:         profile.Lat,
		Lon:         profile.Lon,
		Items:       profile.GroceryItems,
	})

	oldCosts := user.Record.Estimates.Variable()
	newCosts := budget.ComputeVariableCosts(&profile, snapshot)

	diff := math.Abs(newCosts.Total - oldCosts.Total)
	if diff <= h.threshold {
		return false, nil
	}

	notification := &domain.Notification{
		UserID:     user.UserID,
		Message:    h.alertMessage(&profile, diff),
		DiffAmount: diff,
		CreatedAt:  h.now().UTC(),
	}
	err := apperr.WithRetry(ctx, func() error {
		return h.repo.SaveNotification(ctx, notification)
	})
	if err != nil {
		return false, fmt.Errorf("save drift notification: %w", err)
	}

	// Move the stored baseline to the new market level so the same drift does
	// not alert again on the next pass.
	estimates := budget.ComputeFullBudget(&profile, snapshot)
	record := &domain.BudgetRecord{Profile: profile, Estimates: &estimates}
	err = apperr.WithRetry(ctx, func() error {
		return h.repo.SaveBudgetData(ctx, user.UserID, record)
	})
	if err != nil {
		return false, fmt.Errorf("update budget baseline: %w", err)
	}

	metrics.RecordDriftNotification()

	if err := h.notifier.SendDriftAlert(ctx, user.TelegramChatID, notification.Message); err != nil {
		// Delivery is best effort; the in-app notification already exists.
		if h.log != nil {
			h.log.WarnContext(ctx, "drift alert delivery failed",
				slog.Int64("user_id", user.UserID), slog.Any("error", err))
		}
	}

	return true, nil
}

func (h *DriftCheckHandler) alertMessage(profile *domain.UserProfile, diff float64) string {
	return fmt.Sprintf(
		"Market prices in your area have changed. Your estimated monthly costs shifted by about %.0f %s. Review your budget.",
		diff, profile.Currency)
}
