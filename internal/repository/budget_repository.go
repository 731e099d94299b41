// Package repository provides the SQL persistence layer for budget records
// and drift notifications.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/domain"
)

// ErrNotFound is returned when the requested user or record does not exist.
var ErrNotFound = errors.New("record not found")

// BudgetRepository defines persistence operations for budget records.
type BudgetRepository interface {
	GetBudgetData(ctx context.Context, userID int64) (*domain.BudgetRecord, error)
	SaveBudgetData(ctx context.Context, userID int64, record *domain.BudgetRecord) error
	GetUsersWithBudgetData(ctx context.Context) ([]domain.StoredUser, error)
	SaveNotification(ctx context.Context, notification *domain.Notification) error
	ListNotifications(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID int64) error
}

type budgetRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewBudgetRepository creates a new SQL-backed budget repository.
func NewBudgetRepository(db *sql.DB, log *slog.Logger) BudgetRepository {
	return &budgetRepository{
		db:  db,
		log: log,
	}
}

// GetBudgetData loads the stored budget blob for one user. A user without a
// saved budget yields (nil, nil); an unknown user yields ErrNotFound.
func (r *budgetRepository) GetBudgetData(ctx context.Context, userID int64) (*domain.BudgetRecord, error) {
	const query = `
		SELECT budget_data
		FROM users
		WHERE id = $1
	`

	var blob sql.NullString
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		if r.log != nil {
			r.log.Error("failed to fetch budget data", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, apperr.NewPersistenceError(fmt.Errorf("select budget data: %w", err))
	}

	if !blob.Valid || blob.String == "" {
		return nil, nil
	}

	var record domain.BudgetRecord
	if err := json.Unmarshal([]byte(blob.String), &record); err != nil {
		if r.log != nil {
			r.log.Error("failed to decode budget data", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, apperr.NewPersistenceError(fmt.Errorf("decode budget data: %w", err))
	}

	return &record, nil
}

// SaveBudgetData replaces the stored budget blob for one user.
func (r *budgetRepository) SaveBudgetData(ctx context.Context, userID int64, record *domain.BudgetRecord) error {
	blob, err := json.Marshal(record)
	if err != nil {
		return apperr.NewPersistenceError(fmt.Errorf("encode budget data: %w", err))
	}

	const query = `
		UPDATE users
		SET budget_data = $2
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, userID, string(blob))
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to save budget data", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return apperr.NewPersistenceError(fmt.Errorf("update budget data: %w", err))
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetUsersWithBudgetData returns every user carrying a saved budget blob.
// Rows with an unreadable blob are skipped with a warning so one corrupt
// record never blocks the periodic re-check of the rest.
func (r *budgetRepository) GetUsersWithBudgetData(ctx context.Context) ([]domain.StoredUser, error) {
	const query = `
		SELECT id, email, COALESCE(telegram_chat_id, 0), budget_data
		FROM users
		WHERE budget_data IS NOT NULL AND budget_data != ''
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to list users with budget data", slog.Any("error", err))
		}
		return nil, apperr.NewPersistenceError(fmt.Errorf("select users with budget data: %w", err))
	}
	defer rows.Close()

	var users []domain.StoredUser
	for rows.Next() {
		var (
			user domain.StoredUser
			blob string
		)
		if err := rows.Scan(&user.UserID, &user.Email, &user.TelegramChatID, &blob); err != nil {
			return nil, apperr.NewPersistenceError(fmt.Errorf("scan user row: %w", err))
		}

		if err := json.Unmarshal([]byte(blob), &user.Record); err != nil {
			if r.log != nil {
				r.log.Warn("skipping user with unreadable budget data",
					slog.Int64("user_id", user.UserID), slog.Any("error", err))
			}
			continue
		}

		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewPersistenceError(fmt.Errorf("iterate user rows: %w", err))
	}

	return users, nil
}

// SaveNotification persists a drift notification and fills in its ID.
func (r *budgetRepository) SaveNotification(ctx context.Context, notification *domain.Notification) error {
	const query = `
		INSERT INTO notifications (user_id, message, diff_amount, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		notification.UserID,
		notification.Message,
		notification.DiffAmount,
		notification.IsRead,
		notification.CreatedAt,
	).Scan(&notification.ID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to save notification", slog.Int64("user_id", notification.UserID), slog.Any("error", err))
		}
		return apperr.NewPersistenceError(fmt.Errorf("insert notification: %w", err))
	}

	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (r *budgetRepository) ListNotifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	const query = `
		SELECT id, user_id, message, diff_amount, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperr.NewPersistenceError(fmt.Errorf("select notifications: %w", err))
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.DiffAmount, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, apperr.NewPersistenceError(fmt.Errorf("scan notification row: %w", err))
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewPersistenceError(fmt.Errorf("iterate notification rows: %w", err))
	}

	return notifications, nil
}

// MarkNotificationRead flags one notification as read, scoped to its owner.
func (r *budgetRepository) MarkNotificationRead(ctx context.Context, userID, notificationID int64) error {
	const query = `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return apperr.NewPersistenceError(fmt.Errorf("mark notification read: %w", err))
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}
