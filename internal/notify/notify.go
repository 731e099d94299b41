// Package notify delivers drift alerts to users over external channels. The
// in-app notification row is written by the drift handler regardless; this
// package only covers the optional push delivery.
package notify

import "context"

// Notifier pushes a drift alert to one user.
type Notifier interface {
	SendDriftAlert(ctx context.Context, chatID int64, message string) error
}

// Noop is the delivery used when no push channel is configured.
type Noop struct{}

func (Noop) SendDriftAlert(context.Context, int64, string) error { return nil }
