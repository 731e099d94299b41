package domain

import "time"

// Notification is a drift alert created by the scheduler. The core never
// deletes notifications; marking as read is the only mutation.
type Notification struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Message    string    `json:"message"`
	DiffAmount float64   `json:"diffAmount"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}
