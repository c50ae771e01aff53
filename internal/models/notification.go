package models

import "time"

// Notification is a message addressed to a user. Only IsRead may change.
type Notification struct {
	ID        int64     `json:"id" validate:"required,gt=0"`
	UserID    int64     `json:"user_id" validate:"required,gt=0"`
	Type      string    `json:"type" validate:"required"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

// Notification types emitted for swap transitions.
const (
	NotificationSwapRequested = "swap_request"
	NotificationSwapAccepted  = "swap_accepted"
	NotificationSwapRejected  = "swap_rejected"
	NotificationSwapCompleted = "swap_completed"
	NotificationSwapCancelled = "swap_cancelled"
)
