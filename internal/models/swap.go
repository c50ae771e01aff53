package models

import "time"

type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapRejected  SwapStatus = "rejected"
	SwapCompleted SwapStatus = "completed"
	SwapCancelled SwapStatus = "cancelled"
)

// IsTerminal reports whether no transition may leave s.
func (s SwapStatus) IsTerminal() bool {
	return s == SwapRejected || s == SwapCompleted || s == SwapCancelled
}

// SwapRequest is a bilateral skill-exchange negotiation.
type SwapRequest struct {
	ID               int64      `json:"id" validate:"required,gt=0"`
	FromUserID       int64      `json:"from_user_id" validate:"required,gt=0"`
	ToUserID         int64      `json:"to_user_id" validate:"required,gt=0,nefield=FromUserID"`
	OfferedSkillID   int64      `json:"offered_skill_id" validate:"required,gt=0"`
	RequestedSkillID int64      `json:"requested_skill_id" validate:"required,gt=0"`
	Message          string     `json:"message,omitempty"`
	Status           SwapStatus `json:"status" validate:"required,oneof=pending accepted rejected completed cancelled"`
	PreferredTime    string     `json:"preferred_time,omitempty"`
	Duration         string     `json:"duration,omitempty"`
	CreatedAt        time.Time  `json:"created_at" validate:"required"`
	UpdatedAt        time.Time  `json:"updated_at" validate:"required"`
}

// NewSwapRequest is the body of POST /swap-requests.
type NewSwapRequest struct {
	ToUserID         int64  `json:"to_user_id"`
	OfferedSkillID   int64  `json:"offered_skill_id"`
	RequestedSkillID int64  `json:"requested_skill_id"`
	Message          string `json:"message"`
	PreferredTime    string `json:"preferred_time,omitempty"`
	Duration         string `json:"duration,omitempty"`
}

// Durations offered by the swap request form.
const SwapDurations = "1-hour 2-hours half-day full-day multiple-sessions"

// SwapConflict is the body of a 409 on a swap transition.
type SwapConflict struct {
	SwapRequest *SwapRequest `json:"swap_request,omitempty"`
}
