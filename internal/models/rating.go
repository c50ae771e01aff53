package models

import "time"

// Rating is feedback one user leaves for another after a swap.
type Rating struct {
	ID           int64     `json:"id" validate:"required,gt=0"`
	Sender       int64     `json:"sender" validate:"required,gt=0"`
	Receiver     int64     `json:"receiver" validate:"required,gt=0"`
	SenderName   string    `json:"sender_name,omitempty"`
	ReceiverName string    `json:"receiver_name,omitempty"`
	RatingCount  int       `json:"rating_count" validate:"min=1,max=5"`
	Feedback     string    `json:"feedback,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
