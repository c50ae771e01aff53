// Package ratings lets users rate each other after a swap.
package ratings

import (
	"context"
	"fmt"
	"strings"

	"skillswap/internal/apperr"
	"skillswap/internal/models"
	"skillswap/internal/transport"
	"skillswap/internal/validation"
)

// Identity reports the signed-in user.
type Identity interface {
	UserID() (int64, bool)
}

type Form struct {
	Receiver    int64  `json:"receiver" validate:"gt=0"`
	RatingCount int    `json:"rating_count" validate:"min=1,max=5"`
	Feedback    string `json:"feedback,omitempty" validate:"max=2000"`
}

type Service struct {
	api      *transport.Client
	identity Identity
}

func NewService(api *transport.Client, identity Identity) *Service {
	return &Service{api: api, identity: identity}
}

// Rate leaves a rating for another user. Users cannot rate themselves.
func (s *Service) Rate(ctx context.Context, form Form) (*models.Rating, error) {
	form.Feedback = strings.TrimSpace(form.Feedback)
	if err := validation.Form(form); err != nil {
		return nil, err
	}
	if err := validation.PlainText("feedback", form.Feedback); err != nil {
		return nil, err
	}

	me, ok := s.identity.UserID()
	if !ok {
		return nil, apperr.Authentication("Please sign in to continue", nil)
	}
	if form.Receiver == me {
		return nil, apperr.Validation("receiver", "you cannot rate yourself")
	}

	var out models.Rating
	if err := s.api.Post(ctx, "/ratings", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForUser lists the ratings userID has received.
func (s *Service) ForUser(ctx context.Context, userID int64) ([]models.Rating, error) {
	var out []models.Rating
	if err := s.api.Get(ctx, fmt.Sprintf("/users/%d/ratings", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Average is the mean score of rs, or 0 when rs is empty.
func Average(rs []models.Rating) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.RatingCount
	}
	return float64(sum) / float64(len(rs))
}
