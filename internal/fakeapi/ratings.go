package fakeapi

import (
	"net/http"
	"sort"
	"strings"

	"skillswap/internal/models"
)

type createRatingRequest struct {
	Receiver    int64  `json:"receiver" validate:"required,gt=0"`
	RatingCount int    `json:"rating_count" validate:"min=1,max=5"`
	Feedback    string `json:"feedback" validate:"max=2000"`
}

// POST /ratings
func (s *Server) createRating(w http.ResponseWriter, r *http.Request) {
	var req createRatingRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, err)
		return
	}
	sender := userIDFrom(r)
	if req.Receiver == sender {
		fieldError(w, "receiver", "You cannot rate yourself.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	receiver, ok := s.accounts[req.Receiver]
	if !ok {
		fieldError(w, "receiver", "User not found.")
		return
	}
	if !s.completedSwapLocked(sender, req.Receiver) {
		fieldError(w, "non_field_errors", "You can only rate users you have completed a swap with.")
		return
	}

	now := s.stamp()
	rating := models.Rating{
		ID:           s.newID(),
		Sender:       sender,
		Receiver:     req.Receiver,
		SenderName:   s.displayNameLocked(sender),
		ReceiverName: receiver.profile.DisplayName(),
		RatingCount:  req.RatingCount,
		Feedback:     strings.TrimSpace(req.Feedback),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.ratings = append(s.ratings, rating)

	sum, n := 0, 0
	for _, rt := range s.ratings {
		if rt.Receiver == req.Receiver {
			sum += rt.RatingCount
			n++
		}
	}
	receiver.profile.Rating = float64(sum) / float64(n)

	writeJSON(w, http.StatusCreated, rating)
}

// GET /users/{id}/ratings
func (s *Server) getUserRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		notFound(w, "User not found")
		return
	}

	out := []models.Rating{}
	for _, rt := range s.ratings {
		if rt.Receiver == id {
			out = append(out, rt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) completedSwapLocked(a, b int64) bool {
	for _, sr := range s.swaps {
		if sr.Status != models.SwapCompleted {
			continue
		}
		if (sr.FromUserID == a && sr.ToUserID == b) || (sr.FromUserID == b && sr.ToUserID == a) {
			return true
		}
	}
	return false
}
