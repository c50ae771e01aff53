package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"skillswap/internal/models"
)

type createSwapRequest struct {
	ToUserID         int64  `json:"to_user_id" validate:"required,gt=0"`
	OfferedSkillID   int64  `json:"offered_skill_id" validate:"required,gt=0"`
	RequestedSkillID int64  `json:"requested_skill_id" validate:"required,gt=0"`
	Message          string `json:"message" validate:"required,max=1000"`
	PreferredTime    string `json:"preferred_time" validate:"max=100"`
	Duration         string `json:"duration" validate:"omitempty,oneof=1-hour 2-hours half-day full-day multiple-sessions"`
}

// swapRule is one edge of the backend state machine and who may take it.
type swapRule struct {
	from      models.SwapStatus
	to        models.SwapStatus
	recipient bool
	sender    bool
}

var swapRules = map[string][]swapRule{
	"accept":   {{from: models.SwapPending, to: models.SwapAccepted, recipient: true}},
	"reject":   {{from: models.SwapPending, to: models.SwapRejected, recipient: true}},
	"complete": {{from: models.SwapAccepted, to: models.SwapCompleted, recipient: true, sender: true}},
	"cancel": {
		{from: models.SwapPending, to: models.SwapCancelled, sender: true},
		{from: models.SwapAccepted, to: models.SwapCancelled, recipient: true, sender: true},
	},
}

var swapNotifications = map[models.SwapStatus]string{
	models.SwapAccepted:  models.NotificationSwapAccepted,
	models.SwapRejected:  models.NotificationSwapRejected,
	models.SwapCompleted: models.NotificationSwapCompleted,
	models.SwapCancelled: models.NotificationSwapCancelled,
}

// GET /swap-requests
func (s *Server) listSwaps(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	s.mu.Lock()
	out := []models.SwapRequest{}
	for _, sr := range s.swaps {
		if sr.FromUserID == userID || sr.ToUserID == userID {
			out = append(out, *sr)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

// POST /swap-requests
func (s *Server) createSwap(w http.ResponseWriter, r *http.Request) {
	var req createSwapRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, err)
		return
	}
	userID := userIDFrom(r)
	if req.ToUserID == userID {
		fieldError(w, "to_user_id", "You cannot send a swap request to yourself.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	to, ok := s.accounts[req.ToUserID]
	if !ok || !to.profile.IsActive || to.profile.IsBanned {
		fieldError(w, "to_user_id", "This user is not available for swaps.")
		return
	}
	if s.skillLocked(req.OfferedSkillID) == nil {
		fieldError(w, "offered_skill_id", "Unknown skill.")
		return
	}
	if s.skillLocked(req.RequestedSkillID) == nil {
		fieldError(w, "requested_skill_id", "Unknown skill.")
		return
	}

	now := s.stamp()
	sr := &models.SwapRequest{
		ID:               s.newID(),
		FromUserID:       userID,
		ToUserID:         req.ToUserID,
		OfferedSkillID:   req.OfferedSkillID,
		RequestedSkillID: req.RequestedSkillID,
		Message:          strings.TrimSpace(req.Message),
		Status:           models.SwapPending,
		PreferredTime:    req.PreferredTime,
		Duration:         req.Duration,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.swaps[sr.ID] = sr

	s.notifyLocked(sr.ToUserID, models.NotificationSwapRequested, "New swap request",
		fmt.Sprintf("%s sent you a swap request.", s.displayNameLocked(userID)))

	writeJSON(w, http.StatusCreated, sr)
}

// PATCH /swap-requests/{id}/{action}
func (s *Server) transitionSwap(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rules, ok := swapRules[chi.URLParam(r, "action")]
	if !ok {
		notFound(w, "Not found.")
		return
	}
	userID := userIDFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.swaps[id]
	if !ok || (sr.FromUserID != userID && sr.ToUserID != userID) {
		notFound(w, "Swap request not found")
		return
	}

	for _, rule := range rules {
		if rule.from != sr.Status {
			continue
		}
		if !(rule.recipient && sr.ToUserID == userID) && !(rule.sender && sr.FromUserID == userID) {
			forbidden(w, "You are not allowed to perform this action on this swap request.")
			return
		}
		s.applySwapLocked(sr, rule.to, userID)
		writeJSON(w, http.StatusOK, sr)
		return
	}

	current := *sr
	writeJSON(w, http.StatusConflict, SwapConflictResponse{
		Detail:      fmt.Sprintf("Swap request is already %s.", sr.Status),
		SwapRequest: &current,
	})
}

func (s *Server) applySwapLocked(sr *models.SwapRequest, to models.SwapStatus, actor int64) {
	sr.Status = to
	sr.UpdatedAt = s.stamp()

	if to == models.SwapCompleted {
		for _, id := range []int64{sr.FromUserID, sr.ToUserID} {
			if acct, ok := s.accounts[id]; ok {
				acct.profile.CompletedSwaps++
			}
		}
	}

	other := sr.ToUserID
	if actor == sr.ToUserID {
		other = sr.FromUserID
	}
	s.notifyLocked(other, swapNotifications[to], "Swap request "+string(to),
		fmt.Sprintf("%s marked your swap request as %s.", s.displayNameLocked(actor), to))
}

func (s *Server) displayNameLocked(userID int64) string {
	if acct, ok := s.accounts[userID]; ok {
		return acct.profile.DisplayName()
	}
	return "Someone"
}
