package fakeapi

import (
	"net/http"
	"sort"

	"skillswap/internal/models"
)

type markAllResponse struct {
	Updated int `json:"updated"`
}

func (s *Server) notifyLocked(userID int64, typ, title, message string) {
	n := &models.Notification{
		ID:        s.newID(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: s.stamp(),
	}
	s.notifications[n.ID] = n
}

// GET /notifications
func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	s.mu.Lock()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

// PATCH /notifications/{id}/read
func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userIDFrom(r) {
		notFound(w, "Notification not found")
		return
	}
	n.IsRead = true
	writeJSON(w, http.StatusOK, n)
}

// PATCH /notifications/read-all
func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	writeJSON(w, http.StatusOK, markAllResponse{Updated: updated})
}
