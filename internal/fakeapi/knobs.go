package fakeapi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"skillswap/internal/models"
)

var ErrNotFound = errors.New("not found")

// CreateUser seeds an active account and returns its profile.
func (s *Server) CreateUser(u NewUser) (*models.UserProfile, error) {
	if strings.TrimSpace(u.Email) == "" || u.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountByEmailLocked(u.Email) != nil {
		return nil, fmt.Errorf("email %q already registered", u.Email)
	}
	acct := s.createAccountLocked(u)
	p := acct.profile
	return &p, nil
}

// AddUserSkill links skillID to userID as offered or wanted.
func (s *Server) AddUserSkill(userID, skillID int64, typ models.SkillType) (*models.UserSkill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[userID]; !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	us, err := s.addUserSkillLocked(userID, skillID, typ)
	if err != nil {
		return nil, err
	}
	out := s.expandUserSkillLocked(us)
	return &out, nil
}

// Skills returns the seeded catalogue.
func (s *Server) Skills() []models.Skill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Skill(nil), s.skills...)
}

// SwapRequest returns the backend copy of a swap request.
func (s *Server) SwapRequest(id int64) (*models.SwapRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.swaps[id]
	if !ok {
		return nil, fmt.Errorf("swap request %d: %w", id, ErrNotFound)
	}
	out := *sr
	return &out, nil
}

// SeedSwap stores a swap request from one user to another using the first two
// catalogue skills.
func (s *Server) SeedSwap(from, to int64, status models.SwapStatus) (*models.SwapRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []int64{from, to} {
		if _, ok := s.accounts[id]; !ok {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
	}

	now := s.stamp()
	sr := &models.SwapRequest{
		ID:               s.newID(),
		FromUserID:       from,
		ToUserID:         to,
		OfferedSkillID:   s.skills[0].ID,
		RequestedSkillID: s.skills[1].ID,
		Message:          "Seeded swap request",
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.swaps[sr.ID] = sr
	out := *sr
	return &out, nil
}

// ForceSwapStatus changes a swap request behind the client's back, as if the
// other participant acted from another device.
func (s *Server) ForceSwapStatus(id int64, status models.SwapStatus) (*models.SwapRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.swaps[id]
	if !ok {
		return nil, fmt.Errorf("swap request %d: %w", id, ErrNotFound)
	}
	sr.Status = status
	sr.UpdatedAt = s.stamp()
	out := *sr
	return &out, nil
}

// RefreshCalls counts hits on the token refresh endpoint.
func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

// FailRefresh makes every refresh answer 401 while set.
func (s *Server) FailRefresh(fail bool) {
	s.failRefresh.Store(fail)
}

// SetRefreshDelay holds each refresh response for d.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.refreshDelay.Store(int64(d))
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh
// tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.access)
}

// RevokeSessions invalidates every access and refresh token.
func (s *Server) RevokeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.access)
	clear(s.refresh)
}

// PasswordResets lists the addresses a reset was requested for.
func (s *Server) PasswordResets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.resets...)
}

// Media returns an uploaded file by its storage key.
func (s *Server) Media(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.media[strings.TrimPrefix(key, "/media/")]
	return data, ok
}

// SetClock replaces the time source for token issuance and record stamps.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.issuer.SetClock(now)
}
