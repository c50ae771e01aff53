package fakeapi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillswap/internal/auth"
	"skillswap/internal/models"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	FirstName    string   `json:"first_name" validate:"required,min=2,max=150"`
	LastName     string   `json:"last_name" validate:"required,min=2,max=150"`
	Email        string   `json:"email" validate:"required,email,max=254"`
	Username     string   `json:"username" validate:"required,max=150"`
	Password     string   `json:"password" validate:"required,min=6"`
	Location     string   `json:"location" validate:"max=100"`
	Availability []string `json:"availability" validate:"dive,availability"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// POST /auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.accountByEmailLocked(req.Email)
	if acct == nil || !checkPassword(acct.passwordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid email or password")
		return
	}
	if !acct.profile.IsActive || acct.profile.IsBanned {
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "This account has been disabled")
		return
	}

	pair, err := s.issuePairLocked(acct.profile.ID)
	if err != nil {
		s.logger.Error("error issuing tokens", "error", err)
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// POST /auth/register
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountByEmailLocked(req.Email) != nil {
		fieldError(w, "email", "A user with that email already exists.")
		return
	}
	for _, acct := range s.accounts {
		if strings.EqualFold(acct.profile.Username, req.Username) {
			fieldError(w, "username", "A user with that username already exists.")
			return
		}
	}

	acct := s.createAccountLocked(NewUser{
		Email:        req.Email,
		Password:     req.Password,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Location:     req.Location,
		Availability: req.Availability,
	})

	pair, err := s.issuePairLocked(acct.profile.ID)
	if err != nil {
		s.logger.Error("error issuing tokens", "error", err)
		internalError(w)
		return
	}
	s.logger.Info("user registered", "user_id", acct.profile.ID)
	writeJSON(w, http.StatusCreated, pair)
}

// POST /auth/token/refresh
func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var req refreshRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	if d := time.Duration(s.refreshDelay.Load()); d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return
		}
	}
	if s.failRefresh.Load() {
		writeError(w, http.StatusUnauthorized, ErrCodeTokenExpired, "Token is invalid or expired")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hash := auth.HashRefreshToken(req.Refresh)
	grant, ok := s.refresh[hash]
	if !ok || !s.now().Before(grant.expiresAt) {
		delete(s.refresh, hash)
		writeError(w, http.StatusUnauthorized, ErrCodeTokenExpired, "Token is invalid or expired")
		return
	}

	access, _, err := s.issuer.AccessToken(grant.userID)
	if err != nil {
		s.logger.Error("error issuing access token", "error", err)
		internalError(w)
		return
	}
	s.access[access] = grant.userID

	out := models.RefreshedToken{Access: access}
	if s.opts.RotateRefresh {
		delete(s.refresh, hash)
		refresh, err := s.issueRefreshLocked(grant.userID)
		if err != nil {
			s.logger.Error("error rotating refresh token", "error", err)
			internalError(w)
			return
		}
		out.Refresh = refresh
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /auth/logout
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	userID := userIDFrom(r)
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Refresh != "" {
		hash := auth.HashRefreshToken(req.Refresh)
		if grant, ok := s.refresh[hash]; ok && grant.userID == userID {
			delete(s.refresh, hash)
		}
	}
	delete(s.access, token)
	w.WriteHeader(http.StatusNoContent)
}

// POST /auth/forgot-password
func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.mu.Lock()
	known := s.accountByEmailLocked(email) != nil
	if known {
		s.resets = append(s.resets, email)
	}
	s.mu.Unlock()

	if known && s.opts.Mailer != nil {
		link := "http://" + r.Host + "/reset-password/" + uuid.NewString()
		if err := s.opts.Mailer.SendPasswordReset(r.Context(), email, link); err != nil {
			s.logger.Error("failed to send password reset", "email", email, "error", err)
		}
	}

	// Same answer whether or not the account exists.
	writeJSON(w, http.StatusOK, messageResponse{
		Message: "If an account exists with this email, a reset link has been sent",
	})
}

func (s *Server) issuePairLocked(userID int64) (models.TokenPair, error) {
	access, _, err := s.issuer.AccessToken(userID)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.issueRefreshLocked(userID)
	if err != nil {
		return models.TokenPair{}, err
	}
	s.access[access] = userID
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Server) issueRefreshLocked(userID int64) (string, error) {
	token, hash, expiresAt, err := s.issuer.RefreshToken()
	if err != nil {
		return "", fmt.Errorf("issuing refresh token: %w", err)
	}
	s.refresh[hash] = refreshGrant{userID: userID, expiresAt: expiresAt}
	return token, nil
}

func (s *Server) accountByEmailLocked(email string) *account {
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil
	}
	return s.accounts[id]
}

func hashPassword(password string) string {
	h := sha256.Sum256([]byte(password))
	return hex.EncodeToString(h[:])
}

func checkPassword(hash, password string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(hashPassword(password))) == 1
}
