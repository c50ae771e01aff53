package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"skillswap/internal/apperr"
	"skillswap/internal/logging"
	"skillswap/internal/models"
	"skillswap/internal/store"
	"skillswap/internal/transport"
	"skillswap/internal/validation"
)

// Login exchanges credentials for a token pair and loads the profile. Tokens
// are kept only once the profile fetch succeeded.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.UserProfile, error) {
	creds := Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Form(creds); err != nil {
		return nil, err
	}

	ctx, span := logging.StartSpan(ctx, m.logger, "login")
	user, err := m.authenticate(ctx, "/auth/login", creds)
	span.End(err)
	return user, err
}

// Register validates the form locally, creates the account and signs in.
// Local failures never reach the network.
func (m *Manager) Register(ctx context.Context, form Registration) (*models.UserProfile, error) {
	form.normalize()
	if err := validation.Form(form); err != nil {
		return nil, err
	}

	ctx, span := logging.StartSpan(ctx, m.logger, "register")
	user, err := m.authenticate(ctx, "/auth/register", registerRequest{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		Username:     form.username(),
		Password:     form.Password,
		Location:     form.Location,
		Availability: form.Availability,
	})
	span.End(err)
	return user, err
}

func (m *Manager) authenticate(ctx context.Context, path string, body any) (*models.UserProfile, error) {
	epoch, err := m.beginAuthentication()
	if err != nil {
		return nil, err
	}

	var pair models.TokenPair
	err = m.api.Do(ctx, transport.Request{Method: http.MethodPost, Path: path, Body: body}, &pair)
	if err != nil {
		m.clear(ctx, "sign-in failed")
		return nil, err
	}

	var user models.UserProfile
	err = m.api.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/users/profile", Bearer: pair.AccessToken}, &user)
	if err != nil {
		m.clear(ctx, "profile fetch failed")
		return nil, err
	}

	if err := m.establish(ctx, epoch, pair.AccessToken, pair.RefreshToken, &user); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("signed in", "user_id", user.ID)
	return cloneUser(&user), nil
}

// Logout tells the backend to drop the refresh token and always clears local
// state. Backend failures are logged only.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	access, refresh := m.access, m.refresh
	m.mu.RUnlock()

	if access != "" {
		err := m.api.Do(ctx, transport.Request{
			Method: http.MethodPost,
			Path:   "/auth/logout",
			Body:   map[string]string{"refresh": refresh},
			Bearer: access,
		}, nil)
		if err != nil {
			m.logger.Warn("error invalidating session on backend", "error", err)
		}
	}

	m.clear(ctx, "logout")
}

// ForgotPassword asks the backend to send a reset email. Session state is
// not touched.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	form := forgotPasswordForm{Email: strings.TrimSpace(email)}
	if err := validation.Form(form); err != nil {
		return err
	}
	return m.api.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/auth/forgot-password", Body: form}, nil)
}

// LoadSession restores persisted credentials and validates them with a
// profile fetch. It always ends authenticated or anonymous; any failure
// wipes the stored credentials.
func (m *Manager) LoadSession(ctx context.Context) error {
	access, refresh, err := m.loadStored(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn("error reading stored session", "error", err)
		}
		m.clear(ctx, "no stored session")
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if access == "" {
		m.clear(ctx, "no stored session")
		return nil
	}

	ctx, span := logging.StartSpan(ctx, m.logger, "load-session")
	err = m.restore(ctx, access, refresh)
	span.End(err)
	return err
}

func (m *Manager) restore(ctx context.Context, access, refresh string) error {
	epoch, err := m.beginAuthentication()
	if err != nil {
		return err
	}

	// The stored tokens go live so the fetch below can use the refresh protocol.
	// The user stays unset until the profile confirms who they belong to.
	m.mu.Lock()
	m.access, m.refresh, m.user = access, refresh, nil
	m.mu.Unlock()

	var user models.UserProfile
	if err := m.api.Get(ctx, "/users/profile", nil, &user); err != nil {
		m.clear(ctx, "stored session rejected")
		return err
	}

	m.mu.RLock()
	access, refresh = m.access, m.refresh
	m.mu.RUnlock()

	return m.establish(ctx, epoch, access, refresh, &user)
}

// authRequired is returned when an operation needs a signed-in user.
func authRequired() error {
	return apperr.Authentication("Please sign in to continue", nil)
}
