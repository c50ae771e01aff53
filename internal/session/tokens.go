package session

import (
	"context"
	"net/http"

	"skillswap/internal/apperr"
	"skillswap/internal/auth"
	"skillswap/internal/constants"
	"skillswap/internal/models"
	"skillswap/internal/transport"
)

const (
	refreshFlight         = "refresh"
	sessionExpiredMessage = "Your session has expired, please sign in again"
)

// Token returns the access token for an authenticated call. A token about to
// expire is renewed first.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	access, refresh := m.access, m.refresh
	m.mu.RUnlock()

	if access == "" {
		return "", nil
	}
	if refresh != "" && m.skew >= 0 && auth.Expired(access, m.skew, m.now()) {
		return m.Renew(ctx, access)
	}
	return access, nil
}

// Renew exchanges the refresh token for a new access token after rejected was
// refused. Concurrent callers share one refresh call; a caller whose rejected
// token was already replaced gets the current token without a new call.
func (m *Manager) Renew(ctx context.Context, rejected string) (string, error) {
	if current, ok := m.replaced(rejected); ok {
		return current, nil
	}

	ch := m.refreshGroup.DoChan(refreshFlight, func() (any, error) {
		return m.refreshAccess(context.WithoutCancel(ctx), rejected)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", apperr.Network(ctx.Err(), ctx.Err() == context.DeadlineExceeded)
	}
}

// replaced reports the current access token if it differs from rejected.
func (m *Manager) replaced(rejected string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.access != "" && m.access != rejected {
		return m.access, true
	}
	return "", false
}

func (m *Manager) refreshAccess(ctx context.Context, rejected string) (string, error) {
	m.mu.Lock()
	if m.access != "" && m.access != rejected {
		current := m.access
		m.mu.Unlock()
		return current, nil
	}
	refresh, epoch := m.refresh, m.epoch
	if refresh == "" {
		m.mu.Unlock()
		m.clear(ctx, "no refresh token")
		return "", apperr.Authentication(sessionExpiredMessage, nil)
	}
	m.transitionLocked(models.StatusRefreshing)
	s := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(s)

	var out models.RefreshedToken
	err := m.api.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/auth/token/refresh",
		Body:   map[string]string{"refresh": refresh},
	}, &out)
	if err != nil {
		m.logger.Warn("token refresh failed", "error", err)
		if m.sameEpoch(epoch) {
			m.clear(ctx, "refresh failed")
		}
		return "", apperr.Authentication(sessionExpiredMessage, err)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return "", authRequired()
	}
	m.access = out.Access
	if out.Refresh != "" {
		m.refresh = out.Refresh
	}
	if m.status == models.StatusRefreshing {
		m.transitionLocked(models.StatusAuthenticated)
	}
	refresh = m.refresh
	s = m.snapshotLocked()
	m.mu.Unlock()

	if err := m.store.Set(ctx, constants.KeyAccessToken, out.Access); err != nil {
		m.logger.Warn("error saving refreshed access token", "error", err)
	}
	if out.Refresh != "" {
		if err := m.store.Set(ctx, constants.KeyRefreshToken, refresh); err != nil {
			m.logger.Warn("error saving rotated refresh token", "error", err)
		}
	}

	m.logger.Debug("access token refreshed")
	m.publish(s)
	return out.Access, nil
}

func (m *Manager) sameEpoch(epoch uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch == epoch
}

// Revoke tears the session down after the backend refused a freshly renewed
// token.
func (m *Manager) Revoke(ctx context.Context, cause error) {
	m.logger.Warn("session revoked by backend", "error", cause)
	m.clear(ctx, "token rejected after refresh")
}
