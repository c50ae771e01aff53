// Package session owns the credential pair and the current user. It is the
// only writer of the persisted tokens and the TokenSource behind every
// authenticated transport call.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"skillswap/internal/apperr"
	"skillswap/internal/constants"
	"skillswap/internal/models"
	"skillswap/internal/store"
	"skillswap/internal/transport"
)

// State is a snapshot handed to subscribers.
type State struct {
	Status models.SessionStatus
	User   *models.UserProfile
}

type Manager struct {
	api    *transport.Client
	store  store.Store
	logger *slog.Logger
	skew   time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	status  models.SessionStatus
	access  string
	refresh string
	user    *models.UserProfile
	// epoch changes whenever credentials are replaced or cleared, so a
	// refresh that started under an older session cannot write back.
	epoch uint64

	refreshGroup singleflight.Group

	subsMu sync.Mutex
	subs   map[int]func(State)
	nextID int
}

type Option func(*Manager)

// WithClock replaces the time source used for proactive renewal.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRefreshSkew renews access tokens this long before they expire. A
// negative skew disables proactive renewal.
func WithRefreshSkew(skew time.Duration) Option {
	return func(m *Manager) { m.skew = skew }
}

// New creates an anonymous session and registers it as api's token source.
func New(api *transport.Client, st store.Store, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		api:    api,
		store:  st,
		logger: logger.With("component", "session"),
		skew:   constants.DefaultRefreshSkew,
		now:    time.Now,
		status: models.StatusAnonymous,
		subs:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	api.SetTokenSource(m)
	return m
}

func (m *Manager) Status() models.SessionStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) IsAuthenticated() bool {
	return m.Status() == models.StatusAuthenticated
}

// signedIn is true while a session is established, including during a refresh.
func (m *Manager) signedIn() bool {
	s := m.Status()
	return s == models.StatusAuthenticated || s == models.StatusRefreshing
}

// CurrentUser returns a copy of the cached profile, or nil when anonymous.
func (m *Manager) CurrentUser() *models.UserProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user)
}

// UserID is the id of the signed-in user.
func (m *Manager) UserID() (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil || (m.status != models.StatusAuthenticated && m.status != models.StatusRefreshing) {
		return 0, false
	}
	return m.user.ID, true
}

// Subscribe registers fn for status and user changes. The returned function
// removes the subscription.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.subsMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subsMu.Unlock()

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

func (m *Manager) publish(s State) {
	m.subsMu.Lock()
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func (m *Manager) snapshotLocked() State {
	return State{Status: m.status, User: cloneUser(m.user)}
}

// isValidTransition checks if a session status transition is valid
func isValidTransition(from, to models.SessionStatus) bool {
	switch from {
	case models.StatusAnonymous:
		return to == models.StatusAuthenticating
	case models.StatusAuthenticating:
		return to == models.StatusAuthenticated || to == models.StatusAnonymous
	case models.StatusAuthenticated:
		return to == models.StatusRefreshing || to == models.StatusAnonymous || to == models.StatusAuthenticating
	case models.StatusRefreshing:
		return to == models.StatusAuthenticated || to == models.StatusAnonymous || to == models.StatusAuthenticating
	}
	return false
}

// transitionLocked moves to next if the edge exists. Callers hold m.mu.
func (m *Manager) transitionLocked(next models.SessionStatus) bool {
	if m.status == next {
		return true
	}
	if !isValidTransition(m.status, next) {
		return false
	}
	if next == models.StatusAuthenticated && m.access == "" {
		return false
	}
	m.status = next
	return true
}

// beginAuthentication enters the authenticating state. Only one login,
// registration or session load may run at a time.
func (m *Manager) beginAuthentication() (uint64, error) {
	m.mu.Lock()
	if m.status == models.StatusAuthenticating || !m.transitionLocked(models.StatusAuthenticating) {
		m.mu.Unlock()
		return 0, &apperr.Error{
			Kind:    apperr.KindConflict,
			Code:    constants.ErrCodeConflict,
			Message: "A sign-in is already in progress",
		}
	}
	m.epoch++
	epoch := m.epoch
	s := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(s)
	return epoch, nil
}

// establish installs a verified credential set and persists it. It fails if
// the session was cleared or replaced since epoch was taken.
func (m *Manager) establish(ctx context.Context, epoch uint64, access, refresh string, user *models.UserProfile) error {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return apperr.Authentication("Sign-in was interrupted, please try again", nil)
	}
	m.access, m.refresh, m.user = access, refresh, cloneUser(user)
	m.transitionLocked(models.StatusAuthenticated)
	s := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.persist(ctx, access, refresh, user); err != nil {
		m.clear(ctx, "persist failed")
		return err
	}

	m.publish(s)
	return nil
}

func (m *Manager) persist(ctx context.Context, access, refresh string, user *models.UserProfile) error {
	if err := m.store.Set(ctx, constants.KeyAccessToken, access); err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	if err := m.store.Set(ctx, constants.KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("saving refresh token: %w", err)
	}
	if user != nil {
		if err := m.persistUser(ctx, user); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) persistUser(ctx context.Context, user *models.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := m.store.Set(ctx, constants.KeyUser, string(data)); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// clear drops every credential, in memory and in the store, and becomes anonymous.
func (m *Manager) clear(ctx context.Context, reason string) {
	m.mu.Lock()
	changed := m.status != models.StatusAnonymous || m.access != "" || m.user != nil
	m.access, m.refresh, m.user = "", "", nil
	m.epoch++
	m.transitionLocked(models.StatusAnonymous)
	s := m.snapshotLocked()
	m.mu.Unlock()

	for _, key := range []string{constants.KeyAccessToken, constants.KeyRefreshToken, constants.KeyUser} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.Warn("error clearing stored credential", "key", key, "error", err)
		}
	}

	if changed {
		m.logger.Info("session cleared", "reason", reason)
		m.publish(s)
	}
}

// loadStored reads the persisted token pair. The cached profile is not read
// back: identity comes from the profile fetch that validates the tokens.
func (m *Manager) loadStored(ctx context.Context) (access, refresh string, err error) {
	access, err = m.store.Get(ctx, constants.KeyAccessToken)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.store.Get(ctx, constants.KeyRefreshToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", "", err
	}
	return access, refresh, nil
}

func cloneUser(u *models.UserProfile) *models.UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	if u.Availability != nil {
		c.Availability = append([]string(nil), u.Availability...)
	}
	return &c
}
