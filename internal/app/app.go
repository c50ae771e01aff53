// Package app wires the client components together from a Config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"skillswap/internal/avatar"
	"skillswap/internal/config"
	"skillswap/internal/constants"
	"skillswap/internal/directory"
	"skillswap/internal/models"
	"skillswap/internal/notify"
	"skillswap/internal/ratings"
	"skillswap/internal/session"
	"skillswap/internal/store"
	"skillswap/internal/swap"
	"skillswap/internal/transport"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	API           *transport.Client
	Session       *session.Manager
	Swaps         *swap.Coordinator
	Notifications *notify.Centre
	Directory     *directory.Directory
	Ratings       *ratings.Service
	Avatars       *avatar.Preparer

	store       store.Store
	unsubscribe func()

	mu       sync.Mutex
	lastUser int64
}

// New opens the credential store and builds every component on top of one
// shared transport. Close releases the store.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...transport.Option) (*App, error) {
	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	api := transport.New(cfg.API, logger, opts...)
	mgr := session.New(api, st, logger, session.WithRefreshSkew(cfg.Auth.RefreshSkew))

	a := &App{
		Config:        cfg,
		Logger:        logger,
		API:           api,
		Session:       mgr,
		Swaps:         swap.NewCoordinator(swap.NewHTTPAPI(api), mgr, logger),
		Notifications: notify.NewCentre(api, logger),
		Directory:     directory.New(api, cfg.Media.SkillsCacheTTL),
		Ratings:       ratings.NewService(api, mgr),
		Avatars:       avatar.NewPreparer(cfg.Media.AvatarMaxBytes, cfg.Media.AvatarMaxEdge, constants.DefaultAvatarQuality),
		store:         st,
	}
	a.unsubscribe = mgr.Subscribe(a.onSessionChange)

	logger.Debug("client initialized",
		"api", cfg.API.BaseURL,
		"storage", cfg.Storage.Path,
		"memory_storage", cfg.UsesMemoryStorage())
	return a, nil
}

// Restore loads a persisted session, if any.
func (a *App) Restore(ctx context.Context) error {
	return a.Session.LoadSession(ctx)
}

// onSessionChange drops per-user caches when the user signs out or a
// different user signs in.
func (a *App) onSessionChange(s session.State) {
	var id int64
	if s.User != nil && s.Status != models.StatusAnonymous {
		id = s.User.ID
	}

	a.mu.Lock()
	changed := id != a.lastUser
	a.lastUser = id
	a.mu.Unlock()

	if changed || s.Status == models.StatusAnonymous {
		a.Swaps.Reset()
		a.Notifications.Reset()
	}
}

func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("closing credential store: %w", err)
	}
	return nil
}
