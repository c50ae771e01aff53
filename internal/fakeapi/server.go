// Package fakeapi is an in-memory implementation of the marketplace REST
// backend. Package tests and the dev-server command run the client against
// it.
package fakeapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"skillswap/internal/auth"
	"skillswap/internal/logging"
	"skillswap/internal/models"
)

// APIPrefix is where the REST routes are mounted. Media is served from the
// root.
const APIPrefix = "/api/v1"

const (
	defaultAccessTTL     = 5 * time.Minute
	defaultRefreshTTL    = 24 * time.Hour
	defaultAuthRateLimit = 120
	defaultPageSize      = 10
	maxBodyBytes         = 8 << 20
	maxUploadBytes       = 5 << 20
)

type Options struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// RotateRefresh returns a new refresh token on every refresh and
	// invalidates the old one.
	RotateRefresh bool
	// AuthRateLimit caps /auth requests per client IP per minute.
	AuthRateLimit int
	PageSize      int
	Logger        *slog.Logger
	// Mailer receives password reset links. Nil only records the request.
	Mailer Mailer
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

type account struct {
	profile      models.UserProfile
	passwordHash string
}

type refreshGrant struct {
	userID    int64
	expiresAt time.Time
}

type Server struct {
	router *chi.Mux
	issuer *auth.Issuer
	logger *slog.Logger
	opts   Options

	refreshCalls atomic.Int64
	failRefresh  atomic.Bool
	refreshDelay atomic.Int64

	mu            sync.Mutex
	now           func() time.Time
	lastStamp     time.Time
	nextID        int64
	accounts      map[int64]*account
	byEmail       map[string]int64
	access        map[string]int64
	refresh       map[string]refreshGrant
	resets        []string
	skills        []models.Skill
	userSkills    map[int64]*models.UserSkill
	swaps         map[int64]*models.SwapRequest
	notifications map[int64]*models.Notification
	ratings       []models.Rating
	media         map[string][]byte
}

func New(opts Options) *Server {
	if opts.Secret == "" {
		opts.Secret = "fakeapi-signing-secret"
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = defaultAccessTTL
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = defaultRefreshTTL
	}
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = defaultAuthRateLimit
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	s := &Server{
		issuer:        auth.NewIssuer(opts.Secret, opts.AccessTTL, opts.RefreshTTL),
		logger:        opts.Logger.With("component", "fakeapi"),
		opts:          opts,
		now:           time.Now,
		accounts:      make(map[int64]*account),
		byEmail:       make(map[string]int64),
		access:        make(map[string]int64),
		refresh:       make(map[string]refreshGrant),
		userSkills:    make(map[int64]*models.UserSkill),
		swaps:         make(map[int64]*models.SwapRequest),
		notifications: make(map[int64]*models.Notification),
		media:         make(map[string][]byte),
	}
	s.seedSkills()
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(securityHeadersMiddleware)

	r.Get("/media/*", s.serveMedia)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(maxBodySizeMiddleware(maxBodyBytes))
		r.Get("/skills", s.listSkills)

		r.Route("/auth", func(r chi.Router) {
			r.Use(httprate.Limit(
				s.opts.AuthRateLimit,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(rateLimited),
			))
			r.Post("/login", s.login)
			r.Post("/register", s.register)
			r.Post("/forgot-password", s.forgotPassword)
			r.Post("/token/refresh", s.refreshToken)
			r.With(s.requireAuth).Post("/logout", s.logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/users", s.searchUsers)
			r.Get("/users/profile", s.getProfile)
			r.Put("/users/profile", s.updateProfile)
			r.Post("/users/skills", s.addSkill)
			r.Delete("/users/skills/{id}", s.removeSkill)
			r.Get("/users/{id}", s.getUser)
			r.Get("/users/{id}/skills", s.getUserSkills)
			r.Get("/users/{id}/ratings", s.getUserRatings)

			r.Get("/swap-requests", s.listSwaps)
			r.Post("/swap-requests", s.createSwap)
			r.Patch("/swap-requests/{id}/{action}", s.transitionSwap)

			r.Get("/notifications", s.listNotifications)
			r.Patch("/notifications/read-all", s.markAllRead)
			r.Patch("/notifications/{id}/read", s.markRead)

			r.Post("/ratings", s.createRating)
		})
	})

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, ErrCodeRateLimitExceeded, "Too many requests, please try again later")
}

func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")

	s.mu.Lock()
	data, ok := s.media[key]
	s.mu.Unlock()
	if !ok {
		notFound(w, "Not found.")
		return
	}

	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// stamp returns a strictly increasing timestamp so updated_at orders every
// write even when the clock is frozen.
func (s *Server) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Millisecond)
	}
	s.lastStamp = t
	return t
}

func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) accessLive(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.access[token]
	return ok
}

func (s *Server) seedSkills() {
	catalogue := []struct{ name, category string }{
		{"Python", "Programming"},
		{"Go", "Programming"},
		{"Web Design", "Design"},
		{"Photography", "Arts"},
		{"Guitar", "Music"},
		{"Spanish", "Languages"},
		{"Cooking", "Lifestyle"},
		{"Yoga", "Fitness"},
	}
	created := s.stamp()
	for _, c := range catalogue {
		s.skills = append(s.skills, models.Skill{
			ID:        s.newID(),
			Name:      c.name,
			Category:  c.category,
			CreatedAt: created,
		})
	}
}
