package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"skillswap/internal/apperr"
	"skillswap/internal/auth"
	"skillswap/internal/config"
	"skillswap/internal/logging"
	"skillswap/internal/models"
	"skillswap/internal/store"
	"skillswap/internal/transport"
)

// backend is a scripted stand-in for the marketplace API.
type backend struct {
	mu           sync.Mutex
	validAccess  string
	refreshToken string
	nextAccess   string
	nextRefresh  string
	failRefresh  bool
	failLogout   bool
	profileFail  bool
	refreshDelay time.Duration
	// onProfile runs inside GET /users/profile before the response is written.
	onProfile func()

	calls        atomic.Int32
	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32
	lastRegister map[string]any
	// staleGate, when set, holds requests carrying a rejected token until
	// every expected request has arrived.
	staleGate *sync.WaitGroup
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *backend) authorized(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	valid := b.validAccess
	gate := b.staleGate
	b.mu.Unlock()

	if r.Header.Get("Authorization") == "Bearer "+valid {
		return true
	}
	if gate != nil {
		gate.Done()
		gate.Wait()
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
	return false
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.com" || body["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": b.validAccess, "refresh_token": b.refreshToken})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.lastRegister = body
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]string{"access_token": b.validAccess, "refresh_token": b.refreshToken})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		b.logoutCalls.Add(1)
		if b.failLogout {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		b.refreshCalls.Add(1)
		time.Sleep(b.refreshDelay)

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failRefresh || body["refresh"] != b.refreshToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		b.validAccess = b.nextAccess
		resp := map[string]string{"access": b.nextAccess}
		if b.nextRefresh != "" {
			b.refreshToken = b.nextRefresh
			resp["refresh"] = b.nextRefresh
		}
		writeJSON(w, http.StatusOK, resp)
	})
	mux.HandleFunc("GET /users/profile", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if !b.authorized(w, r) {
			return
		}
		if b.onProfile != nil {
			b.onProfile()
		}
		if b.profileFail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "first_name": "A", "email": "a@b.com"})
	})
	mux.HandleFunc("PUT /users/profile", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if !b.authorized(w, r) {
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "first_name": body["first_name"], "last_name": body["last_name"], "availability": body["availability"]})
	})
	mux.HandleFunc("GET /swap-requests", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if !b.authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	})
	return mux
}

type harness struct {
	backend *backend
	api     *transport.Client
	mem     *store.Memory
	manager *Manager
}

func newHarness(t *testing.T, b *backend, opts ...Option) *harness {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	api := transport.New(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, logging.Discard())
	mem := store.NewMemory()
	m := New(api, store.NewNamespaced(mem, "app"), logging.Discard(), opts...)
	return &harness{backend: b, api: api, mem: mem, manager: m}
}

func newBackend() *backend {
	return &backend{validAccess: "T1", refreshToken: "R1", nextAccess: "T2"}
}

func (h *harness) stored(t *testing.T, key string) string {
	t.Helper()
	v, err := h.mem.Get(context.Background(), "app_"+key)
	if errors.Is(err, store.ErrNotFound) {
		return ""
	}
	if err != nil {
		t.Fatalf("Get(%s) error = %v", key, err)
	}
	return v
}

func TestLoginStoresTokensAndProfile(t *testing.T) {
	h := newHarness(t, newBackend())

	var seen []models.SessionStatus
	h.manager.Subscribe(func(s State) { seen = append(seen, s.Status) })

	user, err := h.manager.Login(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if h.manager.Status() != models.StatusAuthenticated {
		t.Fatalf("Status() = %s, want authenticated", h.manager.Status())
	}
	if user.ID != 1 || h.manager.CurrentUser().ID != 1 {
		t.Fatalf("user = %+v, want id 1", user)
	}
	if h.stored(t, "access_token") != "T1" || h.stored(t, "refresh_token") != "R1" {
		t.Fatalf("stored tokens = %q/%q, want T1/R1", h.stored(t, "access_token"), h.stored(t, "refresh_token"))
	}
	if !strings.Contains(h.stored(t, "user"), `"id":1`) {
		t.Fatalf("stored user = %q", h.stored(t, "user"))
	}

	want := []models.SessionStatus{models.StatusAuthenticating, models.StatusAuthenticated}
	if len(seen) != len(want) || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("published statuses = %v, want %v", seen, want)
	}
}

func TestLoginWithInvalidCredentialsStaysAnonymous(t *testing.T) {
	h := newHarness(t, newBackend())

	_, err := h.manager.Login(context.Background(), "a@b.com", "wrong-password")
	if !errors.Is(err, apperr.ErrAuthentication) {
		t.Fatalf("Login() error = %v, want authentication error", err)
	}
	if apperr.Message(err) != "No active account found with the given credentials" {
		t.Fatalf("Message() = %q", apperr.Message(err))
	}
	if h.manager.Status() != models.StatusAnonymous {
		t.Fatalf("Status() = %s, want anonymous", h.manager.Status())
	}
	if h.mem.Len() != 0 {
		t.Fatalf("store has %d keys, want none", h.mem.Len())
	}
}

func TestLoginDoesNotKeepTokensWhenProfileFails(t *testing.T) {
	b := newBackend()
	b.profileFail = true
	h := newHarness(t, b)

	_, err := h.manager.Login(context.Background(), "a@b.com", "secret1")
	if apperr.KindOf(err) != apperr.KindServer {
		t.Fatalf("Login() error = %v, want server error", err)
	}
	if h.manager.Status() != models.StatusAnonymous || h.mem.Len() != 0 {
		t.Fatalf("status = %s keys = %d, want anonymous and empty store", h.manager.Status(), h.mem.Len())
	}
	if tok, _ := h.manager.Token(context.Background()); tok != "" {
		t.Fatalf("Token() = %q, want empty", tok)
	}
}

func TestLoginValidatesBeforeCallingBackend(t *testing.T) {
	h := newHarness(t, newBackend())

	_, err := h.manager.Login(context.Background(), "not-an-email", "secret1")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation || appErr.Field != "email" {
		t.Fatalf("Login() error = %v, want validation error on email", err)
	}
	if h.backend.calls.Load() != 0 {
		t.Fatalf("backend calls = %d, want 0", h.backend.calls.Load())
	}
}

func TestRegisterValidatesLocally(t *testing.T) {
	valid := Registration{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Password: "secret1", ConfirmPassword: "secret1", AcceptTerms: true,
	}

	tests := []struct {
		name   string
		mutate func(r *Registration)
		field  string
	}{
		{"short first name", func(r *Registration) { r.FirstName = "A" }, "first_name"},
		{"short last name", func(r *Registration) { r.LastName = " L " }, "last_name"},
		{"bad email", func(r *Registration) { r.Email = "ada.example.com" }, "email"},
		{"short password", func(r *Registration) { r.Password, r.ConfirmPassword = "12345", "12345" }, "password"},
		{"confirmation mismatch", func(r *Registration) { r.ConfirmPassword = "secret2" }, "confirm_password"},
		{"terms not accepted", func(r *Registration) { r.AcceptTerms = false }, "terms"},
		{"short typed username", func(r *Registration) { r.Username = "ad" }, "username"},
		{"first failing field wins", func(r *Registration) { r.FirstName = "A"; r.AcceptTerms = false }, "first_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newBackend())
			form := valid
			tt.mutate(&form)

			_, err := h.manager.Register(context.Background(), form)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Fatalf("Register() error = %v, want validation error", err)
			}
			if appErr.Field != tt.field {
				t.Fatalf("Register() field = %q, want %q", appErr.Field, tt.field)
			}
			if h.backend.calls.Load() != 0 {
				t.Fatalf("backend calls = %d, want 0", h.backend.calls.Load())
			}
			if h.manager.Status() != models.StatusAnonymous {
				t.Fatalf("Status() = %s, want anonymous", h.manager.Status())
			}
		})
	}
}

func TestRegisterSignsIn(t *testing.T) {
	h := newHarness(t, newBackend())

	_, err := h.manager.Register(context.Background(), Registration{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Password: "secret1", ConfirmPassword: "secret1", AcceptTerms: true,
		Availability: []string{"weekends"},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !h.manager.IsAuthenticated() {
		t.Fatalf("Status() = %s, want authenticated", h.manager.Status())
	}

	h.backend.mu.Lock()
	body := h.backend.lastRegister
	h.backend.mu.Unlock()
	if body["username"] != "ada" {
		t.Fatalf("register username = %v, want ada", body["username"])
	}
	if _, ok := body["confirm_password"]; ok {
		t.Fatal("register body should not carry confirm_password")
	}
}

func TestRegisterShortEmailLocalPart(t *testing.T) {
	h := newHarness(t, newBackend())

	_, err := h.manager.Register(context.Background(), Registration{
		FirstName: "Jo", LastName: "Li", Email: "jo@example.com",
		Password: "secret1", ConfirmPassword: "secret1", AcceptTerms: true,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if h.backend.calls.Load() == 0 {
		t.Fatal("backend calls = 0, want the register request sent")
	}

	h.backend.mu.Lock()
	body := h.backend.lastRegister
	h.backend.mu.Unlock()
	if body["username"] != "jo" {
		t.Fatalf("register username = %v, want jo", body["username"])
	}
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	b := newBackend()
	b.failLogout = true
	h := newHarness(t, b)

	if _, err := h.manager.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	h.manager.Logout(context.Background())

	if h.backend.logoutCalls.Load() != 1 {
		t.Fatalf("logout calls = %d, want 1", h.backend.logoutCalls.Load())
	}
	if h.manager.Status() != models.StatusAnonymous || h.manager.CurrentUser() != nil {
		t.Fatalf("state = %+v, want anonymous without user", h.manager.State())
	}
	if h.mem.Len() != 0 {
		t.Fatalf("store has %d keys, want none", h.mem.Len())
	}
}

func TestForgotPassword(t *testing.T) {
	h := newHarness(t, newBackend())

	if err := h.manager.ForgotPassword(context.Background(), "bad"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("ForgotPassword(bad) error = %v, want validation", err)
	}
	if err := h.manager.ForgotPassword(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	if h.manager.Status() != models.StatusAnonymous {
		t.Fatalf("Status() = %s, want anonymous", h.manager.Status())
	}
}

func TestLoadSession(t *testing.T) {
	ctx := context.Background()

	t.Run("valid stored token", func(t *testing.T) {
		h := newHarness(t, newBackend())
		h.mem.Set(ctx, "app_access_token", "T1")
		h.mem.Set(ctx, "app_refresh_token", "R1")

		if err := h.manager.LoadSession(ctx); err != nil {
			t.Fatalf("LoadSession() error = %v", err)
		}
		if !h.manager.IsAuthenticated() || h.manager.CurrentUser().ID != 1 {
			t.Fatalf("state = %+v, want authenticated as 1", h.manager.State())
		}
	})

	t.Run("expired token is renewed", func(t *testing.T) {
		h := newHarness(t, newBackend())
		h.mem.Set(ctx, "app_access_token", "OLD")
		h.mem.Set(ctx, "app_refresh_token", "R1")
		h.backend.validAccess = "OLD-REVOKED"

		if err := h.manager.LoadSession(ctx); err != nil {
			t.Fatalf("LoadSession() error = %v", err)
		}
		if !h.manager.IsAuthenticated() || h.stored(t, "access_token") != "T2" {
			t.Fatalf("status = %s stored = %q, want authenticated with T2", h.manager.Status(), h.stored(t, "access_token"))
		}
	})

	t.Run("revoked session is wiped", func(t *testing.T) {
		b := newBackend()
		b.failRefresh = true
		h := newHarness(t, b)
		h.mem.Set(ctx, "app_access_token", "OLD")
		h.mem.Set(ctx, "app_refresh_token", "R1")
		h.mem.Set(ctx, "app_user", `{"id":1}`)

		err := h.manager.LoadSession(ctx)
		if !errors.Is(err, apperr.ErrAuthentication) {
			t.Fatalf("LoadSession() error = %v, want authentication error", err)
		}
		if h.manager.Status() != models.StatusAnonymous || h.mem.Len() != 0 {
			t.Fatalf("status = %s keys = %d, want anonymous and empty store", h.manager.Status(), h.mem.Len())
		}
	})

	t.Run("identity hidden until profile confirms it", func(t *testing.T) {
		h := newHarness(t, newBackend())
		h.mem.Set(ctx, "app_access_token", "T1")
		h.mem.Set(ctx, "app_refresh_token", "R1")
		h.mem.Set(ctx, "app_user", `{"id":7,"first_name":"Someone else"}`)

		during := make(chan bool, 1)
		h.backend.onProfile = func() {
			_, ok := h.manager.UserID()
			during <- ok
		}

		if err := h.manager.LoadSession(ctx); err != nil {
			t.Fatalf("LoadSession() error = %v", err)
		}
		if <-during {
			t.Fatal("UserID() during restore reported an identity, want none yet")
		}
		if id, ok := h.manager.UserID(); !ok || id != 1 {
			t.Fatalf("UserID() = %d, %v; want 1, true", id, ok)
		}
	})

	t.Run("nothing stored", func(t *testing.T) {
		h := newHarness(t, newBackend())
		h.mem.Set(ctx, "app_user", `{"id":1}`)

		if err := h.manager.LoadSession(ctx); err != nil {
			t.Fatalf("LoadSession() error = %v", err)
		}
		if h.manager.Status() != models.StatusAnonymous || h.backend.calls.Load() != 0 || h.mem.Len() != 0 {
			t.Fatalf("status = %s calls = %d keys = %d", h.manager.Status(), h.backend.calls.Load(), h.mem.Len())
		}
	})
}

func TestConcurrentUnauthorizedRequestsShareOneRefresh(t *testing.T) {
	b := newBackend()
	b.refreshDelay = 20 * time.Millisecond
	h := newHarness(t, b)
	ctx := context.Background()

	if _, err := h.manager.Login(ctx, "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	var gate sync.WaitGroup
	gate.Add(2)
	b.mu.Lock()
	b.validAccess = "T1-EXPIRED"
	b.staleGate = &gate
	b.mu.Unlock()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out []models.SwapRequest
			errs[i] = h.api.Get(ctx, "/swap-requests", nil, &out)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("request %d error = %v", i, err)
		}
	}
	if got := b.refreshCalls.Load(); got != 1 {
		t.Fatalf("refresh calls = %d, want 1", got)
	}
	if tok, _ := h.manager.Token(ctx); tok != "T2" {
		t.Fatalf("Token() = %q, want T2", tok)
	}
	if h.stored(t, "access_token") != "T2" {
		t.Fatalf("stored access token = %q, want T2", h.stored(t, "access_token"))
	}
}

func TestConcurrentUnauthorizedRequestsFailTogetherWhenRefreshFails(t *testing.T) {
	b := newBackend()
	h := newHarness(t, b)
	ctx := context.Background()

	if _, err := h.manager.Login(ctx, "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	var gate sync.WaitGroup
	gate.Add(2)
	b.mu.Lock()
	b.validAccess = "T1-EXPIRED"
	b.failRefresh = true
	b.staleGate = &gate
	b.mu.Unlock()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.api.Get(ctx, "/swap-requests", nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, apperr.ErrAuthentication) || apperr.Message(err) != sessionExpiredMessage {
			t.Fatalf("request %d error = %v, want session expired", i, err)
		}
	}
	if got := b.refreshCalls.Load(); got != 1 {
		t.Fatalf("refresh calls = %d, want 1", got)
	}
	if h.manager.Status() != models.StatusAnonymous || h.mem.Len() != 0 {
		t.Fatalf("status = %s keys = %d, want anonymous and empty store", h.manager.Status(), h.mem.Len())
	}
}

func TestRefreshRotatesRefreshToken(t *testing.T) {
	b := newBackend()
	b.nextRefresh = "R2"
	h := newHarness(t, b)
	ctx := context.Background()

	if _, err := h.manager.Login(ctx, "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	b.mu.Lock()
	b.validAccess = "T1-EXPIRED"
	b.mu.Unlock()

	if err := h.api.Get(ctx, "/swap-requests", nil, nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if h.stored(t, "refresh_token") != "R2" {
		t.Fatalf("stored refresh token = %q, want R2", h.stored(t, "refresh_token"))
	}
}

func TestTokenRenewsAccessTokenAboutToExpire(t *testing.T) {
	issuer := auth.NewIssuer("secret", 10*time.Second, time.Hour)
	soon, _, err := issuer.AccessToken(1)
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}

	b := newBackend()
	b.validAccess = soon
	h := newHarness(t, b, WithRefreshSkew(30*time.Second))
	ctx := context.Background()

	if _, err := h.manager.Login(ctx, "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	tok, err := h.manager.Token(ctx)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok != "T2" || b.refreshCalls.Load() != 1 {
		t.Fatalf("Token() = %q after %d refreshes, want T2 after 1", tok, b.refreshCalls.Load())
	}
}

func TestAuthenticatedImpliesAccessToken(t *testing.T) {
	b := newBackend()
	h := newHarness(t, b)
	ctx := context.Background()

	var violations atomic.Int32
	h.manager.Subscribe(func(s State) {
		h.manager.mu.RLock()
		defer h.manager.mu.RUnlock()
		if h.manager.status == models.StatusAuthenticated && h.manager.access == "" {
			violations.Add(1)
		}
	})

	h.manager.Login(ctx, "a@b.com", "nope")
	h.manager.Login(ctx, "a@b.com", "secret1")
	b.mu.Lock()
	b.validAccess = "EXPIRED"
	b.mu.Unlock()
	h.api.Get(ctx, "/swap-requests", nil, nil)
	b.mu.Lock()
	b.failRefresh = true
	b.validAccess = "EXPIRED-AGAIN"
	b.mu.Unlock()
	h.api.Get(ctx, "/swap-requests", nil, nil)
	h.manager.Logout(ctx)

	if violations.Load() != 0 {
		t.Fatalf("authenticated without token observed %d times", violations.Load())
	}
	if h.manager.Status() != models.StatusAnonymous {
		t.Fatalf("Status() = %s, want anonymous", h.manager.Status())
	}
}

func TestUpdateProfileReplacesCachedUser(t *testing.T) {
	h := newHarness(t, newBackend())
	ctx := context.Background()

	if _, err := h.manager.UpdateProfile(ctx, ProfileUpdate{FirstName: "Ada", LastName: "King"}); !errors.Is(err, apperr.ErrAuthentication) {
		t.Fatalf("UpdateProfile() anonymous error = %v", err)
	}
	if _, err := h.manager.Login(ctx, "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := h.manager.UpdateProfile(ctx, ProfileUpdate{FirstName: "Ada", LastName: "King", Availability: []string{"never"}}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("UpdateProfile() invalid availability error = %v", err)
	}

	user, err := h.manager.UpdateProfile(ctx, ProfileUpdate{FirstName: " Ada ", LastName: "King", Availability: []string{"evenings"}})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.FirstName != "Ada" || !user.HasAvailability("evenings") {
		t.Fatalf("user = %+v", user)
	}
	if h.manager.CurrentUser().LastName != "King" || !strings.Contains(h.stored(t, "user"), "King") {
		t.Fatal("cached profile was not replaced")
	}
}
