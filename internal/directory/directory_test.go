package directory

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"skillswap/internal/apperr"
	"skillswap/internal/avatar"
	"skillswap/internal/config"
	"skillswap/internal/fakeapi"
	"skillswap/internal/logging"
	"skillswap/internal/models"
	"skillswap/internal/session"
	"skillswap/internal/store"
	"skillswap/internal/transport"
)

type harness struct {
	fake      *fakeapi.Server
	srv       *httptest.Server
	calls     atomic.Int32
	skillHits atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{fake: fakeapi.New(fakeapi.Options{})}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.calls.Add(1)
		if r.URL.Path == fakeapi.APIPrefix+"/skills" {
			h.skillHits.Add(1)
		}
		h.fake.ServeHTTP(w, r)
	}))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) seed(t *testing.T, email string, private bool) *models.UserProfile {
	t.Helper()

	name, _, _ := strings.Cut(email, "@")
	u, err := h.fake.CreateUser(fakeapi.NewUser{
		Email:     email,
		Password:  "secret123",
		FirstName: strings.ToUpper(name[:1]) + name[1:],
		LastName:  "Tester",
		IsPrivate: private,
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func (h *harness) signIn(t *testing.T, email string) (*transport.Client, *session.Manager) {
	t.Helper()

	client := transport.New(config.APIConfig{
		BaseURL: h.srv.URL + fakeapi.APIPrefix,
		Timeout: 5 * time.Second,
	}, logging.Discard())
	mgr := session.New(client, store.NewMemory(), logging.Discard())
	if _, err := mgr.Login(context.Background(), email, "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return client, mgr
}

func TestSkillsCachedForTTL(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice@example.com", false)
	client, _ := h.signIn(t, "alice@example.com")

	d := New(client, time.Minute)
	now := time.Now()
	d.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		skills, err := d.Skills(ctx)
		if err != nil {
			t.Fatalf("Skills() error = %v", err)
		}
		if len(skills) == 0 {
			t.Fatal("Skills() returned an empty catalogue")
		}
	}
	if got := h.skillHits.Load(); got != 1 {
		t.Fatalf("skills fetched %d times, want 1", got)
	}

	now = now.Add(2 * time.Minute)
	if _, err := d.Skills(ctx); err != nil {
		t.Fatalf("Skills() error = %v", err)
	}
	if got := h.skillHits.Load(); got != 2 {
		t.Fatalf("skills fetched %d times after expiry, want 2", got)
	}

	d.InvalidateSkills()
	if _, err := d.Skills(ctx); err != nil {
		t.Fatalf("Skills() error = %v", err)
	}
	if got := h.skillHits.Load(); got != 3 {
		t.Fatalf("skills fetched %d times after invalidate, want 3", got)
	}
}

func TestSkillByName(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice@example.com", false)
	client, _ := h.signIn(t, "alice@example.com")
	d := New(client, time.Minute)

	skill, ok, err := d.SkillByName(context.Background(), "  guitar ")
	if err != nil {
		t.Fatalf("SkillByName() error = %v", err)
	}
	if !ok || skill.Name != "Guitar" {
		t.Fatalf("SkillByName() = %+v, %v, want Guitar", skill, ok)
	}

	if _, ok, _ := d.SkillByName(context.Background(), "Underwater Basket Weaving"); ok {
		t.Fatal("SkillByName() found a skill that is not in the catalogue")
	}
}

func TestSearchUsersResolvesProfileImages(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice@example.com", false)
	h.seed(t, "bob@example.com", false)
	client, _ := h.signIn(t, "alice@example.com")
	_, bob := h.signIn(t, "bob@example.com")
	ctx := context.Background()

	_, err := bob.UpdateProfile(ctx, session.ProfileUpdate{
		FirstName: "Bob",
		LastName:  "Tester",
		Avatar:    &avatar.Image{Name: "bob.png", MimeType: "image/png", Data: pngData(t)},
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	d := New(client, time.Minute)
	page, err := d.SearchUsers(ctx, SearchQuery{Search: "bob"})
	if err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}
	if page.Count != 1 || len(page.Results) != 1 {
		t.Fatalf("page = %+v, want exactly bob", page)
	}

	img := page.Results[0].ProfileImage
	if !strings.HasPrefix(img, h.srv.URL+"/media/profile_images/") {
		t.Fatalf("profile_image = %q, want absolute media URL on %s", img, h.srv.URL)
	}

	resp, err := http.Get(img)
	if err != nil {
		t.Fatalf("http.Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("media status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestSearchUsersFiltersByOfferedSkill(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice@example.com", false)
	bob := h.seed(t, "bob@example.com", false)
	h.seed(t, "carol@example.com", false)
	client, _ := h.signIn(t, "alice@example.com")
	d := New(client, time.Minute)

	guitar, ok, err := d.SkillByName(context.Background(), "Guitar")
	if err != nil || !ok {
		t.Fatalf("SkillByName() = %v, %v", ok, err)
	}
	if _, err := h.fake.AddUserSkill(bob.ID, guitar.ID, models.SkillOffered); err != nil {
		t.Fatalf("AddUserSkill() error = %v", err)
	}

	page, err := d.SearchUsers(context.Background(), SearchQuery{Skill: "guitar"})
	if err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}
	if page.Count != 1 || page.Results[0].ID != bob.ID {
		t.Fatalf("page = %+v, want only bob", page)
	}
}

func TestSearchUsersValidatesLocally(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice@example.com", false)
	client, _ := h.signIn(t, "alice@example.com")
	d := New(client, time.Minute)
	before := h.calls.Load()

	tests := []struct {
		name  string
		query SearchQuery
		field string
	}{
		{name: "unknown availability", query: SearchQuery{Availability: "sometimes"}, field: "availability"},
		{name: "negative page", query: SearchQuery{Page: -1}, field: "page"},
		{name: "long search", query: SearchQuery{Search: strings.Repeat("x", 101)}, field: "search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.SearchUsers(context.Background(), tt.query)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("SearchUsers() error = %v, want validation", err)
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Field != tt.field {
				t.Fatalf("field = %v, want %q", err, tt.field)
			}
		})
	}

	if got := h.calls.Load(); got != before {
		t.Fatalf("backend calls = %d, want %d", got, before)
	}
}

func TestOwnSkillsRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice@example.com", false)
	client, mgr := h.signIn(t, "alice@example.com")
	d := New(client, time.Minute)
	ctx := context.Background()
	me, _ := mgr.UserID()

	skill, _, err := d.SkillByName(ctx, "Spanish")
	if err != nil {
		t.Fatalf("SkillByName() error = %v", err)
	}

	added, err := d.AddSkill(ctx, skill.ID, models.SkillWanted)
	if err != nil {
		t.Fatalf("AddSkill() error = %v", err)
	}
	if added.Skill == nil || added.Skill.Name != "Spanish" {
		t.Fatalf("added = %+v, want expanded Spanish skill", added)
	}

	if _, err := d.AddSkill(ctx, skill.ID, models.SkillWanted); !errors.Is(err, apperr.ErrBadRequest) {
		t.Fatalf("duplicate AddSkill() error = %v, want bad request", err)
	}
	if _, err := d.AddSkill(ctx, skill.ID, "teach"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("AddSkill(teach) error = %v, want validation", err)
	}

	mine, err := d.UserSkills(ctx, me)
	if err != nil {
		t.Fatalf("UserSkills() error = %v", err)
	}
	if len(mine) != 1 || mine[0].Type != models.SkillWanted {
		t.Fatalf("UserSkills() = %+v, want one wanted skill", mine)
	}

	if err := d.RemoveSkill(ctx, added.ID); err != nil {
		t.Fatalf("RemoveSkill() error = %v", err)
	}
	if err := d.RemoveSkill(ctx, added.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second RemoveSkill() error = %v, want not found", err)
	}
	mine, err = d.UserSkills(ctx, me)
	if err != nil {
		t.Fatalf("UserSkills() error = %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("UserSkills() = %+v, want none", mine)
	}
}

func TestUserHidesPrivateProfiles(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice@example.com", false)
	hidden := h.seed(t, "hidden@example.com", true)
	client, _ := h.signIn(t, "alice@example.com")
	d := New(client, time.Minute)

	if _, err := d.User(context.Background(), hidden.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("User() error = %v, want not found", err)
	}
}

func pngData(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{B: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}
