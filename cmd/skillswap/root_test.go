package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"skillswap/internal/apperr"
	"skillswap/internal/fakeapi"
	"skillswap/internal/models"
)

type testEnv struct {
	fake  *fakeapi.Server
	alice int64
	bob   int64
}

// newEnv points the CLI at a fake backend through the environment and gives
// each test its own session database.
func newEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := fakeapi.New(fakeapi.Options{Secret: "test-secret"})
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	t.Setenv("SKILLSWAP_CONFIG", "")
	t.Setenv("SKILLSWAP_API_URL", srv.URL+fakeapi.APIPrefix)
	t.Setenv("SKILLSWAP_STORAGE_PATH", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("SKILLSWAP_LOG_LEVEL", "error")

	env := &testEnv{fake: fake}
	for _, u := range []fakeapi.NewUser{
		{Email: "alice@example.com", Username: "alice", FirstName: "Alice", LastName: "Ng"},
		{Email: "bob@example.com", Username: "bob", FirstName: "Bob", LastName: "Reyes"},
	} {
		u.Password = "secret123"
		p, err := fake.CreateUser(u)
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		if u.Username == "alice" {
			env.alice = p.ID
		} else {
			env.bob = p.ID
		}
	}
	return env
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	newEnv(t)

	out, err := runCLI(t, "secret123\n", "login", "--email", "alice@example.com")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Signed in as Alice Ng (alice)") {
		t.Errorf("login output = %q", out)
	}

	out, err = runCLI(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	if !strings.Contains(out, "Alice Ng (alice)") {
		t.Errorf("whoami output = %q", out)
	}

	if _, err := runCLI(t, "", "logout"); err != nil {
		t.Fatalf("logout error = %v", err)
	}
	out, err = runCLI(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	if strings.TrimSpace(out) != "Not signed in" {
		t.Errorf("whoami after logout = %q", out)
	}
}

func TestLoginPromptsForEmail(t *testing.T) {
	newEnv(t)

	out, err := runCLI(t, "alice@example.com\nsecret123\n", "login")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Signed in as") {
		t.Errorf("login output = %q", out)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	newEnv(t)

	_, err := runCLI(t, "nope\n", "login", "--email", "alice@example.com")
	if !errors.Is(err, apperr.ErrAuthentication) {
		t.Fatalf("login error = %v, want authentication error", err)
	}
}

func TestCommandsRequireSession(t *testing.T) {
	newEnv(t)

	for _, args := range [][]string{
		{"swaps", "list"},
		{"notifications", "list"},
		{"skills", "mine"},
		{"users", "search"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := runCLI(t, "", args...)
			if !errors.Is(err, errNotSignedIn) {
				t.Fatalf("error = %v, want errNotSignedIn", err)
			}
			if got := errorMessage(err); !strings.Contains(got, "skillswap login") {
				t.Errorf("errorMessage() = %q", got)
			}
		})
	}
}

func TestSwapAcceptFromCLI(t *testing.T) {
	env := newEnv(t)

	req, err := env.fake.SeedSwap(env.bob, env.alice, models.SwapPending)
	if err != nil {
		t.Fatalf("SeedSwap() error = %v", err)
	}
	if _, err := runCLI(t, "secret123\n", "login", "--email", "alice@example.com"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	out, err := runCLI(t, "", "swaps", "list", "--filter", "incoming")
	if err != nil {
		t.Fatalf("swaps list error = %v", err)
	}
	if !strings.Contains(out, "pending") || !strings.Contains(out, fmt.Sprintf("#%d", env.bob)) {
		t.Errorf("swaps list output = %q", out)
	}

	out, err = runCLI(t, "", "swaps", "accept", fmt.Sprint(req.ID))
	if err != nil {
		t.Fatalf("swaps accept error = %v", err)
	}
	if want := fmt.Sprintf("Swap request #%d is now accepted", req.ID); !strings.Contains(out, want) {
		t.Errorf("swaps accept output = %q, want %q", out, want)
	}

	// Bob withdrew in the meantime. The list is refreshed before acting,
	// so the request is refused locally.
	if _, err := env.fake.ForceSwapStatus(req.ID, models.SwapCancelled); err != nil {
		t.Fatalf("ForceSwapStatus() error = %v", err)
	}
	_, err = runCLI(t, "", "swaps", "complete", fmt.Sprint(req.ID))
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("swaps complete error = %v, want invalid transition", err)
	}
	if got, _ := env.fake.SwapRequest(req.ID); got.Status != models.SwapCancelled {
		t.Errorf("server status = %s, want cancelled", got.Status)
	}
}

func TestSkillsAndNotifications(t *testing.T) {
	env := newEnv(t)

	if _, err := env.fake.SeedSwap(env.bob, env.alice, models.SwapPending); err != nil {
		t.Fatalf("SeedSwap() error = %v", err)
	}
	if _, err := runCLI(t, "secret123\n", "login", "--email", "alice@example.com"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	out, err := runCLI(t, "", "skills", "add", "guitar", "--type", "want")
	if err != nil {
		t.Fatalf("skills add error = %v", err)
	}
	if !strings.Contains(out, "Added Guitar (want)") {
		t.Errorf("skills add output = %q", out)
	}

	out, err = runCLI(t, "", "skills", "mine")
	if err != nil {
		t.Fatalf("skills mine error = %v", err)
	}
	if !strings.Contains(out, "Guitar") {
		t.Errorf("skills mine output = %q", out)
	}

	if _, err := runCLI(t, "", "skills", "add", "basket weaving"); err == nil {
		t.Fatal("skills add unknown skill: expected error")
	}

	out, err = runCLI(t, "", "notifications", "read-all")
	if err != nil {
		t.Fatalf("notifications read-all error = %v", err)
	}
	if !strings.Contains(out, "marked as read") {
		t.Errorf("notifications read-all output = %q", out)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{arg: "42", want: 42},
		{arg: "#7", want: 7},
		{arg: "0", wantErr: true},
		{arg: "-3", wantErr: true},
		{arg: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseID(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseID(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseID(%q) = %d, want %d", tt.arg, got, tt.want)
			}
		})
	}
}

func TestSeedDemo(t *testing.T) {
	fake := fakeapi.New(fakeapi.Options{})
	if err := seedDemo(fake); err != nil {
		t.Fatalf("seedDemo() error = %v", err)
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	t.Setenv("SKILLSWAP_CONFIG", "")
	t.Setenv("SKILLSWAP_API_URL", srv.URL+fakeapi.APIPrefix)
	t.Setenv("SKILLSWAP_STORAGE_PATH", "memory")
	t.Setenv("SKILLSWAP_LOG_LEVEL", "error")

	out, err := runCLI(t, demoPassword+"\n", "login", "--email", "alice@example.com")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Signed in as Alice Ng") {
		t.Errorf("login output = %q", out)
	}
}
