package authcore

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/gemdesk/authcore/permission"
)

func TestLoginSuccessLoadsState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, loginBody(userDoc()))
	})
	c := newTestClient(t, newBackend(t, mux).URL)

	result, err := c.Login(context.Background(), testCreds)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.TwoFactorRequired {
		t.Fatal("expected full authentication")
	}
	if result.User.ID != "user-1" || result.User.Role != RoleManager {
		t.Fatalf("unexpected user: %+v", result.User)
	}

	state := c.State()
	if !state.Authenticated || state.Status != StateAuthenticated {
		t.Fatalf("expected authenticated state, got %+v", state)
	}
	if len(state.ShopIDs) != 2 {
		t.Fatalf("expected 2 shop accesses, got %v", state.ShopIDs)
	}
	// Two shops and no prior selection: the user must pick explicitly.
	if state.CurrentShopID != "" {
		t.Fatalf("expected no shop selected, got %q", state.CurrentShopID)
	}
	if !c.AccessTokenValid() {
		t.Fatal("expected a valid access token")
	}
}

func TestLoginSoleShopAutoSelected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, loginBody(userDoc(
			shopDoc("shop-a", "manager", map[string]bool{"sales.view": true}),
		)))
	})
	c := newTestClient(t, newBackend(t, mux).URL)
	mustLogin(t, c)

	if got := c.State().CurrentShopID; got != "shop-a" {
		t.Fatalf("expected sole shop auto-selected, got %q", got)
	}
	if !c.Can(permission.SalesView) {
		t.Fatal("expected sales.view granted immediately after login")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	})
	c := newTestClient(t, newBackend(t, mux).URL)

	_, err := c.Login(context.Background(), testCreds)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if KindOf(err) != KindAuthentication {
		t.Fatalf("expected authentication kind, got %v", KindOf(err))
	}

	state := c.State()
	if state.Status != StateAnonymous {
		t.Fatalf("expected anonymous after failed login, got %v", state.Status)
	}
	if !errors.Is(state.LastError, ErrInvalidCredentials) {
		t.Fatalf("expected failure recorded in LastError, got %v", state.LastError)
	}
}

func TestLoginWhileAuthenticatedRejected(t *testing.T) {
	var loginCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		loginCalls.Add(1)
		writeJSON(w, loginBody(userDoc(
			shopDoc("shop-a", "manager", map[string]bool{"sales.view": true}),
		)))
	})
	c := newTestClient(t, newBackend(t, mux).URL)
	mustLogin(t, c)

	_, err := c.Login(context.Background(), Credentials{
		Email:    "mallory@gemdesk.example",
		Password: "wrong",
	})
	if !errors.Is(err, ErrAlreadyAuthenticated) {
		t.Fatalf("expected ErrAlreadyAuthenticated, got %v", err)
	}
	if got := loginCalls.Load(); got != 1 {
		t.Fatalf("expected no second login request, server saw %d", got)
	}

	// The held session is untouched.
	state := c.State()
	if !state.Authenticated || state.CurrentShopID != "shop-a" {
		t.Fatalf("expected session to survive the rejected login, got %+v", state)
	}
	if !c.Can(permission.SalesView) {
		t.Fatal("expected sales.view still granted")
	}
	if !c.AccessTokenValid() {
		t.Fatal("expected access token still valid")
	}
}

func TestFailedLoginLeavesNoResidualState(t *testing.T) {
	var loginCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if loginCalls.Add(1) == 1 {
			writeJSON(w, map[string]any{"requires2FA": true, "tempToken": "temp-abc"})
			return
		}
		writeAPIError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	})
	c := newTestClient(t, newBackend(t, mux).URL)

	result, err := c.Login(context.Background(), testCreds)
	if err != nil || !result.TwoFactorRequired {
		t.Fatalf("expected pending challenge, got %+v, %v", result, err)
	}

	// A fresh Login replaces the challenge; when it fails, nothing from the
	// earlier attempt may remain resolvable.
	_, err = c.Login(context.Background(), testCreds)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	state := c.State()
	if state.Authenticated || state.Status != StateAnonymous {
		t.Fatalf("expected anonymous after failed login, got %+v", state)
	}
	if !errors.Is(state.LastError, ErrInvalidCredentials) {
		t.Fatalf("expected failure recorded in LastError, got %v", state.LastError)
	}
	if len(state.ShopIDs) != 0 {
		t.Fatalf("expected no shop accesses, got %v", state.ShopIDs)
	}
	if c.Can(permission.SalesView) {
		t.Fatal("anonymous client must not resolve any permission")
	}
	if c.AccessTokenValid() {
		t.Fatal("expected no valid access token")
	}
	if _, ok := c.CurrentUser(); ok {
		t.Fatal("expected no user record")
	}

	// The stale challenge token is gone with everything else.
	if _, err := c.VerifyTwoFactorLogin(context.Background(), "123456"); !errors.Is(err, ErrTwoFactorNotPending) {
		t.Fatalf("expected ErrTwoFactorNotPending, got %v", err)
	}
}

func TestLoginValidatesInput(t *testing.T) {
	c := newTestClient(t, "http://localhost:9")

	for _, creds := range []Credentials{
		{},
		{Email: "alice@gemdesk.example"},
		{Password: "correct-horse"},
	} {
		_, err := c.Login(context.Background(), creds)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", creds, err)
		}
	}
}

func TestLoginDuplicateSubmitRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		writeJSON(w, loginBody(userDoc()))
	})
	c := newTestClient(t, newBackend(t, mux).URL)

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), testCreds)
		firstDone <- err
	}()

	<-started
	_, err := c.Login(context.Background(), testCreds)
	if !errors.Is(err, ErrLoginInFlight) {
		t.Fatalf("expected ErrLoginInFlight, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	if got := c.MetricsSnapshot().Counters[MetricLoginDuplicateSubmit]; got != 1 {
		t.Fatalf("expected 1 duplicate submit counted, got %d", got)
	}
}

func TestTwoFactorLoginFlow(t *testing.T) {
	const tempToken = "temp-abc"
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"requires2FA": true, "tempToken": tempToken})
	})
	mux.HandleFunc("POST /auth/2fa/login-verify", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TempToken string `json:"tempToken"`
			Code      string `json:"code"`
		}
		_ = decodeBody(r, &req)
		if req.TempToken != tempToken {
			writeAPIError(w, http.StatusUnauthorized, "token_expired", "challenge expired")
			return
		}
		if req.Code != "123456" {
			writeAPIError(w, http.StatusUnauthorized, "invalid_2fa_code", "wrong code")
			return
		}
		writeJSON(w, loginBody(userDoc()))
	})
	c := newTestClient(t, newBackend(t, mux).URL)

	result, err := c.Login(context.Background(), testCreds)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !result.TwoFactorRequired {
		t.Fatal("expected two-factor challenge")
	}
	if got := c.State().Status; got != StateTwoFactorPending {
		t.Fatalf("expected pending state, got %v", got)
	}
	if c.AccessTokenValid() {
		t.Fatal("expected no access token while challenge pending")
	}

	// A wrong code keeps the challenge pending.
	_, err = c.VerifyTwoFactorLogin(context.Background(), "000000")
	if !errors.Is(err, ErrInvalidTwoFactorCode) {
		t.Fatalf("expected ErrInvalidTwoFactorCode, got %v", err)
	}
	if got := c.State().Status; got != StateTwoFactorPending {
		t.Fatalf("expected challenge still pending, got %v", got)
	}

	result, err = c.VerifyTwoFactorLogin(context.Background(), "123456")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.User.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if got := c.State().Status; got != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", got)
	}
}

func TestVerifyWithoutPendingChallenge(t *testing.T) {
	c := newTestClient(t, "http://localhost:9")

	if _, err := c.VerifyTwoFactorLogin(context.Background(), "123456"); !errors.Is(err, ErrTwoFactorNotPending) {
		t.Fatalf("expected ErrTwoFactorNotPending, got %v", err)
	}
	if _, err := c.VerifyBackupCode(context.Background(), "AAAA-BBBB"); !errors.Is(err, ErrTwoFactorNotPending) {
		t.Fatalf("expected ErrTwoFactorNotPending, got %v", err)
	}
}

func TestBackupCodeReplayDistinctError(t *testing.T) {
	used := map[string]bool{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"requires2FA": true, "tempToken": "temp-abc"})
	})
	mux.HandleFunc("POST /auth/2fa/login-verify", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code         string `json:"code"`
			IsBackupCode bool   `json:"isBackupCode"`
		}
		_ = decodeBody(r, &req)
		if !req.IsBackupCode {
			writeAPIError(w, http.StatusUnauthorized, "invalid_2fa_code", "wrong code")
			return
		}
		if used[req.Code] {
			writeAPIError(w, http.StatusUnauthorized, "backup_code_used", "code already consumed")
			return
		}
		if req.Code != "AAAA-BBBB" {
			writeAPIError(w, http.StatusUnauthorized, "invalid_2fa_code", "unknown code")
			return
		}
		used[req.Code] = true
		writeJSON(w, loginBody(userDoc()))
	})
	srv := newBackend(t, mux)

	c := newTestClient(t, srv.URL)
	mustLogin(t, c)

	if _, err := c.VerifyBackupCode(context.Background(), "AAAA-BBBB"); err != nil {
		t.Fatalf("backup code login failed: %v", err)
	}
	codes := c.UsedBackupCodes()
	if len(codes) != 1 || codes[0] != "AAAA-BBBB" {
		t.Fatalf("expected consumed code recorded, got %v", codes)
	}

	// Replay on a second client: the server rejects with the dedicated code
	// and the client keeps it distinguishable from a merely wrong code.
	c2 := newTestClient(t, srv.URL)
	mustLogin(t, c2)

	_, err := c2.VerifyBackupCode(context.Background(), "AAAA-BBBB")
	if !errors.Is(err, ErrBackupCodeConsumed) {
		t.Fatalf("expected ErrBackupCodeConsumed, got %v", err)
	}
	if errors.Is(err, ErrInvalidTwoFactorCode) {
		t.Fatal("replay must not look like a wrong code")
	}

	_, err = c2.VerifyBackupCode(context.Background(), "ZZZZ-ZZZZ")
	if !errors.Is(err, ErrInvalidTwoFactorCode) {
		t.Fatalf("expected ErrInvalidTwoFactorCode for unknown code, got %v", err)
	}
}
