package authcore

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gemdesk/authcore/store"
)

func seedPersisted(t *testing.T, s store.StateStore, accessTTL time.Duration) {
	t.Helper()
	ctx := context.Background()
	if err := s.Set(ctx, store.KeyAccessToken, mintTestJWT(accessTTL)); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, store.KeyRefreshToken, mintTestJWT(7*24*time.Hour)); err != nil {
		t.Fatal(err)
	}
}

func TestInitializeEmptyStoreResolvesAnonymous(t *testing.T) {
	c := newTestClient(t, "http://localhost:9")

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("expected silent anonymous resolution, got %v", err)
	}

	state := c.State()
	if state.Authenticated || state.Initializing {
		t.Fatalf("expected settled anonymous state, got %+v", state)
	}
}

func TestInitializeRestoresPersistedSession(t *testing.T) {
	var meCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, map[string]string{
			"accessToken":  mintTestJWT(15 * time.Minute),
			"refreshToken": mintTestJWT(7 * 24 * time.Hour),
		})
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		writeJSON(w, userDoc())
	})

	states := store.NewMemory()
	seedPersisted(t, states, 15*time.Minute)
	if err := states.Set(context.Background(), store.KeyCurrentShop, "shop-b"); err != nil {
		t.Fatal(err)
	}

	c := newTestClient(t, newBackend(t, mux).URL, func(b *Builder) { b.WithStateStore(states) })

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	state := c.State()
	if !state.Authenticated {
		t.Fatal("expected restored authentication")
	}
	if state.CurrentShopID != "shop-b" {
		t.Fatalf("expected persisted shop restored, got %q", state.CurrentShopID)
	}
	if refreshCalls.Load() != 0 {
		t.Fatal("expected no refresh while the persisted access token is valid")
	}
	if meCalls.Load() != 1 {
		t.Fatalf("expected one profile fetch, got %d", meCalls.Load())
	}

	// Initialize runs once per client.
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("second initialize failed: %v", err)
	}
	if meCalls.Load() != 1 {
		t.Fatal("expected second initialize to be a no-op")
	}
}

func TestInitializeRefreshesExpiredAccessToken(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, map[string]string{
			"accessToken":  mintTestJWT(15 * time.Minute),
			"refreshToken": mintTestJWT(7 * 24 * time.Hour),
		})
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, userDoc())
	})

	states := store.NewMemory()
	seedPersisted(t, states, -time.Minute)

	c := newTestClient(t, newBackend(t, mux).URL, func(b *Builder) { b.WithStateStore(states) })

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if !c.State().Authenticated {
		t.Fatal("expected silent refresh to restore authentication")
	}
	if refreshCalls.Load() != 1 {
		t.Fatalf("expected one refresh, got %d", refreshCalls.Load())
	}
}

func TestInitializeDeadRefreshTokenDiscardsSilently(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "invalid_refresh_token", "revoked")
	})

	states := store.NewMemory()
	seedPersisted(t, states, -time.Minute)

	c := newTestClient(t, newBackend(t, mux).URL, func(b *Builder) { b.WithStateStore(states) })

	// A lapsed persisted login is not a failure.
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("expected silent discard, got %v", err)
	}
	if c.State().Authenticated {
		t.Fatal("expected anonymous after discard")
	}
	if _, err := states.Get(context.Background(), store.KeyRefreshToken); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected persisted tokens discarded, got %v", err)
	}
}

func TestInitializeNetworkFailureIsRetryable(t *testing.T) {
	var meCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if meCalls.Add(1) == 1 {
			dropConnection(w)
			return
		}
		writeJSON(w, userDoc())
	})

	states := store.NewMemory()
	seedPersisted(t, states, 15*time.Minute)

	c := newTestClient(t, newBackend(t, mux).URL, func(b *Builder) { b.WithStateStore(states) })

	err := c.Initialize(context.Background())
	if err == nil || KindOf(err) != KindNetwork {
		t.Fatalf("expected network failure surfaced, got %v", err)
	}
	if c.State().Authenticated {
		t.Fatal("expected no authentication after transport failure")
	}

	// Connectivity is back; the retry must not be swallowed by the
	// once-guard.
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !c.State().Authenticated {
		t.Fatal("expected authentication on retry")
	}
}

func TestRefreshCoalescesConcurrentCalls(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, loginBody(userDoc()))
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(50 * time.Millisecond)
		writeJSON(w, map[string]string{
			"accessToken":  mintTestJWT(15 * time.Minute),
			"refreshToken": mintTestJWT(7 * 24 * time.Hour),
		})
	})
	c := newTestClient(t, newBackend(t, mux).URL)
	mustLogin(t, c)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.RefreshToken(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("refresh %d failed: %v", i, err)
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("expected a single coalesced refresh exchange, got %d", got)
	}
	if !c.AccessTokenValid() {
		t.Fatal("expected rotated access token to be valid")
	}
}

func TestRefreshTerminalRejectionForcesAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, loginBody(userDoc()))
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "invalid_refresh_token", "revoked")
	})

	states := store.NewMemory()
	c := newTestClient(t, newBackend(t, mux).URL, func(b *Builder) { b.WithStateStore(states) })
	mustLogin(t, c)

	err := c.RefreshToken(context.Background())
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}

	state := c.State()
	if state.Authenticated {
		t.Fatal("expected forced anonymous after terminal rejection")
	}
	if !errors.Is(state.LastError, ErrRefreshInvalid) {
		t.Fatalf("expected cause recorded, got %v", state.LastError)
	}
	if _, err := states.Get(context.Background(), store.KeyRefreshToken); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("expected persisted tokens cleared")
	}
}

func TestRefreshNetworkFailureKeepsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, loginBody(userDoc()))
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		dropConnection(w)
	})
	c := newTestClient(t, newBackend(t, mux).URL)
	mustLogin(t, c)

	err := c.RefreshToken(context.Background())
	if err == nil || KindOf(err) != KindNetwork {
		t.Fatalf("expected network failure, got %v", err)
	}
	if !c.State().Authenticated {
		t.Fatal("expected session kept for retry after transport failure")
	}
}

func TestRefreshWithoutSession(t *testing.T) {
	c := newTestClient(t, "http://localhost:9")
	if err := c.RefreshToken(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
