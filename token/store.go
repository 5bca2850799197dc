package token

import "sync"

// Store keeps the in-memory credential state for a single logged-in
// identity. All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	access  string
	refresh string
	temp    string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// SetPair installs a full access/refresh pair. Any pending temp token is
// discarded: a completed login supersedes the challenge that produced it.
func (s *Store) SetPair(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	s.temp = ""
}

// SetTemp installs a two-factor temp token and discards any full pair.
func (s *Store) SetTemp(temp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.temp = temp
}

// Clear drops all credentials.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.temp = ""
}

// AccessToken returns the current access token, or "" when absent.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the current refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// TempToken returns the pending two-factor temp token, or "" when absent.
func (s *Store) TempToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.temp
}

// HasPair reports whether a full access/refresh pair is held.
func (s *Store) HasPair() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != "" && s.refresh != ""
}

// HasTemp reports whether a two-factor challenge is pending.
func (s *Store) HasTemp() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.temp != ""
}

// AccessTokenValid reports whether the held access token exists and its exp
// claim is in the future. No clock skew grace is applied.
func (s *Store) AccessTokenValid() bool {
	return Valid(s.AccessToken())
}
