package session

import "time"

// Session is the canonical client-side view of one server-tracked login.
// TokenID is the canonical identifier; ID mirrors it when the backend sent
// only one of the two keys. Both are always populated after Normalize.
type Session struct {
	ID         string
	TokenID    string
	Device     Device
	IPAddress  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time
	Current    bool
}

// Matches reports whether key identifies this session by either of its
// identity keys. Revocation uses this so the backend's id/tokenId
// inconsistency cannot strand a cached entry.
func (s Session) Matches(key string) bool {
	if key == "" {
		return false
	}
	return s.ID == key || s.TokenID == key
}

// Device describes the device a session was created from. The backend sends
// either a plain string (kept in Raw) or a structured record.
type Device struct {
	Type    string
	Browser string
	OS      string
	Raw     string
}

// Label returns a human-readable device description, preferring the
// structured fields.
func (d Device) Label() string {
	switch {
	case d.Browser != "" && d.OS != "":
		return d.Browser + " on " + d.OS
	case d.Browser != "":
		return d.Browser
	case d.OS != "":
		return d.OS
	case d.Type != "":
		return d.Type
	default:
		return d.Raw
	}
}
