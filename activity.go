package authcore

import (
	"sync/atomic"
	"time"
)

// activityTracker records the last user interaction. It is armed on
// authentication and disarmed (and zeroed) on any transition to anonymous,
// so no interaction timestamps leak across logins.
type activityTracker struct {
	armed atomic.Bool
	last  atomic.Int64
}

func (t *activityTracker) arm() {
	t.last.Store(time.Now().UnixNano())
	t.armed.Store(true)
}

func (t *activityTracker) disarm() {
	t.armed.Store(false)
	t.last.Store(0)
}

func (t *activityTracker) track() bool {
	if !t.armed.Load() {
		return false
	}
	t.last.Store(time.Now().UnixNano())
	return true
}

func (t *activityTracker) lastActivity() (time.Time, bool) {
	if !t.armed.Load() {
		return time.Time{}, false
	}
	ns := t.last.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

// TrackActivity records "now" as the last interaction. The UI calls this
// from its sampled interaction signals (clicks, keypresses, scrolls).
// Ignored while not authenticated, so signals firing after logout record
// nothing. Returns whether the sample was recorded.
func (c *Client) TrackActivity() bool {
	return c.activity.track()
}

// LastActivity returns the last recorded interaction time, or false while
// anonymous.
func (c *Client) LastActivity() (time.Time, bool) {
	return c.activity.lastActivity()
}

// IdleFor returns the time since the last interaction, or zero while
// anonymous.
func (c *Client) IdleFor() time.Duration {
	last, ok := c.activity.lastActivity()
	if !ok {
		return 0
	}
	return time.Since(last)
}

// IdleExpired reports whether the idle window has elapsed since the last
// interaction. Always false while anonymous or when IdleTimeout is zero.
// The caller decides the consequence (typically Logout).
func (c *Client) IdleExpired() bool {
	if c.config.Activity.IdleTimeout <= 0 {
		return false
	}
	last, ok := c.activity.lastActivity()
	if !ok {
		return false
	}
	return time.Since(last) >= c.config.Activity.IdleTimeout
}
