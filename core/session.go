package core

import "time"

// DefaultSessionTTL bounds how long a bearer token is trusted locally when the
// backend does not communicate its own expiry.
const DefaultSessionTTL = 24 * time.Hour

// Session is the persisted outcome of a successful login exchange. It lives in
// a single process-wide storage slot; writes are last-writer-wins.
type Session struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session can still authenticate requests at now.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}
