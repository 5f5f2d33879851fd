package models

import "time"

// Session binds a hashed bearer token to a user. The raw token lives only in
// the client cookie; the row stores its SHA-256 digest.
type Session struct {
	ID        string
	UserID    string
	TokenHash []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
