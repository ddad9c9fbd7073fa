package models

import "time"

// Session is the credential currently signed in on this device.
//
// The reconciler reads it fresh for every replay so that queued writes are
// always sent with the current token, never the one active at enqueue time.
type Session struct {
	// Token is the compact bearer token (header.payload.signature).
	Token string `json:"token,omitempty"`

	// ExpiresAt is the "exp" claim of Token, if the token carries one.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// UpdatedAt is when the session was last stored.
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the session token is past its expiry at now.
// Tokens without an expiry never expire.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
