package types

import "time"

// Session is a server-side login session. The session ID travels in an
// HTTP-only cookie; AccessToken is a short-lived JWT minted from the session
// and RefreshToken is an opaque value rotated on every refresh. A session is
// valid only while ExpiresAt has not passed and the user has not signed out.
type Session struct {
	// ID is the opaque session identifier stored in the cookie.
	ID string `json:"id" db:"id"`

	// UserID is the owning user.
	UserID string `json:"user_id" db:"user_id"`

	// AccessToken is the current JWT for this session. Not persisted;
	// minted on issue and on refresh.
	AccessToken string `json:"access_token" db:"-"`

	// RefreshToken is rotated on every refresh. Never reused once rotated.
	RefreshToken string `json:"refresh_token" db:"refresh_token"`

	// ExpiresAt is the absolute expiry of the session.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the session expiry has passed at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
