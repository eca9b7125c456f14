package domain

import "time"

// Identity is the user reference embedded in a session.
type Identity struct {
	ID       string           `json:"id"`
	Email    string           `json:"email"`
	Metadata IdentityMetadata `json:"user_metadata"`
}

// Session is an authentication credential plus the identity it was issued to.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Identity  `json:"user"`
}

// ExpiresWithin reports whether the access token expires within d of now.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !s.ExpiresAt.After(now.Add(d))
}

// AuthEventKind names a session transition reported by the auth subsystem.
type AuthEventKind string

const (
	AuthSignedIn       AuthEventKind = "signed_in"
	AuthSignedOut      AuthEventKind = "signed_out"
	AuthTokenRefreshed AuthEventKind = "token_refreshed"
	AuthUserUpdated    AuthEventKind = "user_updated"
)

// AuthEvent is a session transition. Session is nil after sign-out.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}
