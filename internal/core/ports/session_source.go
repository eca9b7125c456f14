package ports

import (
	"context"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// SessionSource is the client-side view of the auth subsystem.
type SessionSource interface {
	// GetCurrentSession returns the current session, or nil when signed out.
	GetCurrentSession(ctx context.Context) (*domain.Session, error)
	// SubscribeToSessionChanges registers fn for every session transition
	// and returns a function that removes it.
	SubscribeToSessionChanges(fn func(domain.AuthEvent)) (unsubscribe func())
}

// ProfileSource fetches the profile row of the session's identity.
type ProfileSource interface {
	FetchProfile(ctx context.Context, session domain.Session) domain.Lookup[domain.ProfileRecord]
}

// AdminSource fetches the admin allow-list row of the session's identity.
type AdminSource interface {
	FetchAdminMembership(ctx context.Context, session domain.Session) domain.Lookup[domain.AdminMembership]
}
