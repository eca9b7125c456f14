package session

import "github.com/palavraviva/study-platform/internal/core/domain"

// State is the lifecycle state of a Store.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of everything the store derives. Session,
// Profile and IsAdmin always come from the same derivation pass.
type Snapshot struct {
	State   State
	Loading bool
	// Session is nil when nobody is signed in. Treat it as read-only.
	Session                 *domain.Session
	Profile                 domain.Profile
	IsAdmin                 bool
	HasNewStudyNotification bool
	// Generation identifies the derivation pass that produced the facts.
	Generation uint64

	version uint64
}

// Authenticated reports whether the snapshot carries a session.
func (s Snapshot) Authenticated() bool {
	return s.Session != nil
}

// UserID returns the signed-in user's id, or "".
func (s Snapshot) UserID() string {
	return userID(s.Session)
}

// CanAccessAdmin reports whether privileged screens may render. It is false
// while a derivation is in flight.
func (s Snapshot) CanAccessAdmin() bool {
	return s.State == StateReady && !s.Loading && s.Session != nil && s.IsAdmin
}

func userID(s *domain.Session) string {
	if s == nil {
		return ""
	}
	return s.User.ID
}
