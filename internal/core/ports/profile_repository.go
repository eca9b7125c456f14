package ports

import (
	"context"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// ProfileUpdate lists the columns a save action may set. Nil fields are left
// untouched.
type ProfileUpdate struct {
	FirstName           *string
	LastName            *string
	OnboardingCompleted *bool
	QuizResponses       *string
	Preferences         *string
	// JournalEntriesDelta is added to total_journal_entries.
	JournalEntriesDelta int
	// Seed fills the name and avatar columns only when the save creates the
	// row, so a new row keeps the display name captured at sign-up.
	Seed *domain.IdentityMetadata
}

// ProfileRepository persists profile rows.
type ProfileRepository interface {
	// FindByUserID returns domain.ErrProfileNotFound when no row exists.
	FindByUserID(ctx context.Context, userID string) (*domain.ProfileRecord, error)
	// Upsert applies update, creating the row when it does not exist.
	Upsert(ctx context.Context, userID string, update ProfileUpdate) error
}

// AdminRepository reads the admin allow-list.
type AdminRepository interface {
	// FindByUserID returns domain.ErrMembershipNotFound when the user is not
	// an administrator.
	FindByUserID(ctx context.Context, userID string) (*domain.AdminMembership, error)
}
