package domain

import (
	"strings"
	"time"
)

// ProfileRecord is a stored profile row. Every column is nullable.
type ProfileRecord struct {
	ID                  string     `json:"id" bson:"_id"`
	FirstName           *string    `json:"first_name" bson:"first_name,omitempty"`
	LastName            *string    `json:"last_name" bson:"last_name,omitempty"`
	AvatarURL           *string    `json:"avatar_url" bson:"avatar_url,omitempty"`
	OnboardingCompleted *bool      `json:"onboarding_completed" bson:"onboarding_completed,omitempty"`
	QuizResponses       *string    `json:"quiz_responses" bson:"quiz_responses,omitempty"`
	Preferences         *string    `json:"preferences" bson:"preferences,omitempty"`
	EnablePopups        *bool      `json:"enable_popups" bson:"enable_popups,omitempty"`
	TotalShares         *int       `json:"total_shares" bson:"total_shares,omitempty"`
	TotalJournalEntries *int       `json:"total_journal_entries" bson:"total_journal_entries,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Profile is the display/preference view derived for the current actor.
// Empty strings mean absent.
type Profile struct {
	FullName            string
	AvatarURL           string
	OnboardingCompleted bool
	QuizResponses       string
	Preferences         string
	EnablePopups        bool
	TotalShares         int
	TotalJournalEntries int
}

// DefaultProfile is the profile of an actor with no stored preferences.
func DefaultProfile() Profile {
	return Profile{EnablePopups: true}
}

// Name returns the display name, or fallback when none is known.
func (p Profile) Name(fallback string) string {
	if p.FullName == "" {
		return fallback
	}
	return p.FullName
}

// ProfileFromRecord applies column defaults to a stored row.
func ProfileFromRecord(r ProfileRecord) Profile {
	p := DefaultProfile()
	p.FullName = JoinName(deref(r.FirstName), deref(r.LastName))
	p.AvatarURL = deref(r.AvatarURL)
	p.QuizResponses = deref(r.QuizResponses)
	p.Preferences = deref(r.Preferences)
	if r.OnboardingCompleted != nil {
		p.OnboardingCompleted = *r.OnboardingCompleted
	}
	if r.EnablePopups != nil {
		p.EnablePopups = *r.EnablePopups
	}
	if r.TotalShares != nil {
		p.TotalShares = *r.TotalShares
	}
	if r.TotalJournalEntries != nil {
		p.TotalJournalEntries = *r.TotalJournalEntries
	}
	return p
}

// ProfileFromMetadata builds the fallback profile used when no row exists or
// the row could not be read.
func ProfileFromMetadata(m IdentityMetadata) Profile {
	p := DefaultProfile()
	p.FullName = JoinName(m.FirstName, m.LastName)
	p.AvatarURL = m.AvatarURL
	return p
}

// JoinName joins the non-empty name parts with a space. Returns "" when both
// parts are empty.
func JoinName(first, last string) string {
	parts := make([]string, 0, 2)
	for _, s := range []string{first, last} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
