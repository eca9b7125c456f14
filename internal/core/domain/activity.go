package domain

import "time"

// ActivityScope selects which audit trail an activity belongs to.
type ActivityScope string

const (
	ScopeUser  ActivityScope = "user"
	ScopeAdmin ActivityScope = "admin"
)

// ActivityKind names an audited action.
type ActivityKind string

const (
	ActivityStudyAcquired       ActivityKind = "study_acquired"
	ActivityChapterCompleted    ActivityKind = "chapter_completed"
	ActivityOnboardingCompleted ActivityKind = "onboarding_completed"
	ActivityProfileUpdated      ActivityKind = "profile_updated"

	ActivityStudyCreated        ActivityKind = "study_created"
	ActivityStudyUpdated        ActivityKind = "study_updated"
	ActivityChapterCreated      ActivityKind = "chapter_created"
	ActivityChapterUpdated      ActivityKind = "chapter_updated"
	ActivityAuthorizedUserAdded ActivityKind = "authorized_user_added"
)

// Activity is one audit log line.
type Activity struct {
	Scope     ActivityScope
	ActorID   string
	Kind      ActivityKind
	Detail    string
	CreatedAt time.Time
}
