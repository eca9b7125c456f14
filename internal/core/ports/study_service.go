package ports

import (
	"context"
	"encoding/json"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// LibraryService covers the reader-facing study flows.
type LibraryService interface {
	// Discover lists visible studies the user has not acquired. An empty
	// userID lists every visible study.
	Discover(ctx context.Context, userID string) ([]*domain.Study, error)
	Library(ctx context.Context, userID string) ([]domain.StudyProgress, error)
	Acquire(ctx context.Context, userID, studyID string) (*domain.Progress, error)
	CompleteChapter(ctx context.Context, userID, chapterID, notes string) (*domain.Progress, error)
}

// StudyInput is the admin study form.
type StudyInput struct {
	Title         string
	Description   string
	CoverImageURL string // empty = none
	IsVisible     bool
}

// ChapterInput is the admin chapter form.
type ChapterInput struct {
	ChapterNumber int
	Title         string
	BibleText     string
	Explanation   string
	Application   string
	AudioURL      string // empty = none
}

// ContentService covers the admin console. actorID is the acting admin and
// is used only for audit logging.
type ContentService interface {
	ListStudies(ctx context.Context) ([]*domain.Study, error)
	GetStudy(ctx context.Context, id string) (*domain.Study, error)
	CreateStudy(ctx context.Context, actorID string, in StudyInput) (*domain.Study, error)
	UpdateStudy(ctx context.Context, actorID, id string, in StudyInput) (*domain.Study, error)

	ListChapters(ctx context.Context, studyID string) ([]*domain.Chapter, error)
	NextChapterNumber(ctx context.Context, studyID string) (int, error)
	CreateChapter(ctx context.Context, actorID, studyID string, in ChapterInput) (*domain.Chapter, error)
	UpdateChapter(ctx context.Context, actorID, id string, in ChapterInput) (*domain.Chapter, error)

	AuthorizeEmail(ctx context.Context, actorID, email string) (*domain.AuthorizedEmail, error)
}

// PersonalData is the personal-data screen view.
type PersonalData struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       string `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// ProfileService covers profile reads and save actions.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.ProfileRecord, error)
	GetMembership(ctx context.Context, userID string) (*domain.AdminMembership, error)
	PersonalData(ctx context.Context, identity domain.Identity) (*PersonalData, error)
	UpdateName(ctx context.Context, userID, firstName, lastName string) error
	CompleteOnboarding(ctx context.Context, userID string, answers map[string]json.RawMessage) error
}
