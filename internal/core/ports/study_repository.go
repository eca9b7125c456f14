package ports

import (
	"context"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// StudyRepository persists studies.
type StudyRepository interface {
	Create(ctx context.Context, s *domain.Study) (*domain.Study, error)
	Update(ctx context.Context, s *domain.Study) error
	FindByID(ctx context.Context, id string) (*domain.Study, error)
	// List returns every study, or only visible ones when visibleOnly is set.
	List(ctx context.Context, visibleOnly bool) ([]*domain.Study, error)
}

// ChapterRepository persists chapters.
type ChapterRepository interface {
	Create(ctx context.Context, c *domain.Chapter) (*domain.Chapter, error)
	Update(ctx context.Context, c *domain.Chapter) error
	FindByID(ctx context.Context, id string) (*domain.Chapter, error)
	// ListByStudy returns the chapters of a study ordered by chapter number.
	ListByStudy(ctx context.Context, studyID string) ([]*domain.Chapter, error)
	// ListAll returns chapters of every study.
	ListAll(ctx context.Context) ([]*domain.Chapter, error)
	// First returns the lowest-numbered chapter, or domain.ErrChapterNotFound.
	First(ctx context.Context, studyID string) (*domain.Chapter, error)
	// MaxNumber returns the highest chapter number of a study, or 0.
	MaxNumber(ctx context.Context, studyID string) (int, error)
}

// ProgressRepository persists user progress rows.
type ProgressRepository interface {
	// Insert returns domain.ErrAlreadyAcquired when the user already has a
	// row for the chapter.
	Insert(ctx context.Context, p *domain.Progress) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Progress, error)
	// MarkCompleted sets completed_at and notes on the user's row for the
	// chapter, creating it when missing.
	MarkCompleted(ctx context.Context, p *domain.Progress) error
}
