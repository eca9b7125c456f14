package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

type contentService struct {
	studies   ports.StudyRepository
	chapters  ports.ChapterRepository
	allowList ports.AuthorizedEmailRepository
	activity  ports.ActivityLogger
	log       zerolog.Logger
	now       func() time.Time
}

// NewContentService returns the admin ContentService implementation.
func NewContentService(
	studies ports.StudyRepository,
	chapters ports.ChapterRepository,
	allowList ports.AuthorizedEmailRepository,
	activity ports.ActivityLogger,
	log zerolog.Logger,
) ports.ContentService {
	return &contentService{
		studies:   studies,
		chapters:  chapters,
		allowList: allowList,
		activity:  activity,
		log:       log,
		now:       time.Now,
	}
}

func (s *contentService) ListStudies(ctx context.Context) ([]*domain.Study, error) {
	return s.studies.List(ctx, false)
}

func (s *contentService) GetStudy(ctx context.Context, id string) (*domain.Study, error) {
	return s.studies.FindByID(ctx, id)
}

func (s *contentService) CreateStudy(ctx context.Context, actorID string, in ports.StudyInput) (*domain.Study, error) {
	now := s.now().UTC()
	study := &domain.Study{
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		CoverImageURL: optionalURL(in.CoverImageURL),
		IsVisible:     in.IsVisible,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := s.studies.Create(ctx, study)
	if err != nil {
		return nil, fmt.Errorf("create study: %w", err)
	}

	s.activity.LogActivity(domain.ScopeAdmin, actorID, domain.ActivityStudyCreated, created.ID)
	s.log.Info().Str("actor_id", actorID).Str("study_id", created.ID).Msg("study created")
	return created, nil
}

func (s *contentService) UpdateStudy(ctx context.Context, actorID, id string, in ports.StudyInput) (*domain.Study, error) {
	study, err := s.studies.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update study: %w", err)
	}

	study.Title = strings.TrimSpace(in.Title)
	study.Description = strings.TrimSpace(in.Description)
	study.CoverImageURL = optionalURL(in.CoverImageURL)
	study.IsVisible = in.IsVisible
	study.UpdatedAt = s.now().UTC()
	if err := s.studies.Update(ctx, study); err != nil {
		return nil, fmt.Errorf("update study: %w", err)
	}

	s.activity.LogActivity(domain.ScopeAdmin, actorID, domain.ActivityStudyUpdated, study.ID)
	return study, nil
}

func (s *contentService) ListChapters(ctx context.Context, studyID string) ([]*domain.Chapter, error) {
	if _, err := s.studies.FindByID(ctx, studyID); err != nil {
		return nil, err
	}
	return s.chapters.ListByStudy(ctx, studyID)
}

// NextChapterNumber suggests the number for a new chapter: one past the
// highest existing number, or 1 for an empty study.
func (s *contentService) NextChapterNumber(ctx context.Context, studyID string) (int, error) {
	if _, err := s.studies.FindByID(ctx, studyID); err != nil {
		return 0, err
	}
	highest, err := s.chapters.MaxNumber(ctx, studyID)
	if err != nil {
		return 0, fmt.Errorf("next chapter number: %w", err)
	}
	return highest + 1, nil
}

func (s *contentService) CreateChapter(ctx context.Context, actorID, studyID string, in ports.ChapterInput) (*domain.Chapter, error) {
	if _, err := s.studies.FindByID(ctx, studyID); err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}

	chapter := &domain.Chapter{StudyID: studyID}
	applyChapterInput(chapter, in)
	created, err := s.chapters.Create(ctx, chapter)
	if err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}

	s.activity.LogActivity(domain.ScopeAdmin, actorID, domain.ActivityChapterCreated, created.ID)
	s.log.Info().Str("actor_id", actorID).Str("chapter_id", created.ID).Msg("chapter created")
	return created, nil
}

func (s *contentService) UpdateChapter(ctx context.Context, actorID, id string, in ports.ChapterInput) (*domain.Chapter, error) {
	chapter, err := s.chapters.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update chapter: %w", err)
	}

	applyChapterInput(chapter, in)
	if err := s.chapters.Update(ctx, chapter); err != nil {
		return nil, fmt.Errorf("update chapter: %w", err)
	}

	s.activity.LogActivity(domain.ScopeAdmin, actorID, domain.ActivityChapterUpdated, chapter.ID)
	return chapter, nil
}

func (s *contentService) AuthorizeEmail(ctx context.Context, actorID, email string) (*domain.AuthorizedEmail, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	added, err := s.allowList.Add(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("authorize email: %w", err)
	}

	s.activity.LogActivity(domain.ScopeAdmin, actorID, domain.ActivityAuthorizedUserAdded, email)
	return added, nil
}

func applyChapterInput(c *domain.Chapter, in ports.ChapterInput) {
	c.ChapterNumber = in.ChapterNumber
	c.Title = strings.TrimSpace(in.Title)
	c.BibleText = strings.TrimSpace(in.BibleText)
	c.Explanation = strings.TrimSpace(in.Explanation)
	c.Application = strings.TrimSpace(in.Application)
	c.AudioURL = optionalURL(in.AudioURL)
}

// optionalURL stores an empty form field as null.
func optionalURL(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
