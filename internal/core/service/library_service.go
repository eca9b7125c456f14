package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

type libraryService struct {
	studies  ports.StudyRepository
	chapters ports.ChapterRepository
	progress ports.ProgressRepository
	profiles ports.ProfileRepository
	users    ports.UserReader
	activity ports.ActivityLogger
	log      zerolog.Logger
	now      func() time.Time
}

// NewLibraryService returns a LibraryService implementation.
func NewLibraryService(
	studies ports.StudyRepository,
	chapters ports.ChapterRepository,
	progress ports.ProgressRepository,
	profiles ports.ProfileRepository,
	users ports.UserReader,
	activity ports.ActivityLogger,
	log zerolog.Logger,
) ports.LibraryService {
	return &libraryService{
		studies:  studies,
		chapters: chapters,
		progress: progress,
		profiles: profiles,
		users:    users,
		activity: activity,
		log:      log,
		now:      time.Now,
	}
}

func (s *libraryService) Discover(ctx context.Context, userID string) ([]*domain.Study, error) {
	visible, err := s.studies.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if userID == "" {
		return visible, nil
	}

	acquired := map[string]bool{}
	rows, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("progress lookup failed, listing all visible studies")
	}
	for _, p := range rows {
		acquired[p.StudyID] = true
	}

	out := make([]*domain.Study, 0, len(visible))
	for _, st := range visible {
		if !acquired[st.ID] {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *libraryService) Library(ctx context.Context, userID string) ([]domain.StudyProgress, error) {
	rows, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}
	if len(rows) == 0 {
		return []domain.StudyProgress{}, nil
	}

	completed := map[string]int{}
	acquired := map[string]bool{}
	for _, p := range rows {
		acquired[p.StudyID] = true
		if p.CompletedAt != nil {
			completed[p.StudyID]++
		}
	}

	visible, err := s.studies.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}
	chapters, err := s.chapters.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}
	totals := map[string]int{}
	for _, c := range chapters {
		totals[c.StudyID]++
	}

	out := make([]domain.StudyProgress, 0, len(acquired))
	for _, st := range visible {
		if !acquired[st.ID] {
			continue
		}
		out = append(out, domain.StudyProgress{
			Study:              *st,
			CompletedChapters:  completed[st.ID],
			TotalChapters:      totals[st.ID],
			ProgressPercentage: domain.ProgressPercentage(completed[st.ID], totals[st.ID]),
		})
	}
	return out, nil
}

// Acquire adds a study to the user's library by opening its first chapter.
func (s *libraryService) Acquire(ctx context.Context, userID, studyID string) (*domain.Progress, error) {
	study, err := s.studies.FindByID(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}
	if !study.IsVisible {
		return nil, fmt.Errorf("acquire: %w", domain.ErrStudyNotFound)
	}

	first, err := s.chapters.First(ctx, studyID)
	if errors.Is(err, domain.ErrChapterNotFound) {
		return nil, domain.ErrNoChapters
	}
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}

	p := &domain.Progress{
		UserID:    userID,
		StudyID:   studyID,
		ChapterID: first.ID,
	}
	if err := s.progress.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}

	s.activity.LogActivity(domain.ScopeUser, userID, domain.ActivityStudyAcquired, study.Title)
	s.log.Info().Str("user_id", userID).Str("study_id", studyID).Msg("study acquired")
	return p, nil
}

// CompleteChapter marks a chapter of an acquired study as finished.
func (s *libraryService) CompleteChapter(ctx context.Context, userID, chapterID, notes string) (*domain.Progress, error) {
	chapter, err := s.chapters.FindByID(ctx, chapterID)
	if err != nil {
		return nil, fmt.Errorf("complete chapter: %w", err)
	}

	rows, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("complete chapter: %w", err)
	}
	owned := false
	var previous *domain.Progress
	for _, p := range rows {
		if p.StudyID == chapter.StudyID {
			owned = true
		}
		if p.ChapterID == chapter.ID {
			previous = p
		}
	}
	if !owned {
		return nil, domain.ErrNotAcquired
	}

	completedAt := s.now().UTC()
	notes = strings.TrimSpace(notes)
	p := &domain.Progress{
		UserID:      userID,
		StudyID:     chapter.StudyID,
		ChapterID:   chapter.ID,
		Notes:       notes,
		CompletedAt: &completedAt,
	}
	if err := s.progress.MarkCompleted(ctx, p); err != nil {
		return nil, fmt.Errorf("complete chapter: %w", err)
	}

	// A chapter counts as one journal entry however often its notes change.
	if notes != "" && (previous == nil || previous.Notes == "") {
		update := ports.ProfileUpdate{JournalEntriesDelta: 1, Seed: identitySeed(ctx, s.users, s.log, userID)}
		if err := s.profiles.Upsert(ctx, userID, update); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to count journal entry")
		}
	}
	s.activity.LogActivity(domain.ScopeUser, userID, domain.ActivityChapterCompleted, chapter.Title)
	return p, nil
}
