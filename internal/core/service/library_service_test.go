package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubStudyRepo struct {
	byID    map[string]*domain.Study
	order   []string
	listErr error
}

func newStubStudyRepo(studies ...*domain.Study) *stubStudyRepo {
	r := &stubStudyRepo{byID: map[string]*domain.Study{}}
	for _, s := range studies {
		r.byID[s.ID] = s
		r.order = append(r.order, s.ID)
	}
	return r
}

func (r *stubStudyRepo) Create(_ context.Context, s *domain.Study) (*domain.Study, error) {
	c := *s
	c.ID = fmt.Sprintf("study-%d", len(r.order)+1)
	r.byID[c.ID] = &c
	r.order = append(r.order, c.ID)
	out := c
	return &out, nil
}

func (r *stubStudyRepo) Update(_ context.Context, s *domain.Study) error {
	if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrStudyNotFound
	}
	c := *s
	r.byID[s.ID] = &c
	return nil
}

func (r *stubStudyRepo) FindByID(_ context.Context, id string) (*domain.Study, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrStudyNotFound
	}
	c := *s
	return &c, nil
}

func (r *stubStudyRepo) List(_ context.Context, visibleOnly bool) ([]*domain.Study, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*domain.Study
	for _, id := range r.order {
		s := r.byID[id]
		if visibleOnly && !s.IsVisible {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	return out, nil
}

type stubChapterRepo struct {
	byID map[string]*domain.Chapter
	seq  int
}

func newStubChapterRepo(chapters ...*domain.Chapter) *stubChapterRepo {
	r := &stubChapterRepo{byID: map[string]*domain.Chapter{}}
	for _, c := range chapters {
		r.byID[c.ID] = c
	}
	return r
}

func (r *stubChapterRepo) Create(_ context.Context, c *domain.Chapter) (*domain.Chapter, error) {
	r.seq++
	cp := *c
	cp.ID = fmt.Sprintf("chapter-new-%d", r.seq)
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubChapterRepo) Update(_ context.Context, c *domain.Chapter) error {
	if _, ok := r.byID[c.ID]; !ok {
		return domain.ErrChapterNotFound
	}
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *stubChapterRepo) FindByID(_ context.Context, id string) (*domain.Chapter, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrChapterNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubChapterRepo) ListByStudy(_ context.Context, studyID string) ([]*domain.Chapter, error) {
	var out []*domain.Chapter
	for _, c := range r.byID {
		if c.StudyID == studyID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChapterNumber < out[j].ChapterNumber })
	return out, nil
}

func (r *stubChapterRepo) ListAll(_ context.Context) ([]*domain.Chapter, error) {
	var out []*domain.Chapter
	for _, c := range r.byID {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *stubChapterRepo) First(ctx context.Context, studyID string) (*domain.Chapter, error) {
	list, _ := r.ListByStudy(ctx, studyID)
	if len(list) == 0 {
		return nil, domain.ErrChapterNotFound
	}
	return list[0], nil
}

func (r *stubChapterRepo) MaxNumber(ctx context.Context, studyID string) (int, error) {
	list, _ := r.ListByStudy(ctx, studyID)
	if len(list) == 0 {
		return 0, nil
	}
	return list[len(list)-1].ChapterNumber, nil
}

type stubProgressRepo struct {
	rows    []*domain.Progress
	listErr error
}

func (r *stubProgressRepo) Insert(_ context.Context, p *domain.Progress) error {
	for _, row := range r.rows {
		if row.UserID == p.UserID && row.ChapterID == p.ChapterID {
			return domain.ErrAlreadyAcquired
		}
	}
	p.ID = fmt.Sprintf("progress-%d", len(r.rows)+1)
	cp := *p
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *stubProgressRepo) ListByUser(_ context.Context, userID string) ([]*domain.Progress, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*domain.Progress
	for _, row := range r.rows {
		if row.UserID == userID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubProgressRepo) MarkCompleted(_ context.Context, p *domain.Progress) error {
	for _, row := range r.rows {
		if row.UserID == p.UserID && row.ChapterID == p.ChapterID {
			row.Notes = p.Notes
			row.CompletedAt = p.CompletedAt
			return nil
		}
	}
	cp := *p
	r.rows = append(r.rows, &cp)
	return nil
}

type stubProfileRepo struct {
	rows      map[string]*domain.ProfileRecord
	updates   []ports.ProfileUpdate
	findErr   error
	upsertErr error
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{rows: map[string]*domain.ProfileRecord{}}
}

func (r *stubProfileRepo) FindByUserID(_ context.Context, userID string) (*domain.ProfileRecord, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	row, ok := r.rows[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *stubProfileRepo) Upsert(_ context.Context, userID string, u ports.ProfileUpdate) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.updates = append(r.updates, u)
	row, ok := r.rows[userID]
	if !ok {
		row = &domain.ProfileRecord{ID: userID}
		if u.Seed != nil {
			row.FirstName = nonEmpty(u.Seed.FirstName)
			row.LastName = nonEmpty(u.Seed.LastName)
			row.AvatarURL = nonEmpty(u.Seed.AvatarURL)
		}
		r.rows[userID] = row
	}
	if u.FirstName != nil {
		row.FirstName = u.FirstName
	}
	if u.LastName != nil {
		row.LastName = u.LastName
	}
	if u.OnboardingCompleted != nil {
		row.OnboardingCompleted = u.OnboardingCompleted
	}
	if u.QuizResponses != nil {
		row.QuizResponses = u.QuizResponses
	}
	if u.Preferences != nil {
		row.Preferences = u.Preferences
	}
	if u.JournalEntriesDelta != 0 {
		n := u.JournalEntriesDelta
		if row.TotalJournalEntries != nil {
			n += *row.TotalJournalEntries
		}
		row.TotalJournalEntries = &n
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type recordedActivity struct {
	Scope   domain.ActivityScope
	ActorID string
	Kind    domain.ActivityKind
	Detail  string
}

type stubActivity struct {
	mu    sync.Mutex
	lines []recordedActivity
}

func (a *stubActivity) LogActivity(scope domain.ActivityScope, actorID string, kind domain.ActivityKind, detail string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lines = append(a.lines, recordedActivity{scope, actorID, kind, detail})
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type libraryFixture struct {
	svc      ports.LibraryService
	studies  *stubStudyRepo
	chapters *stubChapterRepo
	progress *stubProgressRepo
	profiles *stubProfileRepo
	users    *stubAuthRepo
	activity *stubActivity
}

func newLibraryFixture() *libraryFixture {
	f := &libraryFixture{
		studies: newStubStudyRepo(
			&domain.Study{ID: "genesis", Title: "Gênesis", IsVisible: true},
			&domain.Study{ID: "psalms", Title: "Salmos", IsVisible: true},
			&domain.Study{ID: "draft", Title: "Rascunho", IsVisible: false},
			&domain.Study{ID: "empty", Title: "Sem capítulos", IsVisible: true},
		),
		chapters: newStubChapterRepo(
			&domain.Chapter{ID: "g2", StudyID: "genesis", ChapterNumber: 2, Title: "Jardim"},
			&domain.Chapter{ID: "g1", StudyID: "genesis", ChapterNumber: 1, Title: "Criação"},
			&domain.Chapter{ID: "g3", StudyID: "genesis", ChapterNumber: 3, Title: "Queda"},
			&domain.Chapter{ID: "g4", StudyID: "genesis", ChapterNumber: 4, Title: "Caim"},
			&domain.Chapter{ID: "p1", StudyID: "psalms", ChapterNumber: 1, Title: "Bem-aventurado"},
		),
		progress: &stubProgressRepo{},
		profiles: newStubProfileRepo(),
		activity: &stubActivity{},
	}
	f.users = newStubAuthRepo()
	f.users.users["u1@example.com"] = &domain.User{ID: "u1", Email: "u1@example.com", Metadata: domain.IdentityMetadata{FirstName: "Ana", LastName: "Silva"}}
	f.svc = NewLibraryService(f.studies, f.chapters, f.progress, f.profiles, f.users, f.activity, zerolog.Nop())
	return f
}

func ids(studies []*domain.Study) []string {
	out := make([]string, 0, len(studies))
	for _, s := range studies {
		out = append(out, s.ID)
	}
	return out
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestLibraryService_Acquire_Success(t *testing.T) {
	f := newLibraryFixture()

	p, err := f.svc.Acquire(context.Background(), "u1", "genesis")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if p.ChapterID != "g1" || p.CompletedAt != nil || p.Notes != "" {
		t.Fatalf("expected open first chapter row, got %+v", p)
	}
	if len(f.activity.lines) != 1 {
		t.Fatalf("expected one activity line, got %d", len(f.activity.lines))
	}
	got := f.activity.lines[0]
	if got.Scope != domain.ScopeUser || got.ActorID != "u1" || got.Kind != domain.ActivityStudyAcquired {
		t.Fatalf("unexpected activity: %+v", got)
	}
}

func TestLibraryService_Acquire_NoChapters(t *testing.T) {
	f := newLibraryFixture()

	if _, err := f.svc.Acquire(context.Background(), "u1", "empty"); !errors.Is(err, domain.ErrNoChapters) {
		t.Fatalf("expected ErrNoChapters, got %v", err)
	}
	if len(f.activity.lines) != 0 {
		t.Fatalf("no activity expected on failure")
	}
}

func TestLibraryService_Acquire_Duplicate(t *testing.T) {
	f := newLibraryFixture()

	if _, err := f.svc.Acquire(context.Background(), "u1", "genesis"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := f.svc.Acquire(context.Background(), "u1", "genesis"); !errors.Is(err, domain.ErrAlreadyAcquired) {
		t.Fatalf("expected ErrAlreadyAcquired, got %v", err)
	}
	if len(f.activity.lines) != 1 {
		t.Fatalf("expected a single activity line, got %d", len(f.activity.lines))
	}
}

func TestLibraryService_Acquire_HiddenOrMissing(t *testing.T) {
	f := newLibraryFixture()

	for _, id := range []string{"draft", "nope"} {
		if _, err := f.svc.Acquire(context.Background(), "u1", id); !errors.Is(err, domain.ErrStudyNotFound) {
			t.Fatalf("%s: expected ErrStudyNotFound, got %v", id, err)
		}
	}
}

func TestLibraryService_Discover(t *testing.T) {
	f := newLibraryFixture()
	_, _ = f.svc.Acquire(context.Background(), "u1", "genesis")

	anon, err := f.svc.Discover(context.Background(), "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if fmt.Sprint(ids(anon)) != "[genesis psalms empty]" {
		t.Fatalf("anonymous discover: %v", ids(anon))
	}

	mine, err := f.svc.Discover(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if fmt.Sprint(ids(mine)) != "[psalms empty]" {
		t.Fatalf("user discover: %v", ids(mine))
	}
}

func TestLibraryService_Discover_ProgressErrorListsAll(t *testing.T) {
	f := newLibraryFixture()
	f.progress.listErr = errors.New("timeout")

	got, err := f.svc.Discover(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected every visible study, got %v", ids(got))
	}
}

func TestLibraryService_Library_Progress(t *testing.T) {
	f := newLibraryFixture()
	ctx := context.Background()
	_, _ = f.svc.Acquire(ctx, "u1", "genesis")
	_, _ = f.svc.Acquire(ctx, "u1", "psalms")
	if _, err := f.svc.CompleteChapter(ctx, "u1", "g1", ""); err != nil {
		t.Fatalf("complete g1: %v", err)
	}

	lib, err := f.svc.Library(ctx, "u1")
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	if len(lib) != 2 {
		t.Fatalf("expected two studies, got %d", len(lib))
	}
	g := lib[0]
	if g.ID != "genesis" || g.CompletedChapters != 1 || g.TotalChapters != 4 || g.ProgressPercentage != 25 {
		t.Fatalf("unexpected genesis progress: %+v", g)
	}
	if lib[1].ProgressPercentage != 0 {
		t.Fatalf("expected 0%% for psalms, got %v", lib[1].ProgressPercentage)
	}
}

func TestLibraryService_Library_Empty(t *testing.T) {
	f := newLibraryFixture()

	lib, err := f.svc.Library(context.Background(), "nobody")
	if err != nil || lib == nil || len(lib) != 0 {
		t.Fatalf("expected empty non-nil library, got %v / %v", lib, err)
	}
}

func TestLibraryService_CompleteChapter_CountsJournal(t *testing.T) {
	f := newLibraryFixture()
	ctx := context.Background()
	_, _ = f.svc.Acquire(ctx, "u1", "genesis")

	p, err := f.svc.CompleteChapter(ctx, "u1", "g2", "  Deus descansou  ")
	if err != nil {
		t.Fatalf("CompleteChapter: %v", err)
	}
	if p.CompletedAt == nil || p.Notes != "Deus descansou" {
		t.Fatalf("unexpected progress: %+v", p)
	}
	row := f.profiles.rows["u1"]
	if row == nil || row.TotalJournalEntries == nil || *row.TotalJournalEntries != 1 {
		t.Fatalf("expected journal counter 1, got %+v", row)
	}

	if _, err := f.svc.CompleteChapter(ctx, "u1", "g3", ""); err != nil {
		t.Fatalf("CompleteChapter: %v", err)
	}
	if *f.profiles.rows["u1"].TotalJournalEntries != 1 {
		t.Fatalf("empty notes must not count as a journal entry")
	}
}

func TestLibraryService_CompleteChapter_EditedNotesCountOnce(t *testing.T) {
	f := newLibraryFixture()
	ctx := context.Background()
	_, _ = f.svc.Acquire(ctx, "u1", "genesis")

	for _, notes := range []string{"primeira", "revisada", "final"} {
		if _, err := f.svc.CompleteChapter(ctx, "u1", "g1", notes); err != nil {
			t.Fatalf("CompleteChapter: %v", err)
		}
	}
	if got := *f.profiles.rows["u1"].TotalJournalEntries; got != 1 {
		t.Fatalf("expected one journal entry for one chapter, got %d", got)
	}
}

func TestLibraryService_CompleteChapter_FirstNoteKeepsSignUpName(t *testing.T) {
	f := newLibraryFixture()
	ctx := context.Background()
	_, _ = f.svc.Acquire(ctx, "u1", "genesis")

	if _, err := f.svc.CompleteChapter(ctx, "u1", "g1", "nota"); err != nil {
		t.Fatalf("CompleteChapter: %v", err)
	}
	row := f.profiles.rows["u1"]
	if got := domain.ProfileFromRecord(*row).FullName; got != "Ana Silva" {
		t.Fatalf("new profile row lost the sign-up name, got %q", got)
	}
}

func TestLibraryService_CompleteChapter_JournalFailureIsNotFatal(t *testing.T) {
	f := newLibraryFixture()
	ctx := context.Background()
	_, _ = f.svc.Acquire(ctx, "u1", "genesis")
	f.profiles.upsertErr = errors.New("write conflict")

	if _, err := f.svc.CompleteChapter(ctx, "u1", "g1", "nota"); err != nil {
		t.Fatalf("expected success despite counter failure, got %v", err)
	}
}

func TestLibraryService_CompleteChapter_NotAcquired(t *testing.T) {
	f := newLibraryFixture()

	if _, err := f.svc.CompleteChapter(context.Background(), "u1", "p1", ""); !errors.Is(err, domain.ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
	if _, err := f.svc.CompleteChapter(context.Background(), "u1", "zz", ""); !errors.Is(err, domain.ErrChapterNotFound) {
		t.Fatalf("expected ErrChapterNotFound, got %v", err)
	}
}
