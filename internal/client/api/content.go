package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

// StudyPayload is the body of the admin study create and update calls.
type StudyPayload struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	IsVisible     bool   `json:"is_visible"`
}

// ChapterPayload is the body of the admin chapter create and update calls.
type ChapterPayload struct {
	ChapterNumber int    `json:"chapter_number"`
	Title         string `json:"title"`
	BibleText     string `json:"bible_text"`
	Explanation   string `json:"explanation"`
	Application   string `json:"application"`
	AudioURL      string `json:"audio_url,omitempty"`
}

func escape(id string) string { return url.PathEscape(id) }

// Discover lists visible studies. An empty token lists every visible study.
func (c *Client) Discover(ctx context.Context, token string) ([]domain.Study, error) {
	var out []domain.Study
	err := c.do(ctx, http.MethodGet, "/v1/studies", token, nil, &out)
	return out, err
}

func (c *Client) Library(ctx context.Context, token string) ([]domain.StudyProgress, error) {
	var out []domain.StudyProgress
	err := c.do(ctx, http.MethodGet, "/v1/library", token, nil, &out)
	return out, err
}

func (c *Client) Acquire(ctx context.Context, token, studyID string) (*domain.Progress, error) {
	var out domain.Progress
	if err := c.do(ctx, http.MethodPost, "/v1/studies/"+escape(studyID)+"/acquire", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CompleteChapter(ctx context.Context, token, chapterID, notes string) (*domain.Progress, error) {
	body := struct {
		Notes string `json:"notes"`
	}{Notes: notes}
	var out domain.Progress
	if err := c.do(ctx, http.MethodPost, "/v1/chapters/"+escape(chapterID)+"/complete", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CompleteOnboarding(ctx context.Context, token string, answers map[string]any) error {
	body := struct {
		Answers map[string]any `json:"answers"`
	}{Answers: answers}
	return c.do(ctx, http.MethodPost, "/v1/onboarding", token, body, nil)
}

func (c *Client) PersonalData(ctx context.Context, token string) (*ports.PersonalData, error) {
	var out ports.PersonalData
	if err := c.do(ctx, http.MethodGet, "/v1/personal-data", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateName(ctx context.Context, token, firstName, lastName string) error {
	body := struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}{FirstName: firstName, LastName: lastName}
	return c.do(ctx, http.MethodPut, "/v1/profile", token, body, nil)
}

// --- Admin console ---

func (c *Client) ListStudies(ctx context.Context, token string) ([]domain.Study, error) {
	var out []domain.Study
	err := c.do(ctx, http.MethodGet, "/v1/admin/studies", token, nil, &out)
	return out, err
}

func (c *Client) CreateStudy(ctx context.Context, token string, in StudyPayload) (*domain.Study, error) {
	var out domain.Study
	if err := c.do(ctx, http.MethodPost, "/v1/admin/studies", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStudy(ctx context.Context, token, id string, in StudyPayload) (*domain.Study, error) {
	var out domain.Study
	if err := c.do(ctx, http.MethodPut, "/v1/admin/studies/"+escape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListChapters(ctx context.Context, token, studyID string) ([]domain.Chapter, error) {
	var out []domain.Chapter
	err := c.do(ctx, http.MethodGet, "/v1/admin/studies/"+escape(studyID)+"/chapters", token, nil, &out)
	return out, err
}

func (c *Client) NextChapterNumber(ctx context.Context, token, studyID string) (int, error) {
	var out struct {
		NextChapterNumber int `json:"next_chapter_number"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/admin/studies/"+escape(studyID)+"/chapters/next-number", token, nil, &out)
	return out.NextChapterNumber, err
}

func (c *Client) CreateChapter(ctx context.Context, token, studyID string, in ChapterPayload) (*domain.Chapter, error) {
	var out domain.Chapter
	if err := c.do(ctx, http.MethodPost, "/v1/admin/studies/"+escape(studyID)+"/chapters", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateChapter(ctx context.Context, token, id string, in ChapterPayload) (*domain.Chapter, error) {
	var out domain.Chapter
	if err := c.do(ctx, http.MethodPut, "/v1/admin/chapters/"+escape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AuthorizeUser(ctx context.Context, token, email string) (*domain.AuthorizedEmail, error) {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	var out domain.AuthorizedEmail
	if err := c.do(ctx, http.MethodPost, "/v1/admin/authorized-users", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
