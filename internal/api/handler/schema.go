package handler

import (
	"encoding/json"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type signUpRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// updateUserRequest changes credentials. At least one field must be set.
type updateUserRequest struct {
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

type signUpResponse struct {
	User *domain.User `json:"user"`
}

// --- Profile ---

type updateNameRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

type onboardingRequest struct {
	Answers map[string]json.RawMessage `json:"answers" validate:"required"`
}

// --- Library ---

type completeChapterRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

// --- Admin ---

type studyRequest struct {
	Title         string `json:"title"           validate:"required,max=200"`
	Description   string `json:"description"     validate:"required"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
	IsVisible     bool   `json:"is_visible"`
}

func (r studyRequest) toInput() ports.StudyInput {
	return ports.StudyInput{
		Title:         r.Title,
		Description:   r.Description,
		CoverImageURL: r.CoverImageURL,
		IsVisible:     r.IsVisible,
	}
}

type chapterRequest struct {
	ChapterNumber int    `json:"chapter_number" validate:"required,gte=1"`
	Title         string `json:"title"          validate:"required,max=200"`
	BibleText     string `json:"bible_text"     validate:"required"`
	Explanation   string `json:"explanation"    validate:"required"`
	Application   string `json:"application"    validate:"required"`
	AudioURL      string `json:"audio_url"      validate:"omitempty,url"`
}

func (r chapterRequest) toInput() ports.ChapterInput {
	return ports.ChapterInput{
		ChapterNumber: r.ChapterNumber,
		Title:         r.Title,
		BibleText:     r.BibleText,
		Explanation:   r.Explanation,
		Application:   r.Application,
		AudioURL:      r.AudioURL,
	}
}

type authorizeUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type nextChapterNumberResponse struct {
	NextChapterNumber int `json:"next_chapter_number"`
}
