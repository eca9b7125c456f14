package domain

import "time"

// Study is a titled series of chapters.
type Study struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CoverImageURL *string   `json:"cover_image_url"`
	IsVisible     bool      `json:"is_visible"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Chapter is one ordered unit of a study.
type Chapter struct {
	ID            string  `json:"id"`
	StudyID       string  `json:"study_id"`
	ChapterNumber int     `json:"chapter_number"`
	Title         string  `json:"title"`
	BibleText     string  `json:"bible_text"`
	Explanation   string  `json:"explanation"`
	Application   string  `json:"application"`
	AudioURL      *string `json:"audio_url"`
}

// Progress records that a user acquired a study (first row) or worked through
// a chapter. CompletedAt is nil until the chapter is finished.
type Progress struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	StudyID     string     `json:"study_id"`
	ChapterID   string     `json:"chapter_id"`
	Notes       string     `json:"notes"`
	CompletedAt *time.Time `json:"completed_at"`
}

// StudyProgress is a study in the user's library.
type StudyProgress struct {
	Study
	CompletedChapters  int     `json:"completed_chapters"`
	TotalChapters      int     `json:"total_chapters"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// ProgressPercentage returns completed/total as a percentage, or 0 for a
// study without chapters.
func ProgressPercentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
