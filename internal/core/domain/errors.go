package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrSignupNotAllowed   = errors.New("email is not authorized to sign up")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")

	ErrProfileNotFound    = errors.New("profile not found")
	ErrMembershipNotFound = errors.New("admin membership not found")
	ErrAlreadyAuthorized  = errors.New("email already authorized")

	ErrStudyNotFound   = errors.New("study not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrNoChapters      = errors.New("study has no chapters")
	ErrAlreadyAcquired = errors.New("study already acquired")
	ErrNotAcquired     = errors.New("study not acquired")
)
