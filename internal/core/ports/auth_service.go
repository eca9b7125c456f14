package ports

import (
	"context"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// SignUpInput carries the fields collected by the sign-up form.
type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserUpdate changes the account's credentials. Nil fields are kept.
type UserUpdate struct {
	Email    *string
	Password *string
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	UpdateUser(ctx context.Context, userID string, in UserUpdate) (*domain.User, error)
}
