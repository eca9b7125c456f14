package ports

import (
	"context"
	"time"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// UserReader looks accounts up by id.
type UserReader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthRepository defines the interface for user authentication persistence.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update rewrites email, password hash and metadata of an existing account.
	// It returns domain.ErrUserExists when the new email is taken.
	Update(ctx context.Context, user *domain.User) error
}

// AuthorizedEmailRepository holds the sign-up allow-list.
type AuthorizedEmailRepository interface {
	IsAuthorized(ctx context.Context, email string) (bool, error)
	// Add returns domain.ErrAlreadyAuthorized for a duplicate address.
	Add(ctx context.Context, email string) (*domain.AuthorizedEmail, error)
}

// RefreshTokenStore keeps refresh tokens until they expire or are revoked.
type RefreshTokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume returns the owner of token and deletes it. Unknown or expired
	// tokens yield domain.ErrInvalidToken.
	Consume(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}
