package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

// AdminGranter grants admin membership to an existing account.
type AdminGranter interface {
	Grant(ctx context.Context, userID string) error
}

// BootstrapAdmin allow-lists email for sign-up and, when the account already
// exists, grants it admin membership. An empty email is a no-op.
func BootstrapAdmin(
	ctx context.Context,
	email string,
	allowList ports.AuthorizedEmailRepository,
	users ports.AuthRepository,
	admins AdminGranter,
	log zerolog.Logger,
) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	if _, err := allowList.Add(ctx, email); err != nil && !errors.Is(err, domain.ErrAlreadyAuthorized) {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	user, err := users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		log.Info().Str("email", email).Msg("bootstrap admin allow-listed, awaiting sign-up")
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	if err := admins.Grant(ctx, user.ID); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	log.Info().Str("email", email).Str("user_id", user.ID).Msg("bootstrap admin granted")
	return nil
}
