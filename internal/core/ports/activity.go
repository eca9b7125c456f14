package ports

import (
	"context"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// ActivityRepository persists audit log lines.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.Activity) error
}

// ActivityLogger records audit lines without blocking or failing the caller.
type ActivityLogger interface {
	LogActivity(scope domain.ActivityScope, actorID string, kind domain.ActivityKind, detail string)
}
