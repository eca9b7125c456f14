package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// ActivityRepository writes audit lines to user_activity_logs or
// admin_activity_logs depending on their scope.
type ActivityRepository struct {
	db *mongo.Database
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func activityCollection(scope domain.ActivityScope) string {
	if scope == domain.ScopeAdmin {
		return "admin_activity_logs"
	}
	return "user_activity_logs"
}

func (r *ActivityRepository) Insert(ctx context.Context, a *domain.Activity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	doc := bson.M{
		"actor_id":   a.ActorID,
		"kind":       string(a.Kind),
		"detail":     a.Detail,
		"created_at": createdAt.UTC(),
	}

	if _, err := r.db.Collection(activityCollection(a.Scope)).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}
