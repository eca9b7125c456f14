package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

const profileCollection = "profiles"

// ProfileRepository stores one document per user, keyed by user id.
type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(profileCollection)}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.ProfileRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec domain.ProfileRecord
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &rec, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, userID string, u ports.ProfileUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, profileUpdateDoc(u, time.Now().UTC()), options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// profileUpdateDoc builds the $set/$inc document for u. Only non-nil
// fields are written. Seed columns go to $setOnInsert unless $set already
// writes them; Mongo rejects a path present in both.
func profileUpdateDoc(u ports.ProfileUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.FirstName != nil {
		set["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		set["last_name"] = *u.LastName
	}
	if u.OnboardingCompleted != nil {
		set["onboarding_completed"] = *u.OnboardingCompleted
	}
	if u.QuizResponses != nil {
		set["quiz_responses"] = *u.QuizResponses
	}
	if u.Preferences != nil {
		set["preferences"] = *u.Preferences
	}

	doc := bson.M{"$set": set}
	if u.JournalEntriesDelta != 0 {
		doc["$inc"] = bson.M{"total_journal_entries": u.JournalEntriesDelta}
	}
	if u.Seed != nil {
		onInsert := bson.M{}
		for field, v := range map[string]string{
			"first_name": u.Seed.FirstName,
			"last_name":  u.Seed.LastName,
			"avatar_url": u.Seed.AvatarURL,
		} {
			if _, ok := set[field]; !ok && v != "" {
				onInsert[field] = v
			}
		}
		if len(onInsert) > 0 {
			doc["$setOnInsert"] = onInsert
		}
	}
	return doc
}
