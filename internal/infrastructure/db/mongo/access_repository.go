package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

const (
	adminCollection      = "admin_users"
	authorizedCollection = "authorized_users"
)

// AdminRepository reads the admin allow-list.
type AdminRepository struct {
	col *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{col: db.Collection(adminCollection)}
}

type mongoAdmin struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID string             `bson:"user_id"`
}

func (r *AdminRepository) FindByUserID(ctx context.Context, userID string) (*domain.AdminMembership, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAdmin
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &domain.AdminMembership{ID: doc.ID.Hex(), UserID: doc.UserID}, nil
}

// Grant adds userID to the allow-list. Granting twice is a no-op.
func (r *AdminRepository) Grant(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": bson.M{"user_id": userID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// AuthorizedEmailRepository holds the sign-up allow-list.
type AuthorizedEmailRepository struct {
	col *mongo.Collection
}

func NewAuthorizedEmailRepository(db *mongo.Database) *AuthorizedEmailRepository {
	return &AuthorizedEmailRepository{col: db.Collection(authorizedCollection)}
}

type mongoAuthorized struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *AuthorizedEmailRepository) IsAuthorized(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check authorized email: %w", err)
	}
	return n > 0, nil
}

func (r *AuthorizedEmailRepository) Add(ctx context.Context, email string) (*domain.AuthorizedEmail, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAuthorized{ID: primitive.NewObjectID(), Email: email, CreatedAt: time.Now().UTC()}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyAuthorized
		}
		return nil, fmt.Errorf("insert authorized email: %w", err)
	}
	return &domain.AuthorizedEmail{ID: doc.ID.Hex(), Email: doc.Email, CreatedAt: doc.CreatedAt}, nil
}

func (r *AuthorizedEmailRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
