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
	studyCollection    = "studies"
	chapterCollection  = "chapters"
	progressCollection = "user_progress"
)

// StudyRepository implements ports.StudyRepository.
type StudyRepository struct {
	col *mongo.Collection
}

func NewStudyRepository(db *mongo.Database) *StudyRepository {
	return &StudyRepository{col: db.Collection(studyCollection)}
}

type mongoStudy struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	CoverImageURL *string            `bson:"cover_image_url"`
	IsVisible     bool               `bson:"is_visible"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d mongoStudy) toDomain() *domain.Study {
	return &domain.Study{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		CoverImageURL: d.CoverImageURL,
		IsVisible:     d.IsVisible,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (r *StudyRepository) Create(ctx context.Context, s *domain.Study) (*domain.Study, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoStudy{
		ID:            primitive.NewObjectID(),
		Title:         s.Title,
		Description:   s.Description,
		CoverImageURL: s.CoverImageURL,
		IsVisible:     s.IsVisible,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert study: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *StudyRepository) Update(ctx context.Context, s *domain.Study) error {
	oid, err := objectID(s.ID)
	if err != nil {
		return domain.ErrStudyNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":           s.Title,
		"description":     s.Description,
		"cover_image_url": s.CoverImageURL,
		"is_visible":      s.IsVisible,
		"updated_at":      s.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update study: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStudyNotFound
	}
	return nil
}

func (r *StudyRepository) FindByID(ctx context.Context, id string) (*domain.Study, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrStudyNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoStudy
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStudyNotFound
		}
		return nil, fmt.Errorf("find study: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns studies newest first.
func (r *StudyRepository) List(ctx context.Context, visibleOnly bool) ([]*domain.Study, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if visibleOnly {
		filter["is_visible"] = true
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list studies: %w", err)
	}

	var docs []mongoStudy
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list studies: %w", err)
	}
	out := make([]*domain.Study, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *StudyRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "is_visible", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

// ChapterRepository implements ports.ChapterRepository.
type ChapterRepository struct {
	col *mongo.Collection
}

func NewChapterRepository(db *mongo.Database) *ChapterRepository {
	return &ChapterRepository{col: db.Collection(chapterCollection)}
}

type mongoChapter struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	StudyID       string             `bson:"study_id"`
	ChapterNumber int                `bson:"chapter_number"`
	Title         string             `bson:"title"`
	BibleText     string             `bson:"bible_text"`
	Explanation   string             `bson:"explanation"`
	Application   string             `bson:"application"`
	AudioURL      *string            `bson:"audio_url"`
}

func (d mongoChapter) toDomain() *domain.Chapter {
	return &domain.Chapter{
		ID:            d.ID.Hex(),
		StudyID:       d.StudyID,
		ChapterNumber: d.ChapterNumber,
		Title:         d.Title,
		BibleText:     d.BibleText,
		Explanation:   d.Explanation,
		Application:   d.Application,
		AudioURL:      d.AudioURL,
	}
}

var byChapterNumber = bson.D{{Key: "chapter_number", Value: 1}}

func (r *ChapterRepository) Create(ctx context.Context, c *domain.Chapter) (*domain.Chapter, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoChapter{
		ID:            primitive.NewObjectID(),
		StudyID:       c.StudyID,
		ChapterNumber: c.ChapterNumber,
		Title:         c.Title,
		BibleText:     c.BibleText,
		Explanation:   c.Explanation,
		Application:   c.Application,
		AudioURL:      c.AudioURL,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert chapter: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ChapterRepository) Update(ctx context.Context, c *domain.Chapter) error {
	oid, err := objectID(c.ID)
	if err != nil {
		return domain.ErrChapterNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"chapter_number": c.ChapterNumber,
		"title":          c.Title,
		"bible_text":     c.BibleText,
		"explanation":    c.Explanation,
		"application":    c.Application,
		"audio_url":      c.AudioURL,
	}})
	if err != nil {
		return fmt.Errorf("update chapter: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrChapterNotFound
	}
	return nil
}

func (r *ChapterRepository) FindByID(ctx context.Context, id string) (*domain.Chapter, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrChapterNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

func (r *ChapterRepository) First(ctx context.Context, studyID string) (*domain.Chapter, error) {
	return r.findOne(ctx, bson.M{"study_id": studyID}, options.FindOne().SetSort(byChapterNumber))
}

func (r *ChapterRepository) MaxNumber(ctx context.Context, studyID string) (int, error) {
	last, err := r.findOne(ctx, bson.M{"study_id": studyID},
		options.FindOne().SetSort(bson.D{{Key: "chapter_number", Value: -1}}))
	if errors.Is(err, domain.ErrChapterNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return last.ChapterNumber, nil
}

func (r *ChapterRepository) ListByStudy(ctx context.Context, studyID string) ([]*domain.Chapter, error) {
	return r.find(ctx, bson.M{"study_id": studyID})
}

func (r *ChapterRepository) ListAll(ctx context.Context) ([]*domain.Chapter, error) {
	return r.find(ctx, bson.M{})
}

func (r *ChapterRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Chapter, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if opts == nil {
		opts = options.FindOne()
	}
	var doc mongoChapter
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChapterNotFound
		}
		return nil, fmt.Errorf("find chapter: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ChapterRepository) find(ctx context.Context, filter bson.M) ([]*domain.Chapter, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "study_id", Value: 1}, {Key: "chapter_number", Value: 1},
	}))
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	var docs []mongoChapter
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	out := make([]*domain.Chapter, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ChapterRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "study_id", Value: 1}, {Key: "chapter_number", Value: 1}},
	})
	return err
}

// ProgressRepository implements ports.ProgressRepository.
type ProgressRepository struct {
	col *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{col: db.Collection(progressCollection)}
}

type mongoProgress struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	StudyID     string             `bson:"study_id"`
	ChapterID   string             `bson:"chapter_id"`
	Notes       string             `bson:"notes"`
	CompletedAt *time.Time         `bson:"completed_at"`
}

func (r *ProgressRepository) Insert(ctx context.Context, p *domain.Progress) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoProgress{
		ID:          primitive.NewObjectID(),
		UserID:      p.UserID,
		StudyID:     p.StudyID,
		ChapterID:   p.ChapterID,
		Notes:       p.Notes,
		CompletedAt: p.CompletedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyAcquired
		}
		return fmt.Errorf("insert progress: %w", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Progress, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	var docs []mongoProgress
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	out := make([]*domain.Progress, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Progress{
			ID:          d.ID.Hex(),
			UserID:      d.UserID,
			StudyID:     d.StudyID,
			ChapterID:   d.ChapterID,
			Notes:       d.Notes,
			CompletedAt: d.CompletedAt,
		})
	}
	return out, nil
}

func (r *ProgressRepository) MarkCompleted(ctx context.Context, p *domain.Progress) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": p.UserID, "chapter_id": p.ChapterID}
	update := bson.M{
		"$set": bson.M{"notes": p.Notes, "completed_at": p.CompletedAt},
		"$setOnInsert": bson.M{"study_id": p.StudyID},
	}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("complete chapter: %w", err)
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

// EnsureIndexes enforces one row per user and chapter.
func (r *ProgressRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "chapter_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "study_id", Value: 1}}},
	})
	return err
}
