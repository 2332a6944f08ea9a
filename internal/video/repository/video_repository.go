package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"videoboard/internal/video/domain"
)

// VideoRepo definition get video info
type VideoRepo interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id string) (*domain.Video, error)
	FindPublic(ctx context.Context) ([]domain.Video, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Video, error)
	Update(ctx context.Context, id string, set bson.M) (*domain.Video, error)
	Delete(ctx context.Context, id string) error
	IncViewCount(ctx context.Context, id string) error
}

type videoRepo struct {
	coll *mongo.Collection
}

// NewVideoRepo create a VideoRepo backed by the videos collection
func NewVideoRepo(db *mongo.Database) VideoRepo {
	return &videoRepo{
		coll: db.Collection("videos"),
	}
}

func (r *videoRepo) Create(ctx context.Context, video *domain.Video) error {
	now := time.Now()
	video.CreatedAt = now
	video.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, video)
	return err
}

func (r *videoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	var v domain.Video
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	return &v, nil
}

// FindPublic the public feed, newest first
func (r *videoRepo) FindPublic(ctx context.Context) ([]domain.Video, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.coll.Find(ctx, bson.M{"is_private": false}, opts)
	if err != nil {
		return nil, err
	}

	videos := []domain.Video{}
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// FindByOwner everything one user uploaded, private included, newest first
func (r *videoRepo) FindByOwner(ctx context.Context, ownerID string) ([]domain.Video, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.coll.Find(ctx, bson.M{"uploaded_by": ownerID}, opts)
	if err != nil {
		return nil, err
	}

	videos := []domain.Video{}
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// Update overwrite only the provided fields and return the new document
func (r *videoRepo) Update(ctx context.Context, id string, set bson.M) (*domain.Video, error) {
	set["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var v domain.Video
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *videoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}

// IncViewCount increment-only counter update, unknown ids are a no-op
func (r *videoRepo) IncViewCount(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"view_count": 1}})
	return err
}
