package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"videoboard/internal/user/domain"
)

// UserRepository definition get user info
type UserRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	FindOne(ctx context.Context, query *domain.UserQuery) (*domain.User, error)
	UpdateToken(ctx context.Context, userID string, slot domain.TokenSlot) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, slot domain.TokenSlot) error
	UpdateProfile(ctx context.Context, userID, username, email string) (*domain.User, error)
	IncUploadCount(ctx context.Context, userID string) error
	IncDownloadCount(ctx context.Context, userID string) error
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository create a UserRepository backed by the users collection
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		coll: db.Collection("users"),
	}
}

// EnsureIndexes enforce global uniqueness of email and username
func (r *userRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, user)
	return err
}

func (r *userRepository) FindOne(ctx context.Context, query *domain.UserQuery) (*domain.User, error) {
	filter := bson.M{}
	if query.ID != nil {
		filter["_id"] = *query.ID
	}
	if query.Email != nil {
		filter["email"] = *query.Email
	}
	if query.Username != nil {
		filter["username"] = *query.Username
	}
	if query.TokenValue != nil {
		filter["token.value"] = *query.TokenValue
	}
	if query.ExcludeID != nil {
		filter["_id"] = bson.M{"$ne": *query.ExcludeID}
	}

	var user domain.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	return &user, nil
}

// UpdateToken overwrite the token slot whole, last write wins
func (r *userRepository) UpdateToken(ctx context.Context, userID string, slot domain.TokenSlot) error {
	update := bson.M{"$set": bson.M{"token": slot, "updated_at": time.Now()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

// UpdatePassword replace the hash and rotate the token slot in one write
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, slot domain.TokenSlot) error {
	update := bson.M{"$set": bson.M{
		"password":   passwordHash,
		"token":      slot,
		"updated_at": time.Now(),
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID, username, email string) (*domain.User, error) {
	update := bson.M{"$set": bson.M{
		"username":   username,
		"email":      email,
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user domain.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) IncUploadCount(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$inc": bson.M{"upload_count": 1}})
	return err
}

func (r *userRepository) IncDownloadCount(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$inc": bson.M{"download_count": 1}})
	return err
}
