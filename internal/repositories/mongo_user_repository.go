package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proshop/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var withoutPassword = bson.M{"password": 0}

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.PrepareForSave(); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Save $sets the profile fields, and the password only when it was modified.
func (r *MongoUserRepository) Save(ctx context.Context, user *models.User) error {
	passwordChanged := user.PasswordModified()
	if err := user.PrepareForSave(); err != nil {
		return err
	}
	user.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"updatedAt": user.UpdatedAt,
	}
	if passwordChanged {
		set["password"] = user.Password
	}
	res, err := r.col.UpdateByID(ctx, user.ID, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutPassword))
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(withoutPassword))
}

func (r *MongoUserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, filter, opts...).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %v: %w", filter, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (r *MongoUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(withoutPassword).SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}
