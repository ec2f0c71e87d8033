package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	ordersCollection   = "orders"
)

// NewMongoStore builds a Store on top of a MongoDB database and ensures its indexes.
func NewMongoStore(ctx context.Context, client *mongo.Client, db *mongo.Database) (*Store, error) {
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return &Store{
		Users:    NewMongoUserRepository(db.Collection(usersCollection)),
		Products: NewMongoProductRepository(db.Collection(productsCollection)),
		Orders:   NewMongoOrderRepository(db.Collection(ordersCollection)),
		close:    client.Disconnect,
	}, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "rating", Value: -1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "paymentResult.id", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
