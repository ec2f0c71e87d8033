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

// MongoOrderRepository is a MongoDB implementation of OrderRepository.
type MongoOrderRepository struct {
	col *mongo.Collection
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(col *mongo.Collection) *MongoOrderRepository {
	return &MongoOrderRepository{col: col}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	if order.ID == "" {
		order.ID = models.NewID()
	}
	for i := range order.OrderItems {
		if order.OrderItems[i].ID == "" {
			order.OrderItems[i].ID = models.NewID()
		}
	}
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	if _, err := r.col.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &o, nil
}

func (r *MongoOrderRepository) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *MongoOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (r *MongoOrderRepository) Update(ctx context.Context, order *models.Order) error {
	order.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, order.ID, bson.M{"$set": bson.M{
		"isPaid":        order.IsPaid,
		"paidAt":        order.PaidAt,
		"isDelivered":   order.IsDelivered,
		"deliveredAt":   order.DeliveredAt,
		"paymentResult": order.PaymentResult,
		"updatedAt":     order.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order with ID %s: %w", order.ID, ErrNotFound)
	}
	return nil
}

func (r *MongoOrderRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"paymentResult.id": transactionID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up transaction %s: %w", transactionID, err)
	}
	return n > 0, nil
}

func (r *MongoOrderRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	return nil
}
