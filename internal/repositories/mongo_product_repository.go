package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"proshop/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository is a MongoDB implementation of ProductRepository.
// Reviews are embedded in the product document.
type MongoProductRepository struct {
	col *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(col *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{col: col}
}

func (r *MongoProductRepository) Find(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	filter := bson.M{}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
	}
	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(int64(q.offset())).
		SetLimit(int64(q.PageSize))
	products, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *MongoProductRepository) Top(ctx context.Context, limit int) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}}).SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
	return &p, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if product.ID == "" {
		product.ID = models.NewID()
	}
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	if _, err := r.col.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	product.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, product.ID, bson.M{"$set": bson.M{
		"name":         product.Name,
		"price":        product.Price,
		"description":  product.Description,
		"image":        product.Image,
		"brand":        product.Brand,
		"category":     product.Category,
		"countInStock": product.CountInStock,
		"updatedAt":    product.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoProductRepository) AddReview(ctx context.Context, product *models.Product, review *models.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	if review.ID == "" {
		review.ID = models.NewID()
	}
	now := time.Now().UTC()
	review.CreatedAt, review.UpdatedAt = now, now
	res, err := r.col.UpdateByID(ctx, product.ID, bson.M{
		"$push": bson.M{"reviews": review},
		"$set": bson.M{
			"rating":     product.Rating,
			"numReviews": product.NumReviews,
			"updatedAt":  now,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

func (r *MongoProductRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to delete products: %w", err)
	}
	return nil
}
