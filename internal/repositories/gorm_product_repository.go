package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"proshop/internal/models"

	"gorm.io/gorm"
)

// likeEscaper makes LIKE wildcards in a keyword match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Find returns one page of products and the total number of matches.
func (r *GORMProductRepository) Find(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	byKeyword := func(db *gorm.DB) *gorm.DB {
		if kw := strings.TrimSpace(q.Keyword); kw != "" {
			return db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(kw))+"%")
		}
		return db
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(byKeyword).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := []models.Product{}
	err := r.db.WithContext(ctx).Scopes(byKeyword).
		Order("created_at").Offset(q.offset()).Limit(q.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get products: %w", err)
	}
	return products, count, nil
}

// Top returns the best rated products.
func (r *GORMProductRepository) Top(ctx context.Context, limit int) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.WithContext(ctx).Order("rating desc").Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a single product and its reviews.
func (r *GORMProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if product.ID == "" {
		product.ID = models.NewID()
	}
	for i := range product.Reviews {
		if product.Reviews[i].ID == "" {
			product.Reviews[i].ID = models.NewID()
		}
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the editable fields of an existing product, zero values included.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	product.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(product).
		Select("name", "price", "description", "image", "brand", "category", "count_in_stock", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product and its reviews.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Review{}, "product_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete reviews of product %s: %w", id, err)
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// AddReview inserts the review and stores the product's new rating in one transaction.
func (r *GORMProductRepository) AddReview(ctx context.Context, product *models.Product, review *models.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	if review.ID == "" {
		review.ID = models.NewID()
	}
	review.ProductID = product.ID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		res := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"rating":      product.Rating,
			"num_reviews": product.NumReviews,
			"updated_at":  time.Now(),
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update product rating: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
		}
		return nil
	})
}

// DeleteAll removes every product and review.
func (r *GORMProductRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
			return fmt.Errorf("failed to delete products: %w", err)
		}
		return nil
	})
}
