package services

import (
	"context"
	"math"
	"strings"
	"time"

	"proshop/internal/errs"
	"proshop/internal/models"
	"proshop/internal/repositories"
)

const (
	// DefaultPageSize is used when no pagination limit is configured.
	DefaultPageSize = 8
	// TopProductsLimit is the number of best rated products returned by TopProducts.
	TopProductsLimit = 3
	// MaxPage bounds the requested page number.
	MaxPage = 100000
)

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// ProductUpdate holds the editable product fields. Nil fields are left unchanged.
type ProductUpdate struct {
	Name         *string  `json:"name"`
	Price        *float64 `json:"price"`
	Description  *string  `json:"description"`
	Image        *string  `json:"image"`
	Brand        *string  `json:"brand"`
	Category     *string  `json:"category"`
	CountInStock *int     `json:"countInStock"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	pageSize int
}

// NewProductService creates a new ProductService. A non-positive pageSize falls back to
// DefaultPageSize.
func NewProductService(repo repositories.ProductRepository, pageSize int) *ProductService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ProductService{
		repo:     repo,
		pageSize: pageSize,
	}
}

// ListProducts returns one page of products whose name contains keyword.
func (s *ProductService) ListProducts(ctx context.Context, keyword string, page int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	products, count, err := s.repo.Find(ctx, repositories.ProductQuery{
		Keyword:  strings.TrimSpace(keyword),
		Page:     page,
		PageSize: s.pageSize,
	})
	if err != nil {
		return nil, translate(err, "Product")
	}
	if products == nil {
		products = []models.Product{}
	}
	return &ProductPage{
		Products: products,
		Page:     page,
		Pages:    int(math.Ceil(float64(count) / float64(s.pageSize))),
	}, nil
}

// TopProducts returns the best rated products.
func (s *ProductService) TopProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.Top(ctx, TopProductsLimit)
	if err != nil {
		return nil, translate(err, "Product")
	}
	return products, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Product")
	}
	return product, nil
}

// CreateSampleProduct creates a placeholder product owned by userID.
func (s *ProductService) CreateSampleProduct(ctx context.Context, userID string) (*models.Product, error) {
	product := models.NewSampleProduct(userID)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, translate(err, "Product")
	}
	return product, nil
}

// UpdateProduct applies upd to the product with the given ID.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Product")
	}
	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.Price != nil {
		product.Price = *upd.Price
	}
	if upd.Description != nil {
		product.Description = *upd.Description
	}
	if upd.Image != nil {
		product.Image = *upd.Image
	}
	if upd.Brand != nil {
		product.Brand = *upd.Brand
	}
	if upd.Category != nil {
		product.Category = *upd.Category
	}
	if upd.CountInStock != nil {
		product.CountInStock = *upd.CountInStock
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, translate(err, "Product")
	}
	return product, nil
}

// DeleteProduct deletes a product and its reviews.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "Product")
	}
	return nil
}

// CreateReview adds user's review to a product. Each user may review a product once.
func (s *ProductService) CreateReview(ctx context.Context, productID string, user *models.User, rating int, comment string) error {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return translate(err, "Product")
	}
	if product.HasReviewFrom(user.ID) {
		return errs.BadRequest("Product already reviewed")
	}

	now := time.Now()
	review := models.Review{
		ID:        models.NewID(),
		UserID:    user.ID,
		Name:      user.Name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := review.Validate(); err != nil {
		return translate(err, "Review")
	}
	product.AddReview(review)
	if err := s.repo.AddReview(ctx, product, &review); err != nil {
		return translate(err, "Product")
	}
	return nil
}
