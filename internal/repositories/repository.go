package repositories

import (
	"context"
	"errors"
	"math"

	"proshop/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write breaks a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the interface for user data access.
// Every read except FindByEmailWithPassword leaves User.Password empty.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// ProductQuery selects one page of products, optionally filtered by a name keyword.
type ProductQuery struct {
	Keyword  string
	Page     int // 1-based
	PageSize int
}

func (q ProductQuery) offset() int {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt32/q.PageSize {
		return math.MaxInt32
	}
	return (q.Page - 1) * q.PageSize
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Find(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	Top(ctx context.Context, limit int) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// AddReview persists review and the product's recomputed rating and review count.
	AddReview(ctx context.Context, product *models.Product, review *models.Review) error
	DeleteAll(ctx context.Context) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	// Update persists the payment and delivery state of an order.
	Update(ctx context.Context, order *models.Order) error
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
	DeleteAll(ctx context.Context) error
}

// Store bundles the repositories of one database connection.
type Store struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository

	close func(ctx context.Context) error
}

// Close releases the underlying database connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
