package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proshop/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create inserts an order together with its items.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
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
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindByID retrieves an order and its items.
func (r *GORMOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("OrderItems").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// FindByUser retrieves the orders placed by userID, newest first.
func (r *GORMOrderRepository) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	if err := r.db.WithContext(ctx).Preload("OrderItems").Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders of user %s: %w", userID, err)
	}
	return orders, nil
}

// FindAll retrieves every order, newest first.
func (r *GORMOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := r.db.WithContext(ctx).Preload("OrderItems").Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// Update writes the payment and delivery fields of an order.
func (r *GORMOrderRepository) Update(ctx context.Context, order *models.Order) error {
	order.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"is_paid":                order.IsPaid,
		"paid_at":                order.PaidAt,
		"is_delivered":           order.IsDelivered,
		"delivered_at":           order.DeliveredAt,
		"payment_transaction_id": order.PaymentResult.TransactionID,
		"payment_status":         order.PaymentResult.Status,
		"payment_update_time":    order.PaymentResult.UpdateTime,
		"payment_email_address":  order.PaymentResult.EmailAddress,
		"updated_at":             order.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", order.ID, ErrNotFound)
	}
	return nil
}

// ExistsByTransactionID reports whether a payment transaction is already recorded on any order.
func (r *GORMOrderRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("payment_transaction_id = ?", transactionID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up transaction %s: %w", transactionID, err)
	}
	return count > 0, nil
}

// DeleteAll removes every order and order item.
func (r *GORMOrderRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.Order{}).Error; err != nil {
			return fmt.Errorf("failed to delete orders: %w", err)
		}
		return nil
	})
}
