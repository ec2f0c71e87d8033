// Package seeder fills an empty store with sample users and products, or wipes it.
package seeder

import (
	"context"
	"fmt"

	"proshop/internal/models"
	"proshop/internal/repositories"

	"go.uber.org/zap"
)

// Result summarises an import.
type Result struct {
	Users    int
	Products int
}

// Import wipes the store and inserts the sample users and products. Products are owned
// by the first admin. Passwords go through the regular pre-persist hashing.
func Import(ctx context.Context, store *repositories.Store, logger *zap.Logger) (*Result, error) {
	if err := Destroy(ctx, store, logger); err != nil {
		return nil, err
	}

	var adminID string
	for _, su := range sampleUsers {
		user := &models.User{Name: su.Name, Email: su.Email, Role: su.Role}
		user.SetPassword(su.Password)
		if err := store.Users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", su.Email, err)
		}
		if adminID == "" && user.IsAdmin() {
			adminID = user.ID
		}
	}

	for i := range sampleProducts {
		product := sampleProducts[i]
		product.UserID = adminID
		product.Reviews = []models.Review{}
		if err := store.Products.Create(ctx, &product); err != nil {
			return nil, fmt.Errorf("failed to seed product %s: %w", product.Name, err)
		}
	}

	res := &Result{Users: len(sampleUsers), Products: len(sampleProducts)}
	logger.Info("data imported", zap.Int("users", res.Users), zap.Int("products", res.Products))
	return res, nil
}

// Destroy removes every order, product and user.
func Destroy(ctx context.Context, store *repositories.Store, logger *zap.Logger) error {
	if err := store.Orders.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	if err := store.Products.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete products: %w", err)
	}
	if err := store.Users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	logger.Info("data destroyed")
	return nil
}
