package repositories

import (
	"context"
	"fmt"

	"proshop/internal/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables used by the GORM repositories.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Review{}, &models.Order{}, &models.OrderItem{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// NewGORMStore builds a Store on top of a GORM connection.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Users:    NewGORMUserRepository(db),
		Products: NewGORMProductRepository(db),
		Orders:   NewGORMOrderRepository(db),
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
