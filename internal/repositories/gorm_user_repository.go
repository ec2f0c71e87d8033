package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proshop/internal/models"

	"gorm.io/gorm"
)

// userColumns is the default projection; it leaves out the password hash.
var userColumns = []string{"id", "name", "email", "role", "created_at", "updated_at"}

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create validates, hashes and inserts a new user.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.PrepareForSave(); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Save writes the user's profile fields. The password column is only written when the
// password was modified, so an unchanged hash is never touched.
func (r *GORMUserRepository) Save(ctx context.Context, user *models.User) error {
	passwordChanged := user.PasswordModified()
	if err := user.PrepareForSave(); err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	fields := map[string]interface{}{
		"name":       user.Name,
		"email":      user.Email,
		"role":       user.Role,
		"updated_at": user.UpdatedAt,
	}
	if passwordChanged {
		fields["password"] = user.Password
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// FindByID retrieves a user by their ID, without the password.
func (r *GORMUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx).Select(userColumns), "id = ?", id)
}

// FindByEmail retrieves a user by their email, without the password.
func (r *GORMUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx).Select(userColumns), "email = ?", email)
}

// FindByEmailWithPassword retrieves a user by their email including the password hash.
func (r *GORMUserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx), "email = ?", email)
}

func (r *GORMUserRepository) first(tx *gorm.DB, query string, arg string) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", arg, err)
	}
	return &user, nil
}

// FindAll retrieves every user, oldest first.
func (r *GORMUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Select(userColumns).Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// Delete removes a user by ID.
func (r *GORMUserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAll removes every user.
func (r *GORMUserRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}
