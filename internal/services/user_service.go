package services

import (
	"context"
	"errors"

	"proshop/internal/errs"
	"proshop/internal/models"
	"proshop/internal/repositories"
)

// ProfileUpdate carries the fields a user or an admin may change. Empty values keep the
// current value.
type ProfileUpdate struct {
	Name     string
	Email    string
	Password string
	Role     models.Role // honoured for admin updates only
}

// UserService handles profile and user administration logic.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "User")
	}
	return user, nil
}

// ListUsers retrieves every user.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, translate(err, "User")
	}
	return users, nil
}

// UpdateProfile applies a user's changes to their own account. The role never changes here.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	upd.Role = ""
	return s.update(ctx, id, upd)
}

// UpdateUser applies an admin's changes to any account.
func (s *UserService) UpdateUser(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	return s.update(ctx, id, upd)
}

func (s *UserService) update(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "User")
	}
	if upd.Name != "" {
		user.Name = upd.Name
	}
	if upd.Email != "" {
		candidate := &models.User{Email: upd.Email}
		candidate.Normalize()
		if candidate.Email != user.Email {
			if _, err := s.userRepo.FindByEmail(ctx, candidate.Email); err == nil {
				return nil, errs.BadRequest("Email already in use")
			} else if !errors.Is(err, repositories.ErrNotFound) {
				return nil, translate(err, "User")
			}
		}
		user.Email = candidate.Email
	}
	if upd.Role != "" {
		user.Role = upd.Role
	}
	if upd.Password != "" {
		user.SetPassword(upd.Password)
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, translate(err, "User")
	}
	user.Password = ""
	return user, nil
}

// DeleteUser removes a customer account. Admin accounts cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return translate(err, "User")
	}
	if user.IsAdmin() {
		return errs.BadRequest("Can not delete admin user")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return translate(err, "User")
	}
	return nil
}
