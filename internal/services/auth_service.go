package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proshop/internal/errs"
	"proshop/internal/models"
	"proshop/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 30 * 24 * time.Hour

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  TokenTTL,
	}
}

// RegisterUser creates a customer account. The password is hashed by the repository's
// pre-persist step.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*models.User, error) {
	user := &models.User{Name: name, Email: email, Role: models.RoleUser}
	user.SetPassword(password)
	user.Normalize()

	if existing, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil && existing != nil {
		return nil, errs.BadRequest("User already exists")
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, translate(err, "User")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translate(err, "User")
	}
	return user, nil
}

// LoginUser authenticates a user and returns it with a signed token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	user := &models.User{Email: email}
	user.Normalize()

	found, err := s.userRepo.FindByEmailWithPassword(ctx, user.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Do not reveal whether the email exists.
			return nil, "", errs.Unauthorized("Invalid email or password")
		}
		return nil, "", translate(err, "User")
	}
	if !found.MatchPassword(password) {
		return nil, "", errs.Unauthorized("Invalid email or password")
	}

	token, err := s.GenerateToken(found)
	if err != nil {
		return nil, "", errs.Internal(err)
	}
	found.Password = ""
	return found, token, nil
}

// GenerateToken issues a signed token identifying user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// Authenticate resolves a token to the current state of its user. A token whose user was
// deleted no longer authenticates.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return user, nil
}
