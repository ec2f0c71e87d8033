package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PasswordCost is the bcrypt work factor applied to every stored password.
const PasswordCost = 12

const minPasswordLength = 8

// User represents a customer or administrator of the store.
type User struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(24)" bson:"_id"`
	Name      string    `json:"name" gorm:"type:varchar(50);not null" bson:"name" validate:"required,max=50"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" bson:"email" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null" bson:"password,omitempty" validate:"-"` // never serialised
	Role      Role      `json:"role" gorm:"type:varchar(10);not null;default:user" bson:"role" validate:"oneof=user admin"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`

	passwordModified bool
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetPassword stores a new plaintext password and marks it for hashing on the next save.
func (u *User) SetPassword(plain string) {
	u.Password = plain
	u.passwordModified = true
}

// PasswordModified reports whether the password changed since the user was loaded or last saved.
func (u *User) PasswordModified() bool {
	return u.passwordModified
}

// Normalize applies the canonical forms of the user's fields.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleUser
	}
}

// Validate checks the user's field rules. The password length is only checked while the
// password is still plaintext, that is, when it has been modified and not yet hashed.
func (u *User) Validate() error {
	verrs := validateStruct(u)
	if u.passwordModified && len(u.Password) < minPasswordLength {
		verrs = append(verrs, FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		})
	}
	if !u.passwordModified && u.ID == "" && u.Password == "" {
		verrs = append(verrs, FieldError{Field: "password", Message: "is required"})
	}
	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// HashPasswordIfModified replaces a modified plaintext password with its salted bcrypt hash.
// It does nothing when the password is unchanged, so an existing hash is never hashed twice.
func (u *User) HashPasswordIfModified() error {
	if !u.passwordModified {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), PasswordCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = string(hashed)
	u.passwordModified = false
	return nil
}

// PrepareForSave is the pre-persist step every repository runs before writing a user:
// normalize, validate, then hash the password if it changed.
func (u *User) PrepareForSave() error {
	u.Normalize()
	if err := u.Validate(); err != nil {
		return err
	}
	return u.HashPasswordIfModified()
}

// MatchPassword compares a candidate plaintext password against the stored hash.
func (u *User) MatchPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}
