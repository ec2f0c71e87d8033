package middleware

import (
	"context"
	"strings"

	"proshop/internal/errs"
	"proshop/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenCookie is the http-only cookie that carries the session token.
const TokenCookie = "jwt"

const userLocal = "user"

// Guard is one step of a route's access check. It returns nil to let the request
// continue or an error that ends it.
type Guard func(c *fiber.Ctx) error

// Guarded runs guards left to right and calls h only when all of them pass. The first
// error goes straight to the app's error handler.
func Guarded(h fiber.Handler, guards ...Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, g := range guards {
			if err := g(c); err != nil {
				return err
			}
		}
		return h(c)
	}
}

// Authenticator resolves a token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protect requires a valid token, read from the jwt cookie or an
// "Authorization: Bearer <token>" header, and stores the user on the request.
func Protect(auth Authenticator) Guard {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return errs.Unauthorized("Not authorized, no token")
		}
		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return &errs.Error{Status: fiber.StatusUnauthorized, Message: "Not authorized, token failed", Err: err}
		}
		c.Locals(userLocal, user)
		return nil
	}
}

// Admin requires the user stored by Protect to be an admin.
func Admin(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return errs.Unauthorized("Not authorized, no token")
	}
	if !user.IsAdmin() {
		return errs.Forbidden("Not authorized as an admin")
	}
	return nil
}

// CheckObjectID rejects requests whose :id parameter is not a well-formed document id.
func CheckObjectID(c *fiber.Ctx) error {
	id := c.Params("id")
	if !models.IsValidID(id) {
		return errs.NotFound("Invalid ObjectId of: " + id)
	}
	return nil
}

// CurrentUser returns the user stored by Protect, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocal).(*models.User)
	return user
}

func tokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies(TokenCookie); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
