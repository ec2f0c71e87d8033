package handlers

import (
	"time"

	"proshop/internal/middleware"
	"proshop/internal/models"
	"proshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for authentication, profiles and user administration.
type UserHandler struct {
	authService  *services.AuthService
	userService  *services.UserService
	loginLimit   middleware.Guard
	secureCookie bool
}

// NewUserHandler creates a new UserHandler. loginLimit may be nil. secureCookie marks the
// session cookie as https-only.
func NewUserHandler(authService *services.AuthService, userService *services.UserService, loginLimit middleware.Guard, secureCookie bool) *UserHandler {
	return &UserHandler{
		authService:  authService,
		userService:  userService,
		loginLimit:   loginLimit,
		secureCookie: secureCookie,
	}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router, protect middleware.Guard) {
	userRoutes := router.Group("/users")

	login := []middleware.Guard{}
	if h.loginLimit != nil {
		login = append(login, h.loginLimit)
	}

	userRoutes.Post("/", h.HandleRegister)
	userRoutes.Post("/auth", middleware.Guarded(h.HandleLogin, login...))
	userRoutes.Post("/logout", h.HandleLogout)
	userRoutes.Get("/profile", middleware.Guarded(h.HandleGetProfile, protect))
	userRoutes.Put("/profile", middleware.Guarded(h.HandleUpdateProfile, protect))

	userRoutes.Get("/", middleware.Guarded(h.HandleListUsers, protect, middleware.Admin))
	userRoutes.Get("/:id", middleware.Guarded(h.HandleGetUser, protect, middleware.Admin, middleware.CheckObjectID))
	userRoutes.Put("/:id", middleware.Guarded(h.HandleUpdateUser, protect, middleware.Admin, middleware.CheckObjectID))
	userRoutes.Delete("/:id", middleware.Guarded(h.HandleDeleteUser, protect, middleware.Admin, middleware.CheckObjectID))
}

// RegisterRequest represents the request body for registration. Field rules are
// enforced by the user model.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest represents the body of profile and admin updates.
type UpdateUserRequest struct {
	Name     string      `json:"name" validate:"omitempty,max=50"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=user admin"`
}

// authResponse is a user together with the token issued for it.
type authResponse struct {
	*models.User
	Token string `json:"token,omitempty"`
}

// HandleRegister creates a customer account and signs it in.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return err
	}
	h.setTokenCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(authResponse{User: user, Token: token})
}

// HandleLogin checks credentials and issues a token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setTokenCookie(c, token)

	return c.JSON(authResponse{User: user, Token: token})
}

// HandleLogout clears the session cookie.
func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// HandleGetProfile returns the signed-in user.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleUpdateProfile updates the signed-in user's name, email or password.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, services.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleListUsers returns every user.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// HandleGetUser returns one user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleUpdateUser lets an admin change a user's name, email or role.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateUser(c.UserContext(), c.Params("id"), services.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleDeleteUser removes a customer account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.userService.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User removed"})
}

func (h *UserHandler) setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(services.TokenTTL),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
