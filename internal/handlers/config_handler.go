package handlers

import "github.com/gofiber/fiber/v2"

// ConfigHandler exposes client-side settings.
type ConfigHandler struct {
	paypalClientID string
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(paypalClientID string) *ConfigHandler {
	return &ConfigHandler{paypalClientID: paypalClientID}
}

// RegisterRoutes registers the config routes.
func (h *ConfigHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/config/paypal", h.HandlePayPal)
}

// HandlePayPal returns the PayPal client id the checkout page needs.
func (h *ConfigHandler) HandlePayPal(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"clientId": h.paypalClientID})
}
