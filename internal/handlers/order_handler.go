package handlers

import (
	"proshop/internal/middleware"
	"proshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, protect middleware.Guard) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", middleware.Guarded(h.HandleCreateOrder, protect))
	orderRoutes.Get("/", middleware.Guarded(h.HandleGetOrders, protect, middleware.Admin))
	orderRoutes.Get("/mine", middleware.Guarded(h.HandleGetMyOrders, protect))
	orderRoutes.Get("/:id", middleware.Guarded(h.HandleGetOrderByID, protect, middleware.CheckObjectID))
	orderRoutes.Put("/:id/pay", middleware.Guarded(h.HandlePayOrder, protect, middleware.CheckObjectID))
	orderRoutes.Put("/:id/deliver", middleware.Guarded(h.HandleDeliverOrder, protect, middleware.Admin, middleware.CheckObjectID))
}

// HandleCreateOrder places an order for the signed-in user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.OrderInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	createdOrder, err := h.service.CreateOrder(c.UserContext(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleGetMyOrders returns the signed-in user's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetMyOrders(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// HandleGetOrders returns every order.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// HandleGetOrderByID returns one order with its customer.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandlePayOrder records the payment reported by the checkout page.
func (h *OrderHandler) HandlePayOrder(c *fiber.Ctx) error {
	var req services.PaymentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.service.PayOrder(c.UserContext(), c.Params("id"), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandleDeliverOrder marks an order as delivered.
func (h *OrderHandler) HandleDeliverOrder(c *fiber.Ctx) error {
	order, err := h.service.DeliverOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}
