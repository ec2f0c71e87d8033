package handlers

import (
	"proshop/internal/middleware"
	"proshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, protect middleware.Guard) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", middleware.Guarded(h.HandleCreateProduct, protect, middleware.Admin))
	productRoutes.Get("/top", h.HandleGetTopProducts)
	productRoutes.Get("/:id", middleware.Guarded(h.HandleGetProductByID, middleware.CheckObjectID))
	productRoutes.Put("/:id", middleware.Guarded(h.HandleUpdateProduct, protect, middleware.Admin, middleware.CheckObjectID))
	productRoutes.Delete("/:id", middleware.Guarded(h.HandleDeleteProduct, protect, middleware.Admin, middleware.CheckObjectID))
	productRoutes.Post("/:id/reviews", middleware.Guarded(h.HandleCreateReview, protect, middleware.CheckObjectID))
}

// ReviewRequest represents the body of a new review.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// HandleGetProducts returns one page of products, optionally filtered by ?keyword=.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	page, err := h.service.ListProducts(c.UserContext(), c.Query("keyword"), c.QueryInt("pageNumber", 1))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// HandleGetTopProducts returns the best rated products.
func (h *ProductHandler) HandleGetTopProducts(c *fiber.Ctx) error {
	products, err := h.service.TopProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a sample product for the admin to edit.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	product, err := h.service.CreateSampleProduct(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req services.ProductUpdate
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}

// HandleCreateReview adds the signed-in user's review to a product.
func (h *ProductHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req ReviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	err := h.service.CreateReview(c.UserContext(), c.Params("id"), middleware.CurrentUser(c), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Review added"})
}
