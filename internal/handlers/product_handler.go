package handlers

import (
	"errors"
	"log"

	"brocante/internal/apperrors"
	"brocante/internal/middleware"
	"brocante/internal/models"
	"brocante/internal/repositories"
	"brocante/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CreateProductRequest is the payload for publishing a new listing.
type CreateProductRequest struct {
	Title        string   `json:"title" validate:"required,min=3,max=150"`
	Description  string   `json:"description" validate:"required,max=2000"`
	Price        float64  `json:"price" validate:"gte=0"`
	ShippingCost float64  `json:"shipping_cost" validate:"gte=0"`
	ImageURLs    []string `json:"image_urls" validate:"omitempty,max=5,dive,url"`
	CategoryID   string   `json:"category_id" validate:"required"`
	ShopID       string   `json:"shop_id"`
	Condition    string   `json:"condition"`
}

// UpdateStatusRequest is the payload for a moderation decision.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// ProductHandler handles HTTP requests for listings.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes. Catalog browsing is public;
// everything else runs behind the auth middleware with a role check.
// Specific paths are registered before /:id so they are not shadowed.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListPublic)
	productRoutes.Get("/seller/mine", auth, middleware.RequireRole(models.RoleSeller), h.HandleListMine)
	productRoutes.Get("/admin/pending", auth, middleware.RequireRole(models.RoleModerator), h.HandleListPending)
	productRoutes.Get("/:id", h.HandleGetByID)
	productRoutes.Post("/", auth, middleware.RequireRole(models.RoleSeller), h.HandleCreate)
	productRoutes.Put("/:id", auth, h.HandleUpdate)
	productRoutes.Delete("/:id", auth, h.HandleDelete)
	productRoutes.Patch("/:id/status", auth, middleware.RequireRole(models.RoleModerator), h.HandleUpdateStatus)
}

// HandleListPublic returns the approved catalog, optionally filtered by
// category and a case-insensitive search over title and description.
func (h *ProductHandler) HandleListPublic(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{
		CategoryID: c.Query("categoryId"),
		Search:     c.Query("search"),
	}

	products, err := h.service.FindPublic(filter)
	if err != nil {
		log.Printf("Error listing public products: %v", err)
		return respondServiceError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetByID returns a single listing.
func (h *ProductHandler) HandleGetByID(c *fiber.Ctx) error {
	product, err := h.service.FindByID(c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleListMine returns the calling seller's products in every status.
func (h *ProductHandler) HandleListMine(c *fiber.Ctx) error {
	sellerID, _ := c.Locals("user_id").(string)
	products, err := h.service.FindBySeller(sellerID)
	if err != nil {
		log.Printf("Error listing products for seller %s: %v", sellerID, err)
		return respondServiceError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleListPending returns the moderation queue, oldest first.
func (h *ProductHandler) HandleListPending(c *fiber.Ctx) error {
	products, err := h.service.FindPending()
	if err != nil {
		log.Printf("Error listing pending products: %v", err)
		return respondServiceError(c, err, "Could not retrieve pending products")
	}
	return c.JSON(products)
}

// HandleCreate publishes a new listing for the calling seller.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	sellerID, _ := c.Locals("user_id").(string)
	product, err := h.service.Create(sellerID, &models.Product{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		ShippingCost: req.ShippingCost,
		ImageURLs:    req.ImageURLs,
		CategoryID:   req.CategoryID,
		ShopID:       req.ShopID,
		Condition:    req.Condition,
	})
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return respondServiceError(c, err, "Could not create product")
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdate applies a seller's partial edit to their own listing.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var req models.ProductUpdate
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	callerID, _ := c.Locals("user_id").(string)
	product, err := h.service.Update(c.Params("id"), callerID, req)
	if err != nil {
		log.Printf("Error updating product %s: %v", c.Params("id"), err)
		return respondServiceError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDelete removes the calling seller's own listing.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if err := h.service.Delete(c.Params("id"), callerID); err != nil {
		log.Printf("Error deleting product %s: %v", c.Params("id"), err)
		return respondServiceError(c, err, "Could not delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUpdateStatus records a moderation decision (approve or reject).
func (h *ProductHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	product, err := h.service.UpdateStatus(c.Params("id"), models.ProductStatus(req.Status))
	if err != nil {
		log.Printf("Error updating status for product %s: %v", c.Params("id"), err)
		return respondServiceError(c, err, "Could not update product status")
	}
	return c.JSON(product)
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// None of these errors are retriable.
func respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	var violation *apperrors.ContentViolationError
	switch {
	case errors.As(err, &violation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":    "Content policy violation",
			"error":      violation.Error(),
			"field":      violation.Field,
			"violations": violation.Violations,
		})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, apperrors.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": fallback,
			"error":   err.Error(),
		})
	}
}

// respondValidationError reports field-level validation failures.
func respondValidationError(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = "failed on the '" + e.Tag() + "' tag"
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
