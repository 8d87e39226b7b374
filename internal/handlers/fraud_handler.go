package handlers

import (
	"log"

	"brocante/internal/middleware"
	"brocante/internal/models"
	"brocante/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FraudHandler handles HTTP requests for fraud analysis and alerts.
type FraudHandler struct {
	service *services.FraudService
}

// NewFraudHandler creates a new FraudHandler.
func NewFraudHandler(service *services.FraudService) *FraudHandler {
	return &FraudHandler{
		service: service,
	}
}

// RegisterRoutes registers the fraud routes. The analyze endpoint is an
// internal service-to-service call; alert review is moderator-only.
func (h *FraudHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	fraudRoutes := router.Group("/fraud")
	fraudRoutes.Post("/analyze/price", h.HandleAnalyzePrice)
	fraudRoutes.Get("/alerts", auth, middleware.RequireRole(models.RoleModerator), h.HandleListAlerts)
	fraudRoutes.Patch("/alerts/:id/resolve", auth, middleware.RequireRole(models.RoleModerator), h.HandleResolveAlert)
}

// HandleAnalyzePrice evaluates a price-change event against the fraud rules.
// Responds with the raised alert, or null when the event is clean.
func (h *FraudHandler) HandleAnalyzePrice(c *fiber.Ctx) error {
	var event services.PriceChangeEvent
	if err := c.BodyParser(&event); err != nil {
		log.Printf("Error parsing price change event: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	alert, err := h.service.AnalyzePriceChange(event)
	if err != nil {
		log.Printf("Error analyzing price change for product %s: %v", event.ProductID, err)
		return respondServiceError(c, err, "Could not analyze price change")
	}
	return c.JSON(alert)
}

// HandleListAlerts returns alerts newest first. The optional resolved query
// parameter ("true"/"false") filters by resolution state.
func (h *FraudHandler) HandleListAlerts(c *fiber.Ctx) error {
	var resolved *bool
	switch c.Query("resolved") {
	case "true":
		v := true
		resolved = &v
	case "false":
		v := false
		resolved = &v
	}

	alerts, err := h.service.FindAllAlerts(resolved)
	if err != nil {
		log.Printf("Error listing fraud alerts: %v", err)
		return respondServiceError(c, err, "Could not retrieve alerts")
	}
	return c.JSON(alerts)
}

// HandleResolveAlert marks an alert as handled by the calling moderator.
func (h *FraudHandler) HandleResolveAlert(c *fiber.Ctx) error {
	moderatorID, _ := c.Locals("user_id").(string)
	alert, err := h.service.ResolveAlert(c.Params("id"), moderatorID)
	if err != nil {
		log.Printf("Error resolving alert %s: %v", c.Params("id"), err)
		return respondServiceError(c, err, "Could not resolve alert")
	}
	return c.JSON(alert)
}
