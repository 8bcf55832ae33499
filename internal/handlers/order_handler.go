package handlers

import (
	"errors"
	"log"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

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

// RegisterRoutes registers the order routes. The router is expected to
// carry AuthRequired; fulfillment additionally needs the admin role.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Post("/:id/fulfill", middleware.AdminRequired(), h.HandleFulfillOrder)
}

// HandleListOrders retrieves the authenticated user's orders.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}
	orders, err := h.service.ListOrdersForUser(*userID)
	if err != nil {
		log.Printf("Error listing orders for user %s: %v", *userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// ownsOrder reports whether the request identity may act on the order.
// Admins may act on any order.
func ownsOrder(c *fiber.Ctx, order *models.Order) bool {
	if role, _ := c.Locals("role").(string); role == models.RoleAdmin {
		return true
	}
	userID := middleware.UserID(c)
	return userID != nil && order.UserID != nil && *order.UserID == *userID
}

// HandleGetOrderByID retrieves a single order owned by the caller.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.Printf("Error getting order %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	if !ownsOrder(c, order) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Order not found",
		})
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels a pending or paid order owned by the
// caller, releasing its inventory reservations.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.Printf("Error getting order %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	if !ownsOrder(c, order) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Order not found",
		})
	}

	cancelled, err := h.service.CancelOrder(orderID)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", orderID, err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Could not cancel order",
			"error":   err.Error(),
		})
	}
	return c.JSON(cancelled)
}

// HandleFulfillOrder marks a paid order fulfilled. Admin only.
func (h *OrderHandler) HandleFulfillOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.FulfillOrder(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.Printf("Error fulfilling order %s: %v", orderID, err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Could not fulfill order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}
