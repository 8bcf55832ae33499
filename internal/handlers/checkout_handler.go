package handlers

import (
	"errors"
	"fmt"
	"log"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles the checkout finalization and the payment
// confirmation webhook.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
	router.Post("/webhooks/payment", h.HandlePaymentWebhook)
}

// CheckoutRequest carries the contact and shipping form. Billing fields
// are optional; when absent the shipping address doubles as billing.
type CheckoutRequest struct {
	Name        string `json:"name" form:"name" validate:"omitempty,max=200"`
	Email       string `json:"email" form:"email" validate:"omitempty,email"`
	Line1       string `json:"line1" form:"line1" validate:"required,max=200"`
	Line2       string `json:"line2" form:"line2" validate:"omitempty,max=200"`
	City        string `json:"city" form:"city" validate:"required,max=100"`
	Region      string `json:"region" form:"region" validate:"omitempty,max=100"`
	Postal      string `json:"postal" form:"postal" validate:"required,max=20"`
	Country     string `json:"country" form:"country" validate:"required,max=2"`
	BillLine1   string `json:"billing_line1" form:"billing_line1" validate:"omitempty,max=200"`
	BillLine2   string `json:"billing_line2" form:"billing_line2" validate:"omitempty,max=200"`
	BillCity    string `json:"billing_city" form:"billing_city" validate:"omitempty,max=100"`
	BillRegion  string `json:"billing_region" form:"billing_region" validate:"omitempty,max=100"`
	BillPostal  string `json:"billing_postal" form:"billing_postal" validate:"omitempty,max=20"`
	BillCountry string `json:"billing_country" form:"billing_country" validate:"omitempty,max=2"`
	PaymentRef  string `json:"payment_ref" form:"payment_ref" validate:"omitempty,max=100"`
}

// HandleCheckout finalizes the cart behind the cart cookie. Works for
// authenticated sessions and for guests with an email. An empty cart
// redirects back to checkout instead of failing; a stock shortfall is a
// conflict with the per-line detail.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	input := services.CheckoutInput{
		CartID:     cartID(c),
		UserID:     middleware.UserID(c),
		Email:      req.Email,
		Name:       req.Name,
		Shipping:   req.shippingAddress(),
		Billing:    req.billingAddress(),
		PaymentRef: req.PaymentRef,
	}

	result, err := h.service.Checkout(c.UserContext(), input)
	if err != nil {
		log.Printf("Error finalizing checkout: %v", err)
		var stockErr *repositories.InsufficientStockError
		if errors.As(err, &stockErr) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message":    "Some items are no longer available",
				"shortfalls": stockErr.Shortfalls,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete checkout",
			"error":   err.Error(),
		})
	}
	return c.JSON(result)
}

func (r *CheckoutRequest) shippingAddress() *models.Address {
	return &models.Address{
		Type:    models.AddressTypeShipping,
		Name:    r.Name,
		Line1:   r.Line1,
		Line2:   r.Line2,
		City:    r.City,
		Region:  r.Region,
		Postal:  r.Postal,
		Country: r.Country,
	}
}

func (r *CheckoutRequest) billingAddress() *models.Address {
	if r.BillLine1 == "" {
		return &models.Address{
			Type:    models.AddressTypeBilling,
			Name:    r.Name,
			Line1:   r.Line1,
			Line2:   r.Line2,
			City:    r.City,
			Region:  r.Region,
			Postal:  r.Postal,
			Country: r.Country,
		}
	}
	return &models.Address{
		Type:    models.AddressTypeBilling,
		Name:    r.Name,
		Line1:   r.BillLine1,
		Line2:   r.BillLine2,
		City:    r.BillCity,
		Region:  r.BillRegion,
		Postal:  r.BillPostal,
		Country: r.BillCountry,
	}
}

// PaymentWebhookRequest is the out-of-band payment success event from
// the payment collaborator.
type PaymentWebhookRequest struct {
	PaymentRef string `json:"payment_ref" form:"payment_ref"`
	EventType  string `json:"event_type" form:"event_type"`
}

// HandlePaymentWebhook flips the matching order to PAID. Unknown
// references are acknowledged but ignored so the collaborator stops
// retrying; nothing is fabricated.
func (h *CheckoutHandler) HandlePaymentWebhook(c *fiber.Ctx) error {
	var req PaymentWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing payment webhook body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.PaymentRef == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "payment_ref is required",
		})
	}
	if req.EventType != "" && req.EventType != "payment.succeeded" {
		return c.JSON(fiber.Map{"received": true, "ignored": true})
	}

	order, err := h.service.ConfirmPayment(req.PaymentRef)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.JSON(fiber.Map{"received": true, "ignored": true})
		}
		log.Printf("Error confirming payment %s: %v", req.PaymentRef, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not confirm payment",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"received": true, "order_id": order.ID, "status": order.Status})
}
