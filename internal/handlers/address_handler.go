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

// AddressHandler serves the authenticated customer's saved address book.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the address book routes. The router is
// expected to carry AuthRequired.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	addressRoutes := router.Group("/account/addresses")
	addressRoutes.Get("/", h.HandleListAddresses)
	addressRoutes.Post("/", h.HandleCreateAddress)
	addressRoutes.Delete("/:id", h.HandleDeleteAddress)
	addressRoutes.Post("/:id/default", h.HandleSetDefaultAddress)
}

// AddressRequest carries a new saved address.
type AddressRequest struct {
	Type    string `json:"type" form:"type" validate:"omitempty,oneof=SHIPPING BILLING"`
	Name    string `json:"name" form:"name" validate:"omitempty,max=200"`
	Line1   string `json:"line1" form:"line1" validate:"required,max=200"`
	Line2   string `json:"line2" form:"line2" validate:"omitempty,max=200"`
	City    string `json:"city" form:"city" validate:"required,max=100"`
	Region  string `json:"region" form:"region" validate:"omitempty,max=100"`
	Postal  string `json:"postal" form:"postal" validate:"required,max=20"`
	Country string `json:"country" form:"country" validate:"required,max=2"`
}

// HandleListAddresses retrieves the caller's saved addresses.
func (h *AddressHandler) HandleListAddresses(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}
	addresses, err := h.service.ListAddresses(*userID)
	if err != nil {
		log.Printf("Error listing addresses for user %s: %v", *userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve addresses",
			"error":   err.Error(),
		})
	}
	return c.JSON(addresses)
}

// HandleCreateAddress saves a new address in the caller's book.
func (h *AddressHandler) HandleCreateAddress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	var req AddressRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing address request body: %v", err)
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

	address := &models.Address{
		Type:    req.Type,
		Name:    req.Name,
		Line1:   req.Line1,
		Line2:   req.Line2,
		City:    req.City,
		Region:  req.Region,
		Postal:  req.Postal,
		Country: req.Country,
	}
	if err := h.service.CreateAddress(*userID, address); err != nil {
		log.Printf("Error creating address for user %s: %v", *userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save address",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleDeleteAddress removes an address the caller owns.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}
	if err := h.service.DeleteAddress(*userID, c.Params("id")); err != nil {
		if errors.Is(err, repositories.ErrAddressNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Address not found",
			})
		}
		log.Printf("Error deleting address %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete address",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// HandleSetDefaultAddress marks an address the caller owns as the
// default one.
func (h *AddressHandler) HandleSetDefaultAddress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}
	if err := h.service.SetDefaultAddress(*userID, c.Params("id")); err != nil {
		if errors.Is(err, repositories.ErrAddressNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Address not found",
			})
		}
		log.Printf("Error setting default address %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not set default address",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"default": c.Params("id")})
}
