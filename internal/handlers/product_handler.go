package handlers

import (
	"fmt"
	"log"
	"strings"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles catalog reads and the admin CRUD surface,
// including inventory corrections.
type ProductHandler struct {
	products  *services.ProductService
	inventory *services.InventoryService
	validate  *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products *services.ProductService, inventory *services.InventoryService) *ProductHandler {
	return &ProductHandler{
		products:  products,
		inventory: inventory,
		validate:  validator.New(),
	}
}

// RegisterRoutes registers public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterAdminRoutes registers the admin catalog and inventory routes.
// The router is expected to carry AuthRequired + AdminRequired.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/products", h.HandleCreateProduct)
	router.Put("/products/:id", h.HandleUpdateProduct)
	router.Delete("/products/:id", h.HandleDeleteProduct)
	router.Post("/products/:id/variants", h.HandleCreateVariant)
	router.Put("/variants/:id", h.HandleUpdateVariant)
	router.Delete("/variants/:id", h.HandleDeleteVariant)
	router.Post("/variants/:id/inventory", h.HandleSetOnHand)
	router.Get("/variants/:id/availability", h.HandleGetAvailability)
}

// HandleGetProducts retrieves the catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.products.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product with its variants.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.products.GetProductByID(productID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", productID),
			})
		}
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(product); err != nil {
		return validationFailed(c, err)
	}
	if err := h.products.CreateProduct(&product); err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, err)
	}
	product.ID = c.Params("id")
	if err := h.validate.Struct(product); err != nil {
		return validationFailed(c, err)
	}
	if err := h.products.UpdateProduct(&product); err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		return notFoundOrInternal(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.products.DeleteProduct(productID); err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return notFoundOrInternal(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleCreateVariant creates a variant under a product.
func (h *ProductHandler) HandleCreateVariant(c *fiber.Ctx) error {
	var variant models.ProductVariant
	if err := c.BodyParser(&variant); err != nil {
		return badRequest(c, err)
	}
	variant.ProductID = c.Params("id")
	if err := h.validate.Struct(variant); err != nil {
		return validationFailed(c, err)
	}
	if err := h.products.CreateVariant(&variant); err != nil {
		log.Printf("Error creating variant: %v", err)
		return notFoundOrInternal(c, err, "Could not create variant")
	}
	return c.Status(fiber.StatusCreated).JSON(variant)
}

// HandleUpdateVariant updates an existing variant.
func (h *ProductHandler) HandleUpdateVariant(c *fiber.Ctx) error {
	variantID := c.Params("id")
	existing, err := h.products.GetVariantByID(variantID)
	if err != nil {
		return notFoundOrInternal(c, err, "Could not retrieve variant")
	}

	var variant models.ProductVariant
	if err := c.BodyParser(&variant); err != nil {
		return badRequest(c, err)
	}
	variant.ID = variantID
	variant.ProductID = existing.ProductID
	// Inventory counters move through the inventory route and checkout
	// only; a variant edit cannot touch them.
	variant.OnHand = existing.OnHand
	variant.Reserved = existing.Reserved
	variant.Product = nil
	if err := h.validate.Struct(variant); err != nil {
		return validationFailed(c, err)
	}
	if err := h.products.UpdateVariant(&variant); err != nil {
		log.Printf("Error updating variant %s: %v", variantID, err)
		return notFoundOrInternal(c, err, "Could not update variant")
	}
	return c.JSON(variant)
}

// HandleDeleteVariant deletes a variant.
func (h *ProductHandler) HandleDeleteVariant(c *fiber.Ctx) error {
	variantID := c.Params("id")
	if err := h.products.DeleteVariant(variantID); err != nil {
		log.Printf("Error deleting variant %s: %v", variantID, err)
		return notFoundOrInternal(c, err, "Could not delete variant")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// SetOnHandRequest represents an admin inventory correction.
type SetOnHandRequest struct {
	OnHand *int `json:"on_hand" form:"on_hand" validate:"required"`
}

// HandleSetOnHand sets a variant's on-hand count. Rejects missing,
// negative, and non-integer input before touching anything.
func (h *ProductHandler) HandleSetOnHand(c *fiber.Ctx) error {
	var req SetOnHandRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if req.OnHand == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "on_hand is required",
		})
	}
	if err := h.inventory.SetOnHand(c.Params("id"), *req.OnHand); err != nil {
		if strings.Contains(err.Error(), "non-negative") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "on_hand must be a non-negative integer",
			})
		}
		log.Printf("Error setting on-hand for variant %s: %v", c.Params("id"), err)
		return notFoundOrInternal(c, err, "Could not update inventory")
	}
	return c.JSON(fiber.Map{"ok": true, "variant_id": c.Params("id"), "on_hand": *req.OnHand})
}

// HandleGetAvailability reports the inventory ledger for a variant.
func (h *ProductHandler) HandleGetAvailability(c *fiber.Ctx) error {
	availability, err := h.inventory.Availability(c.Params("id"))
	if err != nil {
		return notFoundOrInternal(c, err, "Could not retrieve availability")
	}
	return c.JSON(availability)
}

func badRequest(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
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

func notFoundOrInternal(c *fiber.Ctx, err error, message string) error {
	if strings.Contains(err.Error(), "not found") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
