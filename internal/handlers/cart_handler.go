package handlers

import (
	"log"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CartCookie is the cookie carrying the opaque cart token.
const CartCookie = "cart_id"

// CartHandler handles HTTP requests for the ephemeral cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddToCart)
	cartRoutes.Post("/update", h.HandleUpdateCart)
}

// cartID reads the cart token cookie, or "" when absent. The cookie may
// outlive the store record; a present cookie with an empty cart is a
// valid state.
func cartID(c *fiber.Ctx) string {
	return c.Cookies(CartCookie)
}

// ensureCartID returns the cart token, minting one and setting the
// cookie when the browser has none yet. Carts are created lazily on the
// first add.
func ensureCartID(c *fiber.Ctx) string {
	id := c.Cookies(CartCookie)
	if id == "" {
		id = uuid.New().String()
	}
	// Re-set on every response so the cookie sticks across runtimes.
	c.Cookie(&fiber.Cookie{
		Name:     CartCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

// HandleGetCart resolves the cart into its priced, display-ready view.
// No cookie or an expired cart yields an empty view, not an error.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.Resolve(c.UserContext(), cartID(c))
	if err != nil {
		log.Printf("Error resolving cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(view)
}

// AddToCartRequest represents the request body for adding a line.
type AddToCartRequest struct {
	VariantID string `json:"variant_id" form:"variant_id"`
	Qty       int    `json:"qty" form:"qty"`
}

// HandleAddToCart adds units of a variant to the cart, minting the cart
// cookie when needed. Accepts JSON or form posts from the product page.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.VariantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "variant_id is required",
		})
	}
	if req.Qty == 0 {
		req.Qty = 1
	}

	id := ensureCartID(c)
	qty, err := h.service.AddItem(c.UserContext(), id, req.VariantID, req.Qty)
	if err != nil {
		log.Printf("Error adding to cart %s: %v", id, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not add to cart",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"ok":         true,
		"cart_id":    id,
		"variant_id": req.VariantID,
		"qty":        qty,
	})
}

// UpdateCartRequest represents a net quantity delta for one line.
type UpdateCartRequest struct {
	VariantID string `json:"variant_id" form:"variant_id"`
	Delta     int    `json:"delta" form:"delta"`
}

// HandleUpdateCart applies a net delta against the authoritative stored
// quantity, clamped at zero. Without a cart cookie there is nothing to
// update and the call is a no-op.
func (h *CartHandler) HandleUpdateCart(c *fiber.Ctx) error {
	var req UpdateCartRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.VariantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "variant_id is required",
		})
	}

	id := cartID(c)
	if id == "" {
		return c.JSON(fiber.Map{"ok": true}) // nothing to update
	}

	qty, err := h.service.ApplyDelta(c.UserContext(), id, req.VariantID, req.Delta)
	if err != nil {
		log.Printf("Error updating cart %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"ok": true, "variant_id": req.VariantID, "qty": qty})
}
