package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"storefront/internal/cartstore"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

var emailPattern = regexp.MustCompile(`.+@.+\..+`)

// CheckoutInput carries everything the finalizer needs: the cart token
// from the cookie, the contact/shipping form, the optional authenticated
// identity, and the optional payment confirmation reference.
type CheckoutInput struct {
	CartID     string
	UserID     *string
	Email      string
	Name       string
	Shipping   *models.Address
	Billing    *models.Address
	PaymentRef string
}

// CheckoutResult is what the handler redirects on. An empty cart yields
// a redirect back to checkout with no order, which is not an error.
type CheckoutResult struct {
	RedirectURL string        `json:"url"`
	OrderID     string        `json:"order_id,omitempty"`
	Order       *models.Order `json:"order,omitempty"`
}

// CheckoutService converts a live cart into a durable order with its
// inventory reservation, and applies payment confirmation events.
type CheckoutService struct {
	store       cartstore.Store
	variantRepo repositories.VariantRepository
	orderRepo   repositories.OrderRepository
	userRepo    repositories.UserRepository
	provider    payments.Provider
	mqClient    *rabbitmq.Client
	currency    string
}

// NewCheckoutService creates a new CheckoutService. mqClient may be nil;
// event publishing is then skipped.
func NewCheckoutService(
	store cartstore.Store,
	variantRepo repositories.VariantRepository,
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	provider payments.Provider,
	mqClient *rabbitmq.Client,
	currency string,
) *CheckoutService {
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutService{
		store:       store,
		variantRepo: variantRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		provider:    provider,
		mqClient:    mqClient,
		currency:    currency,
	}
}

// Checkout finalizes a cart: snapshot prices, resolve the customer
// identity, create the PENDING order with frozen line items, reserve
// inventory, clear the cart, and return the redirect target.
//
// A checkout carrying a payment reference that already produced an order
// returns that order instead of creating a second one, so retries cannot
// double-reserve.
func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if input.CartID == "" {
		return &CheckoutResult{RedirectURL: "/checkout"}, nil
	}

	if input.PaymentRef != "" {
		if existing, err := s.orderRepo.GetByPaymentRef(input.PaymentRef); err == nil {
			log.Printf("Checkout replay for payment ref %s; returning order %s", input.PaymentRef, existing.ID)
			return &CheckoutResult{RedirectURL: "/account", OrderID: existing.ID, Order: existing}, nil
		} else if !errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, err
		}
	}

	raw, err := s.store.Get(ctx, input.CartID)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return &CheckoutResult{RedirectURL: "/checkout"}, nil
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	variants, err := s.variantRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot cart prices: %w", err)
	}

	// Unit prices are frozen here; later catalog edits never touch the
	// order items.
	var items []models.OrderItem
	var total int64
	for _, v := range variants {
		qty, err := strconv.Atoi(raw[v.ID])
		if err != nil || qty <= 0 {
			continue
		}
		items = append(items, models.OrderItem{
			VariantID:      v.ID,
			UnitPriceCents: v.PriceCents,
			Qty:            qty,
		})
		total += v.PriceCents * int64(qty)
	}
	if len(items) == 0 {
		return &CheckoutResult{RedirectURL: "/checkout"}, nil
	}

	userID, err := s.resolveIdentity(input)
	if err != nil {
		return nil, err
	}

	paymentRef := input.PaymentRef
	if paymentRef == "" && s.provider != nil {
		paymentRef, err = s.provider.CreateIntent(ctx, total, s.currency)
		if err != nil {
			return nil, fmt.Errorf("payment provider rejected the intent: %w", err)
		}
	}

	order := &models.Order{
		UserID:     userID,
		Status:     models.OrderStatusPending,
		TotalCents: total,
		Currency:   s.currency,
		Items:      items,
	}
	if paymentRef != "" {
		order.PaymentRef = &paymentRef
	}

	if err := s.orderRepo.Finalize(order, input.Shipping, input.Billing); err != nil {
		return nil, err
	}

	// Clear the cart only after the order transaction committed; a
	// failure between commit and here leaves a still-resolvable cart,
	// and the payment ref check above keeps a retry from ordering twice.
	for id := range raw {
		if err := s.store.RemoveField(ctx, input.CartID, id); err != nil {
			log.Printf("Failed to clear cart %s line %s after order %s: %v", input.CartID, id, order.ID, err)
		}
	}

	s.publish(rabbitmq.KeyOrderCreated, order)

	return &CheckoutResult{RedirectURL: "/account", OrderID: order.ID, Order: order}, nil
}

// resolveIdentity prefers the authenticated session identity; otherwise
// it upserts a customer by email so guests can check out. A checkout
// with neither stays anonymous.
func (s *CheckoutService) resolveIdentity(input CheckoutInput) (*string, error) {
	if input.UserID != nil && *input.UserID != "" {
		return input.UserID, nil
	}
	if input.Email == "" || !emailPattern.MatchString(input.Email) {
		return nil, nil
	}
	user, err := s.userRepo.FindOrCreateByEmail(input.Email, input.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer identity: %w", err)
	}
	return &user.ID, nil
}

// ConfirmPayment applies an asynchronous payment success event: the
// order holding the reference moves from PENDING to PAID. The lookup is
// exact; an unknown reference is reported, never papered over with a
// fabricated order.
func (s *CheckoutService) ConfirmPayment(ref string) (*models.Order, error) {
	if ref == "" {
		return nil, fmt.Errorf("payment reference is required")
	}
	order, err := s.orderRepo.MarkPaidByRef(ref)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			log.Printf("Payment confirmation for unknown ref %s ignored", ref)
		}
		return nil, err
	}
	s.publish(rabbitmq.KeyOrderPaid, order)
	return order, nil
}

func (s *CheckoutService) publish(routingKey string, order *models.Order) {
	if s.mqClient == nil {
		return
	}
	event := map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
		"total":    order.TotalCents,
		"currency": order.Currency,
	}
	if order.UserID != nil {
		event["user_id"] = *order.UserID
	}
	if err := s.mqClient.PublishJSON(routingKey, event); err != nil {
		log.Printf("Warning: failed to publish %s for order %s: %v", routingKey, order.ID, err)
	}
}
