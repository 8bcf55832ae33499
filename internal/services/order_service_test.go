package services_test

import (
	"context"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

// placeOrder runs a full checkout against the fixture and returns the
// created order, so the transition tests start from a real reservation.
func placeOrder(t *testing.T, f *checkoutFixture, cartID string) *models.Order {
	t.Helper()
	ctx := context.Background()
	result, err := f.service.Checkout(ctx, services.CheckoutInput{
		CartID: cartID, Email: "buyer@example.com",
		Shipping: testShipping(), Billing: testBilling(),
	})
	assert.NoError(t, err)
	order, err := f.orders.GetByID(result.OrderID)
	assert.NoError(t, err)
	return order
}

func TestOrderService_CancelReleasesReservation(t *testing.T) {
	f := newCheckoutFixture(t)
	orderService := services.NewOrderService(f.orders, nil)
	ctx := context.Background()

	seedVariant(t, f.variants, models.ProductVariant{
		ID: "var_1", ProductID: "prod_1", SKU: "TR-1", PriceCents: 1999, Currency: "usd", OnHand: 5,
	})
	assert.NoError(t, f.store.SetField(ctx, "cart-1", "var_1", "3"))
	order := placeOrder(t, f, "cart-1")

	v, _ := f.variants.GetByID("var_1")
	assert.Equal(t, 3, v.Reserved)

	cancelled, err := orderService.CancelOrder(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	// The reservation is released, on-hand untouched
	v, _ = f.variants.GetByID("var_1")
	assert.Equal(t, 0, v.Reserved)
	assert.Equal(t, 5, v.OnHand)

	// Cancelling twice is rejected
	_, err = orderService.CancelOrder(order.ID)
	assert.Error(t, err)
}

func TestOrderService_FulfillConsumesStock(t *testing.T) {
	f := newCheckoutFixture(t)
	orderService := services.NewOrderService(f.orders, nil)
	ctx := context.Background()

	seedVariant(t, f.variants, models.ProductVariant{
		ID: "var_1", ProductID: "prod_1", SKU: "TR-1", PriceCents: 1999, Currency: "usd", OnHand: 5,
	})
	assert.NoError(t, f.store.SetField(ctx, "cart-1", "var_1", "2"))
	order := placeOrder(t, f, "cart-1")

	// A pending order cannot ship
	_, err := orderService.FulfillOrder(order.ID)
	assert.Error(t, err)

	_, err = f.orders.MarkPaidByRef(*order.PaymentRef)
	assert.NoError(t, err)

	fulfilled, err := orderService.FulfillOrder(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusFulfilled, fulfilled.Status)

	// The reservation converted into a permanent decrement
	v, _ := f.variants.GetByID("var_1")
	assert.Equal(t, 0, v.Reserved)
	assert.Equal(t, 3, v.OnHand)

	// A fulfilled order can no longer be cancelled
	_, err = orderService.CancelOrder(order.ID)
	assert.Error(t, err)
}

func TestOrderService_ListOrdersForUser(t *testing.T) {
	f := newCheckoutFixture(t)
	orderService := services.NewOrderService(f.orders, nil)
	ctx := context.Background()

	seedVariant(t, f.variants, models.ProductVariant{
		ID: "var_1", ProductID: "prod_1", SKU: "TR-1", PriceCents: 1999, Currency: "usd", OnHand: 10,
	})
	assert.NoError(t, f.store.SetField(ctx, "cart-1", "var_1", "1"))
	order := placeOrder(t, f, "cart-1")
	assert.NotNil(t, order.UserID)

	orders, err := orderService.ListOrdersForUser(*order.UserID)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = orderService.ListOrdersForUser("somebody-else")
	assert.NoError(t, err)
	assert.Empty(t, orders)

	_, err = orderService.GetOrder("no-such-order")
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
}

func TestInventoryService_SetOnHand(t *testing.T) {
	variants := repositories.NewMockVariantRepository()
	service := services.NewInventoryService(variants)

	seedVariant(t, variants, models.ProductVariant{
		ID: "var_1", ProductID: "prod_1", SKU: "TR-1", PriceCents: 1999, Currency: "usd", OnHand: 5, Reserved: 2,
	})

	// Negative and unidentified corrections are rejected before any write
	assert.Error(t, service.SetOnHand("var_1", -1))
	assert.Error(t, service.SetOnHand("", 3))

	v, _ := variants.GetByID("var_1")
	assert.Equal(t, 5, v.OnHand)

	assert.NoError(t, service.SetOnHand("var_1", 1))

	// The correction may drop on-hand below the reservation level;
	// availability goes negative rather than lying
	avail, err := service.Availability("var_1")
	assert.NoError(t, err)
	assert.Equal(t, 1, avail.OnHand)
	assert.Equal(t, 2, avail.Reserved)
	assert.Equal(t, -1, avail.Available)

	_, err = service.Availability("no-such-variant")
	assert.Error(t, err)
}
