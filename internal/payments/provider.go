// Package payments defines the opaque payment collaborator the checkout
// flow hands amounts to. Capture itself is external: the storefront only
// ever sees the intent reference, synchronously at order creation or
// asynchronously through the payment webhook.
package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Provider creates a payment intent for an amount and returns the
// reference the confirmation webhook will later carry back.
type Provider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error)
}

// OfflineProvider issues locally generated references without talking
// to a payment processor. Used for development and as the default when
// no processor is configured; the webhook contract is identical.
type OfflineProvider struct{}

// NewOfflineProvider creates a new OfflineProvider.
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

// CreateIntent returns a fresh unique reference.
func (p *OfflineProvider) CreateIntent(_ context.Context, amountCents int64, currency string) (string, error) {
	if amountCents < 0 {
		return "", fmt.Errorf("amount must not be negative, got %d", amountCents)
	}
	if currency == "" {
		return "", fmt.Errorf("currency is required")
	}
	return "pi_" + uuid.New().String(), nil
}
