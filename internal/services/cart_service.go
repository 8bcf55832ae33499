package services

import (
	"context"
	"fmt"
	"strconv"

	"storefront/internal/cartstore"
	"storefront/internal/repositories"
)

// CartItem is one priced, display-ready cart line.
type CartItem struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	SKU            string `json:"sku"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            int    `json:"qty"`
	LineTotalCents int64  `json:"line_total_cents"`
	ImageURL       string `json:"image_url,omitempty"`
	VariantLabel   string `json:"variant_label,omitempty"`
}

// CartView is the reconciled cart as shown to the buyer.
type CartView struct {
	Items         []CartItem `json:"items"`
	SubtotalCents int64      `json:"subtotal_cents"`
}

// CartService reconciles the raw cart hash against the catalog and
// applies server-side quantity deltas.
type CartService struct {
	store       cartstore.Store
	variantRepo repositories.VariantRepository
}

// NewCartService creates a new CartService.
func NewCartService(store cartstore.Store, variantRepo repositories.VariantRepository) *CartService {
	return &CartService{
		store:       store,
		variantRepo: variantRepo,
	}
}

// Resolve produces the priced cart view for a token. A missing token,
// an expired cart, or a cart whose variants all vanished from the
// catalog resolve to an empty view, never an error. Store failures do
// propagate so callers can tell "empty" from "unreachable".
func (s *CartService) Resolve(ctx context.Context, cartID string) (*CartView, error) {
	view := &CartView{Items: []CartItem{}}
	if cartID == "" {
		return view, nil
	}

	raw, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return view, nil
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}

	variants, err := s.variantRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart %s: %w", cartID, err)
	}

	// Variants referenced in the cart but gone from the catalog are
	// silently dropped; their orphaned fields stay in the store until
	// the TTL reaps them.
	for _, v := range variants {
		qty, err := strconv.Atoi(raw[v.ID])
		if err != nil || qty <= 0 {
			continue
		}
		title := ""
		if v.Product != nil {
			title = v.Product.Title
		}
		item := CartItem{
			ID:             v.ID,
			Title:          title,
			SKU:            v.SKU,
			UnitPriceCents: v.PriceCents,
			Qty:            qty,
			LineTotalCents: v.PriceCents * int64(qty),
			ImageURL:       v.PrimaryImageURL(),
			VariantLabel:   v.Label(),
		}
		view.Items = append(view.Items, item)
		view.SubtotalCents += item.LineTotalCents
	}
	return view, nil
}

// AddItem adds qty units of a variant to the cart and returns the new
// stored quantity.
func (s *CartService) AddItem(ctx context.Context, cartID, variantID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be a positive integer, got %d", qty)
	}
	return s.ApplyDelta(ctx, cartID, variantID, qty)
}

// ApplyDelta applies a net quantity delta against the authoritative
// store value: current + delta, clamped at zero. A result of zero
// removes the field entirely so quantities are never stored negative or
// zero. Every surviving write refreshes the cart's idle TTL.
func (s *CartService) ApplyDelta(ctx context.Context, cartID, variantID string, delta int) (int, error) {
	if cartID == "" || variantID == "" {
		return 0, fmt.Errorf("cart and variant identifiers are required")
	}

	raw, err := s.store.Get(ctx, cartID)
	if err != nil {
		return 0, err
	}
	current := 0
	if v, ok := raw[variantID]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			current = parsed
		}
	}

	next := current + delta
	if next <= 0 {
		if err := s.store.RemoveField(ctx, cartID, variantID); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err := s.store.SetField(ctx, cartID, variantID, strconv.Itoa(next)); err != nil {
		return 0, err
	}
	return next, nil
}
