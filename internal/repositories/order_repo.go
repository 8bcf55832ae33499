package repositories

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
)

// ErrOrderNotFound is returned when an exact-match order lookup finds
// nothing. Payment confirmation must not fabricate an order on this.
var ErrOrderNotFound = errors.New("order not found")

// ErrInsufficientStock is the sentinel callers test with errors.Is when
// a checkout is rejected for lack of sellable quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// StockShortfall describes one rejected line.
type StockShortfall struct {
	VariantID string `json:"variant_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError carries the per-line shortfall report for a
// rejected checkout. The whole checkout fails; no partial state is kept.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.VariantID, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

// Is lets errors.Is(err, ErrInsufficientStock) match.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// OrderRepository defines the interface for order data access. Finalize
// and the status transitions are atomic: either every side effect of the
// call lands, or none do.
type OrderRepository interface {
	// Finalize persists the order with its items, links deduplicated
	// shipping/billing addresses, and reserves inventory for every line
	// with a conditional reserved+qty <= on_hand update, all in one
	// transaction. On any shortfall it returns *InsufficientStockError
	// and leaves no state behind.
	Finalize(order *models.Order, shipping, billing *models.Address) error
	GetByID(id string) (*models.Order, error)
	// GetByPaymentRef is an exact-match lookup by the external payment
	// intent reference.
	GetByPaymentRef(ref string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	// MarkPaidByRef flips PENDING -> PAID for the order holding ref.
	// Already-paid orders are returned unchanged; unknown refs return
	// ErrOrderNotFound.
	MarkPaidByRef(ref string) (*models.Order, error)
	// Cancel moves a cancellable order to CANCELLED and releases its
	// reservations (reserved -= qty per line).
	Cancel(id string) (*models.Order, error)
	// Fulfill moves a paid order to FULFILLED and converts reservations
	// into permanent stock decrements (on_hand -= qty, reserved -= qty).
	Fulfill(id string) (*models.Order, error)
}
