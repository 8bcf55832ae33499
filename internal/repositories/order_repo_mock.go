package repositories

import (
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// It shares a MockVariantRepository so reservations move the same
// counters a caller reads back through the variant interface.
type MockOrderRepository struct {
	orders    map[string]models.Order
	addresses map[string]models.Address
	variants  *MockVariantRepository
	mu        sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository
// backed by the given variant repository.
func NewMockOrderRepository(variants *MockVariantRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:    make(map[string]models.Order),
		addresses: make(map[string]models.Address),
		variants:  variants,
	}
}

// Finalize mirrors the transactional semantics of the GORM
// implementation: reservations are checked before anything is stored,
// and a shortfall leaves no trace.
func (r *MockOrderRepository) Finalize(order *models.Order, shipping, billing *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var shortfalls []StockShortfall
	for _, it := range order.Items {
		v, err := r.variants.GetByID(it.VariantID)
		if err != nil {
			shortfalls = append(shortfalls, StockShortfall{VariantID: it.VariantID, Requested: it.Qty})
			continue
		}
		if v.Reserved+it.Qty > v.OnHand {
			shortfalls = append(shortfalls, StockShortfall{
				VariantID: it.VariantID,
				Requested: it.Qty,
				Available: v.Available(),
			})
		}
	}
	if len(shortfalls) > 0 {
		return &InsufficientStockError{Shortfalls: shortfalls}
	}

	for _, it := range order.Items {
		qty := it.Qty
		if err := r.variants.mutate(it.VariantID, func(v *models.ProductVariant) error {
			v.Reserved += qty
			return nil
		}); err != nil {
			return err
		}
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.ShippingAddressID = r.resolveAddress(order.UserID, shipping)
	order.BillingAddressID = r.resolveAddress(order.UserID, billing)
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *MockOrderRepository) resolveAddress(userID *string, addr *models.Address) *string {
	if addr == nil {
		return nil
	}
	if userID != nil {
		for id, existing := range r.addresses {
			if existing.UserID != nil && *existing.UserID == *userID && existing.Matches(addr) {
				out := id
				return &out
			}
		}
		addr.UserID = userID
	}
	if addr.ID == "" {
		addr.ID = uuid.New().String()
	}
	r.addresses[addr.ID] = *addr
	return &addr.ID
}

// AddressCount reports how many address rows exist, for tests asserting
// deduplication.
func (r *MockOrderRepository) AddressCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.addresses)
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

// GetByPaymentRef returns the order holding the payment reference.
func (r *MockOrderRepository) GetByPaymentRef(ref string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.PaymentRef != nil && *o.PaymentRef == ref {
			out := o
			return &out, nil
		}
	}
	return nil, ErrOrderNotFound
}

// ListByUser returns a user's orders.
func (r *MockOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Order
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// MarkPaidByRef flips the matching order from PENDING to PAID.
func (r *MockOrderRepository) MarkPaidByRef(ref string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, o := range r.orders {
		if o.PaymentRef == nil || *o.PaymentRef != ref {
			continue
		}
		switch o.Status {
		case models.OrderStatusPaid:
			out := o
			return &out, nil
		case models.OrderStatusPending:
			o.Status = models.OrderStatusPaid
			r.orders[id] = o
			out := o
			return &out, nil
		default:
			return nil, fmt.Errorf("order %s cannot move to PAID from %s", o.ID, o.Status)
		}
	}
	return nil, ErrOrderNotFound
}

// Cancel releases reservations and moves the order to CANCELLED.
func (r *MockOrderRepository) Cancel(id string) (*models.Order, error) {
	return r.transition(id, models.OrderStatusCancelled,
		func(o *models.Order) bool { return o.CanCancel() },
		func(v *models.ProductVariant, qty int) {
			v.Reserved -= qty
		})
}

// Fulfill converts reservations into permanent stock decrements and
// moves the order to FULFILLED.
func (r *MockOrderRepository) Fulfill(id string) (*models.Order, error) {
	return r.transition(id, models.OrderStatusFulfilled,
		func(o *models.Order) bool { return o.CanFulfill() },
		func(v *models.ProductVariant, qty int) {
			v.Reserved -= qty
			v.OnHand -= qty
		})
}

func (r *MockOrderRepository) transition(id string, to models.OrderStatus, allowed func(*models.Order) bool, perItem func(*models.ProductVariant, int)) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if !allowed(&o) {
		return nil, fmt.Errorf("order %s cannot move to %s from %s", o.ID, to, o.Status)
	}
	for _, it := range o.Items {
		qty := it.Qty
		if err := r.variants.mutate(it.VariantID, func(v *models.ProductVariant) error {
			perItem(v, qty)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	o.Status = to
	r.orders[id] = o
	out := o
	return &out, nil
}
