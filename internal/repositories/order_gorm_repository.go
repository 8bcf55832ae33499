package repositories

import (
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Finalize persists the order, its items and addresses, and reserves
// inventory, all inside one transaction. A shortfall on any line rolls
// back everything and reports every short line at once.
func (r *GORMOrderRepository) Finalize(order *models.Order, shipping, billing *models.Address) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		shipID, err := resolveAddress(tx, order.UserID, shipping)
		if err != nil {
			return err
		}
		order.ShippingAddressID = shipID

		billID, err := resolveAddress(tx, order.UserID, billing)
		if err != nil {
			return err
		}
		order.BillingAddressID = billID

		for i := range order.Items {
			if order.Items[i].ID == "" {
				order.Items[i].ID = uuid.New().String()
			}
			order.Items[i].OrderID = order.ID
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		var shortfalls []StockShortfall
		for _, it := range order.Items {
			res := tx.Model(&models.ProductVariant{}).
				Where("id = ? AND reserved + ? <= on_hand", it.VariantID, it.Qty).
				UpdateColumn("reserved", gorm.Expr("reserved + ?", it.Qty))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock for variant %s: %w", it.VariantID, res.Error)
			}
			if res.RowsAffected == 0 {
				var v models.ProductVariant
				available := 0
				if err := tx.First(&v, "id = ?", it.VariantID).Error; err == nil {
					available = v.Available()
				}
				shortfalls = append(shortfalls, StockShortfall{
					VariantID: it.VariantID,
					Requested: it.Qty,
					Available: available,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &InsufficientStockError{Shortfalls: shortfalls}
		}
		return nil
	})
}

// resolveAddress reuses a structurally identical prior address for an
// identified customer, or creates a new row. Guest addresses are always
// created unattached.
func resolveAddress(tx *gorm.DB, userID *string, addr *models.Address) (*string, error) {
	if addr == nil {
		return nil, nil
	}
	if userID != nil {
		var existing []models.Address
		if err := tx.Where("user_id = ? AND type = ?", *userID, addr.Type).Find(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to look up addresses: %w", err)
		}
		for i := range existing {
			if existing[i].Matches(addr) {
				return &existing[i].ID, nil
			}
		}
		addr.UserID = userID
	}
	if addr.ID == "" {
		addr.ID = uuid.New().String()
	}
	if err := tx.Create(addr).Error; err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &addr.ID, nil
}

// GetByID retrieves an order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByPaymentRef retrieves the order holding the external payment
// reference. The match is exact; a missing ref is ErrOrderNotFound.
func (r *GORMOrderRepository) GetByPaymentRef(ref string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "payment_ref = ?", ref).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by payment ref: %w", err)
	}
	return &order, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// MarkPaidByRef flips the matching order from PENDING to PAID. An order
// already paid is returned as-is so webhook retries stay idempotent.
func (r *GORMOrderRepository) MarkPaidByRef(ref string) (*models.Order, error) {
	var order *models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Preload("Items").First(&o, "payment_ref = ?", ref).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to get order by payment ref: %w", err)
		}
		if o.Status == models.OrderStatusPaid {
			order = &o
			return nil
		}
		if o.Status != models.OrderStatusPending {
			return fmt.Errorf("order %s cannot move to PAID from %s", o.ID, o.Status)
		}
		if err := tx.Model(&o).UpdateColumn("status", models.OrderStatusPaid).Error; err != nil {
			return fmt.Errorf("failed to mark order %s paid: %w", o.ID, err)
		}
		o.Status = models.OrderStatusPaid
		order = &o
		return nil
	})
	return order, err
}

// Cancel moves the order to CANCELLED and releases its reservations.
func (r *GORMOrderRepository) Cancel(id string) (*models.Order, error) {
	return r.transition(id, models.OrderStatusCancelled, func(o *models.Order) bool { return o.CanCancel() },
		func(tx *gorm.DB, it models.OrderItem) error {
			return tx.Model(&models.ProductVariant{}).
				Where("id = ?", it.VariantID).
				UpdateColumn("reserved", gorm.Expr("reserved - ?", it.Qty)).Error
		})
}

// Fulfill moves the order to FULFILLED, converting reservations into
// permanent on-hand decrements.
func (r *GORMOrderRepository) Fulfill(id string) (*models.Order, error) {
	return r.transition(id, models.OrderStatusFulfilled, func(o *models.Order) bool { return o.CanFulfill() },
		func(tx *gorm.DB, it models.OrderItem) error {
			return tx.Model(&models.ProductVariant{}).
				Where("id = ?", it.VariantID).
				UpdateColumns(map[string]interface{}{
					"reserved": gorm.Expr("reserved - ?", it.Qty),
					"on_hand":  gorm.Expr("on_hand - ?", it.Qty),
				}).Error
		})
}

func (r *GORMOrderRepository) transition(id string, to models.OrderStatus, allowed func(*models.Order) bool, perItem func(*gorm.DB, models.OrderItem) error) (*models.Order, error) {
	var order *models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Preload("Items").First(&o, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to get order by ID %s: %w", id, err)
		}
		if !allowed(&o) {
			return fmt.Errorf("order %s cannot move to %s from %s", o.ID, to, o.Status)
		}
		for _, it := range o.Items {
			if err := perItem(tx, it); err != nil {
				return fmt.Errorf("failed to adjust inventory for variant %s: %w", it.VariantID, err)
			}
		}
		if err := tx.Model(&o).UpdateColumn("status", to).Error; err != nil {
			return fmt.Errorf("failed to update order %s status: %w", o.ID, err)
		}
		o.Status = to
		order = &o
		return nil
	})
	return order, err
}
