package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// OrderItem is a frozen snapshot of a cart line at the moment the order
// was created. Later catalog price edits never touch it.
type OrderItem struct {
	ID             string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID        string `json:"order_id" gorm:"index;type:varchar(36)"`
	VariantID      string `json:"variant_id" gorm:"type:varchar(36)"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            int    `json:"qty"`
}

// Order is a durable checkout result. Created once, never deleted;
// status moves via payment confirmation and fulfillment transitions.
type Order struct {
	ID                string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            *string     `json:"user_id,omitempty" gorm:"index;type:varchar(36)"`
	Status            OrderStatus `json:"status" gorm:"type:varchar(20)"`
	TotalCents        int64       `json:"total_cents"`
	Currency          string      `json:"currency" gorm:"type:varchar(3)"`
	PaymentRef        *string     `json:"payment_ref,omitempty" gorm:"uniqueIndex;type:varchar(100)"`
	ShippingAddressID *string     `json:"shipping_address_id,omitempty" gorm:"type:varchar(36)"`
	BillingAddressID  *string     `json:"billing_address_id,omitempty" gorm:"type:varchar(36)"`
	Items             []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// CanCancel reports whether the order may still move to CANCELLED.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaid
}

// CanFulfill reports whether the order may move to FULFILLED.
func (o *Order) CanFulfill() bool {
	return o.Status == OrderStatusPaid
}
