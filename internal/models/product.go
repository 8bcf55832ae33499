package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// Product represents a catalog product. Sellable units are its variants.
type Product struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title       string           `json:"title" validate:"required,min=3,max=200"`
	Brand       string           `json:"brand" validate:"omitempty,max=100"`
	Description string           `json:"description" validate:"omitempty,max=2000"`
	Variants    []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
	gorm.Model                   // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// VariantAttributes is the merchandising attribute bag for a variant,
// split into display attributes and an ordered image list so label and
// image selection stay total functions instead of key probing.
type VariantAttributes struct {
	Display   map[string]string `json:"display,omitempty"`
	ImageURLs []string          `json:"images,omitempty"`
}

// Value implements driver.Valuer so gorm stores the attributes as JSON.
func (a VariantAttributes) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variant attributes: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading the JSON column back.
func (a *VariantAttributes) Scan(value interface{}) error {
	if value == nil {
		*a = VariantAttributes{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for variant attributes: %T", value)
	}
	if len(data) == 0 {
		*a = VariantAttributes{}
		return nil
	}
	return json.Unmarshal(data, a)
}

// ProductVariant is a sellable SKU-level configuration of a product.
// Prices are integer minor currency units (cents).
type ProductVariant struct {
	ID         string            `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID  string            `json:"product_id" gorm:"index;type:varchar(36)" validate:"required"`
	Product    *Product          `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	SKU        string            `json:"sku" gorm:"uniqueIndex;type:varchar(100)" validate:"required,max=100"`
	PriceCents int64             `json:"price_cents" validate:"gte=0"`
	Currency   string            `json:"currency" gorm:"type:varchar(3)" validate:"required,len=3"`
	Attributes VariantAttributes `json:"attributes" gorm:"type:text"`
	OnHand     int               `json:"on_hand" validate:"gte=0"`
	Reserved   int               `json:"reserved" validate:"gte=0"`
	gorm.Model
}

// Available is the derived sellable quantity. It can go negative when an
// admin corrects on-hand below the current reservation level; callers
// that show it to buyers should clamp at zero.
func (v *ProductVariant) Available() int {
	return v.OnHand - v.Reserved
}

// Keys tried, in order, when deriving a display label from the
// attribute bag.
var labelKeys = []string{"option", "color", "name", "flavor"}

// Label derives a human-friendly variant label. It prefers a
// display-worthy attribute, falls back to the SKU, then to a generic
// placeholder. Display only; never part of the identity model.
func (v *ProductVariant) Label() string {
	for _, k := range labelKeys {
		if val, ok := v.Attributes.Display[k]; ok && val != "" {
			return val
		}
	}
	if v.SKU != "" {
		return v.SKU
	}
	return "Standard"
}

// PrimaryImageURL returns the first variant-scoped image, if any.
func (v *ProductVariant) PrimaryImageURL() string {
	if len(v.Attributes.ImageURLs) > 0 {
		return v.Attributes.ImageURLs[0]
	}
	return ""
}
