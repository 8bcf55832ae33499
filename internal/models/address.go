package models

import "time"

// Address types.
const (
	AddressTypeShipping = "SHIPPING"
	AddressTypeBilling  = "BILLING"
)

// Address is a postal address attached to an order. For identified
// customers a structurally identical prior address is reused; guest
// checkouts always create an unattached row.
type Address struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    *string   `json:"user_id,omitempty" gorm:"index;type:varchar(36)"`
	Type      string    `json:"type" gorm:"type:varchar(10)" validate:"required,oneof=SHIPPING BILLING"`
	Name      string    `json:"name" validate:"omitempty,max=200"`
	Line1     string    `json:"line1" validate:"required,max=200"`
	Line2     string    `json:"line2" validate:"omitempty,max=200"`
	City      string    `json:"city" validate:"required,max=100"`
	Region    string    `json:"region" validate:"omitempty,max=100"`
	Postal    string    `json:"postal" validate:"required,max=20"`
	Country   string    `json:"country" validate:"required,max=2"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// Matches reports structural equality of the postal fields, used to
// deduplicate addresses across orders for the same user. Ownership and
// type take part so a billing row never shadows a shipping row. The
// default flag is bookkeeping, not identity, and stays out.
func (a *Address) Matches(other *Address) bool {
	if other == nil {
		return false
	}
	return a.Type == other.Type &&
		a.Name == other.Name &&
		a.Line1 == other.Line1 &&
		a.Line2 == other.Line2 &&
		a.City == other.City &&
		a.Region == other.Region &&
		a.Postal == other.Postal &&
		a.Country == other.Country
}
