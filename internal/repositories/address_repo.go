package repositories

import (
	"errors"

	"storefront/internal/models"
)

// ErrAddressNotFound is returned when an address lookup finds nothing
// the caller may see. Ownership misses map to it as well, so the
// account surface never leaks another customer's rows.
var ErrAddressNotFound = errors.New("address not found")

// AddressRepository defines the interface for the saved address book.
// Checkout writes its own rows through the order repository; this
// interface serves the account surface on top of the same table.
type AddressRepository interface {
	ListByUser(userID string) ([]models.Address, error)
	GetByID(id string) (*models.Address, error)
	Create(address *models.Address) error
	Delete(id string) error
	// SetDefault marks one of the user's addresses as the default,
	// clearing the flag on every other address the user owns.
	SetDefault(userID, id string) error
}
