package repositories

import "storefront/internal/models"

// VariantRepository defines the interface for product variant data
// access, including the inventory ledger counters.
type VariantRepository interface {
	GetByID(id string) (*models.ProductVariant, error)
	// GetByIDs batch-fetches variants with their parent product loaded,
	// in one query. Unknown IDs are simply absent from the result.
	GetByIDs(ids []string) ([]models.ProductVariant, error)
	Create(variant *models.ProductVariant) error
	Update(variant *models.ProductVariant) error
	Delete(id string) error
	// SetOnHand is the admin inventory correction. qty must already be
	// validated as a non-negative integer.
	SetOnHand(id string, qty int) error
}
