package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockVariantRepository is an in-memory implementation of
// VariantRepository.
type MockVariantRepository struct {
	variants map[string]models.ProductVariant
	mu       sync.RWMutex
}

// NewMockVariantRepository creates a new instance of MockVariantRepository.
func NewMockVariantRepository() *MockVariantRepository {
	return &MockVariantRepository{
		variants: make(map[string]models.ProductVariant),
	}
}

// GetByID returns a variant by its ID.
func (r *MockVariantRepository) GetByID(id string) (*models.ProductVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variant, ok := r.variants[id]
	if !ok {
		return nil, fmt.Errorf("variant with ID %s not found", id)
	}
	return &variant, nil
}

// GetByIDs returns the variants that exist among the requested IDs.
func (r *MockVariantRepository) GetByIDs(ids []string) ([]models.ProductVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.ProductVariant
	for _, id := range ids {
		if v, ok := r.variants[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Create adds a new variant.
func (r *MockVariantRepository) Create(variant *models.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	r.variants[variant.ID] = *variant
	return nil
}

// Update replaces an existing variant.
func (r *MockVariantRepository) Update(variant *models.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.variants[variant.ID]; !ok {
		return fmt.Errorf("variant with ID %s not found for update", variant.ID)
	}
	r.variants[variant.ID] = *variant
	return nil
}

// Delete removes a variant by its ID.
func (r *MockVariantRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.variants[id]; !ok {
		return fmt.Errorf("variant with ID %s not found for deletion", id)
	}
	delete(r.variants, id)
	return nil
}

// SetOnHand applies an admin inventory correction.
func (r *MockVariantRepository) SetOnHand(id string, qty int) error {
	return r.mutate(id, func(v *models.ProductVariant) error {
		v.OnHand = qty
		return nil
	})
}

// mutate applies fn to a stored variant under the write lock. Used by
// the in-memory order repository to keep counter updates atomic.
func (r *MockVariantRepository) mutate(id string, fn func(*models.ProductVariant) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.variants[id]
	if !ok {
		return fmt.Errorf("variant with ID %s not found", id)
	}
	if err := fn(&v); err != nil {
		return err
	}
	r.variants[id] = v
	return nil
}
