package repositories

import (
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockAddressRepository is an in-memory implementation of AddressRepository.
type MockAddressRepository struct {
	addresses map[string]models.Address
	mu        sync.RWMutex
}

// NewMockAddressRepository creates a new instance of MockAddressRepository.
func NewMockAddressRepository() *MockAddressRepository {
	return &MockAddressRepository{
		addresses: make(map[string]models.Address),
	}
}

// ListByUser returns every address owned by the user.
func (r *MockAddressRepository) ListByUser(userID string) ([]models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Address
	for _, a := range r.addresses {
		if a.UserID != nil && *a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetByID returns an address by its ID.
func (r *MockAddressRepository) GetByID(id string) (*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	address, ok := r.addresses[id]
	if !ok {
		return nil, ErrAddressNotFound
	}
	return &address, nil
}

// Create saves a new address.
func (r *MockAddressRepository) Create(address *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	r.addresses[address.ID] = *address
	return nil
}

// Delete removes an address by its ID.
func (r *MockAddressRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.addresses[id]; !ok {
		return ErrAddressNotFound
	}
	delete(r.addresses, id)
	return nil
}

// SetDefault flips the default flag to the given address.
func (r *MockAddressRepository) SetDefault(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.addresses[id]
	if !ok || target.UserID == nil || *target.UserID != userID {
		return ErrAddressNotFound
	}
	for key, a := range r.addresses {
		if a.UserID != nil && *a.UserID == userID && a.IsDefault {
			a.IsDefault = false
			r.addresses[key] = a
		}
	}
	target.IsDefault = true
	r.addresses[id] = target
	return nil
}
