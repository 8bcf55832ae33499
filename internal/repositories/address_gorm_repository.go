package repositories

import (
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{
		db: db,
	}
}

// ListByUser retrieves every address owned by the user, newest first.
func (r *GORMAddressRepository) ListByUser(userID string) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses for user %s: %w", userID, err)
	}
	return addresses, nil
}

// GetByID retrieves an address by its ID.
func (r *GORMAddressRepository) GetByID(id string) (*models.Address, error) {
	var address models.Address
	if err := r.db.First(&address, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address %s: %w", id, err)
	}
	return &address, nil
}

// Create saves a new address.
func (r *GORMAddressRepository) Create(address *models.Address) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if err := r.db.Create(address).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

// Delete removes an address by its ID.
func (r *GORMAddressRepository) Delete(id string) error {
	res := r.db.Delete(&models.Address{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete address %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

// SetDefault flips the default flag to the given address inside one
// transaction, so the user never ends up with two defaults.
func (r *GORMAddressRepository) SetDefault(userID, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default addresses for user %s: %w", userID, err)
		}
		res := tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_default", true)
		if res.Error != nil {
			return fmt.Errorf("failed to set default address %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAddressNotFound
		}
		return nil
	})
}
