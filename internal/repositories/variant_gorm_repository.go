package repositories

import (
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMVariantRepository is a GORM implementation of VariantRepository.
type GORMVariantRepository struct {
	db *gorm.DB
}

// NewGORMVariantRepository creates a new instance of GORMVariantRepository.
func NewGORMVariantRepository(db *gorm.DB) *GORMVariantRepository {
	return &GORMVariantRepository{
		db: db,
	}
}

// GetByID retrieves a single variant with its parent product.
func (r *GORMVariantRepository) GetByID(id string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.Preload("Product").First(&variant, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("variant with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get variant by ID %s: %w", id, err)
	}
	return &variant, nil
}

// GetByIDs batch-fetches variants with their parent products in one
// query. IDs that no longer exist are absent from the result.
func (r *GORMVariantRepository) GetByIDs(ids []string) ([]models.ProductVariant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var variants []models.ProductVariant
	if err := r.db.Preload("Product").Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to get variants: %w", err)
	}
	return variants, nil
}

// Create creates a new variant in the database.
func (r *GORMVariantRepository) Create(variant *models.ProductVariant) error {
	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	if err := r.db.Create(variant).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

// Update updates an existing variant in the database.
func (r *GORMVariantRepository) Update(variant *models.ProductVariant) error {
	res := r.db.Omit("Product").Save(variant)
	if res.Error != nil {
		return fmt.Errorf("failed to update variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant with ID %s not found for update", variant.ID)
	}
	return nil
}

// Delete deletes a variant by its ID from the database.
func (r *GORMVariantRepository) Delete(id string) error {
	res := r.db.Delete(&models.ProductVariant{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant with ID %s not found for deletion", id)
	}
	return nil
}

// SetOnHand applies an admin inventory correction. The on-hand count may
// be set below the current reservation level; Available goes negative in
// that case rather than hiding the discrepancy.
func (r *GORMVariantRepository) SetOnHand(id string, qty int) error {
	res := r.db.Model(&models.ProductVariant{}).Where("id = ?", id).UpdateColumn("on_hand", qty)
	if res.Error != nil {
		return fmt.Errorf("failed to set on-hand for variant %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant with ID %s not found", id)
	}
	return nil
}
