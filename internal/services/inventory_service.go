package services

import (
	"fmt"

	"storefront/internal/repositories"
)

// VariantAvailability reports the inventory ledger for one variant.
// Available is derived, never stored.
type VariantAvailability struct {
	VariantID string `json:"variant_id"`
	OnHand    int    `json:"on_hand"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
}

// InventoryService handles the inventory ledger: admin on-hand
// corrections and availability reads. Reservation itself happens inside
// order finalization.
type InventoryService struct {
	variantRepo repositories.VariantRepository
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(variantRepo repositories.VariantRepository) *InventoryService {
	return &InventoryService{
		variantRepo: variantRepo,
	}
}

// SetOnHand applies an admin correction to a variant's on-hand count.
// Negative quantities are rejected before anything is touched.
func (s *InventoryService) SetOnHand(variantID string, qty int) error {
	if variantID == "" {
		return fmt.Errorf("variant identifier is required")
	}
	if qty < 0 {
		return fmt.Errorf("on-hand quantity must be a non-negative integer, got %d", qty)
	}
	return s.variantRepo.SetOnHand(variantID, qty)
}

// Availability returns the ledger counters for a variant.
func (s *InventoryService) Availability(variantID string) (*VariantAvailability, error) {
	v, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		return nil, err
	}
	return &VariantAvailability{
		VariantID: v.ID,
		OnHand:    v.OnHand,
		Reserved:  v.Reserved,
		Available: v.Available(),
	}, nil
}
