package services

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// AddressService manages the saved address book of an authenticated
// customer. Every operation is scoped to the owning user; a lookup that
// lands on someone else's address reports not-found.
type AddressService struct {
	addressRepo repositories.AddressRepository
}

// NewAddressService creates a new AddressService.
func NewAddressService(addressRepo repositories.AddressRepository) *AddressService {
	return &AddressService{
		addressRepo: addressRepo,
	}
}

// ListAddresses retrieves the user's saved addresses.
func (s *AddressService) ListAddresses(userID string) ([]models.Address, error) {
	return s.addressRepo.ListByUser(userID)
}

// CreateAddress saves a new address for the user. The type defaults to
// shipping when the caller does not care.
func (s *AddressService) CreateAddress(userID string, address *models.Address) error {
	if address.Line1 == "" || address.City == "" || address.Postal == "" || address.Country == "" {
		return fmt.Errorf("address is missing required fields")
	}
	if address.Type == "" {
		address.Type = models.AddressTypeShipping
	}
	owner := userID
	address.UserID = &owner
	return s.addressRepo.Create(address)
}

// DeleteAddress removes one of the user's addresses.
func (s *AddressService) DeleteAddress(userID, id string) error {
	if _, err := s.owned(userID, id); err != nil {
		return err
	}
	return s.addressRepo.Delete(id)
}

// SetDefaultAddress marks one of the user's addresses as the default,
// clearing the flag everywhere else.
func (s *AddressService) SetDefaultAddress(userID, id string) error {
	if _, err := s.owned(userID, id); err != nil {
		return err
	}
	return s.addressRepo.SetDefault(userID, id)
}

// owned fetches the address and verifies ownership, collapsing both
// misses into the same not-found.
func (s *AddressService) owned(userID, id string) (*models.Address, error) {
	address, err := s.addressRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if address.UserID == nil || *address.UserID != userID {
		return nil, repositories.ErrAddressNotFound
	}
	return address, nil
}
