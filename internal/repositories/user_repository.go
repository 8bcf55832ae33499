package repositories

import "storefront/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// FindOrCreateByEmail is the guest checkout identity path: it
	// returns the existing user for the email or creates a passwordless
	// one, never a duplicate.
	FindOrCreateByEmail(email, name string) (*models.User, error)
}
