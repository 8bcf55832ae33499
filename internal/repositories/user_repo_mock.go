package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("email '%s' already registered", user.Email)
		}
	}
	r.users[user.ID] = *user
	return nil
}

// Update replaces an existing user.
func (r *MockUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user with ID %s not found for update", user.ID)
	}
	r.users[user.ID] = *user
	return nil
}

// GetByEmail returns a user by their email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user with email %s not found", email)
}

// GetByID returns a user by their ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s not found", id)
	}
	return &user, nil
}

// FindOrCreateByEmail returns the user for the email, creating a
// passwordless record when none exists.
func (r *MockUserRepository) FindOrCreateByEmail(email, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	user := models.User{
		ID:    uuid.New().String(),
		Email: email,
		Name:  name,
		Role:  models.RoleCustomer,
	}
	r.users[user.ID] = user
	return &user, nil
}

// Count reports how many users exist, for tests asserting guest identity
// deduplication.
func (r *MockUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
