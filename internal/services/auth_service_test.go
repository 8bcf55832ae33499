package services_test

import (
	"fmt"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepo is a mock implementation of repositories.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) FindOrCreateByEmail(email, name string) (*models.User, error) {
	args := m.Called(email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepo)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	// Test successful registration
	user := &models.User{
		Email:    "test@example.com",
		Name:     "Test User",
		Password: "password123",
	}

	mockRepo.On("GetByEmail", user.Email).Return(nil, fmt.Errorf("user with email test@example.com not found")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterUser(user)
	assert.NoError(t, err)
	// The stored password is a bcrypt hash, never the plaintext
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Test email already registered with credentials
	taken := &models.User{ID: "1", Email: "test@example.com", Password: "some-hash"}
	mockRepo.On("GetByEmail", user.Email).Return(taken, nil).Once()
	err = authService.RegisterUser(&models.User{Email: "test@example.com", Password: "password123"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email 'test@example.com' already registered")
	mockRepo.AssertExpectations(t)

	// Test missing password
	err = authService.RegisterUser(&models.User{Email: "test@example.com"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "password is required")
}

func TestAuthService_RegisterUpgradesGuestAccount(t *testing.T) {
	mockRepo := new(MockUserRepo)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	// A guest checkout created this passwordless record earlier
	guest := &models.User{ID: "guest-1", Email: "guest@example.com", Name: "Guest", Role: models.RoleCustomer}
	mockRepo.On("GetByEmail", "guest@example.com").Return(guest, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user := &models.User{Email: "guest@example.com", Name: "Real Name", Password: "password123"}
	err := authService.RegisterUser(user)
	assert.NoError(t, err)

	// Registration attached credentials to the existing identity
	// instead of creating a second one
	assert.Equal(t, "guest-1", user.ID)
	assert.Equal(t, "Real Name", user.Name)
	assert.NotEmpty(t, user.Password)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepo)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Email:    "test@example.com",
		Name:     "Test User",
		Role:     models.RoleCustomer,
		Password: string(hashedPassword),
	}

	// Test successful login
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	token, err := authService.LoginUser("test@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validate the token structure
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, user.Role, claims["role"])
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, err = authService.LoginUser("test@example.com", "wrongpassword")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByEmail", "nobody@example.com").Return(nil, fmt.Errorf("user with email nobody@example.com not found")).Once()
	_, err = authService.LoginUser("nobody@example.com", "password123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials") // Should return generic invalid credentials message
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginRejectsGuestWithoutPassword(t *testing.T) {
	mockRepo := new(MockUserRepo)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	// Guest-created identities carry no credentials until they register
	guest := &models.User{ID: "guest-1", Email: "guest@example.com"}
	mockRepo.On("GetByEmail", "guest@example.com").Return(guest, nil).Once()

	_, err := authService.LoginUser("guest@example.com", "anything")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepo)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"email":   "test@example.com",
		"role":    models.RoleCustomer,
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(), // Expires in 1 hour
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	// Test valid token
	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "test@example.com", claims["email"])

	// Test invalid token (garbage)
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(), // Expired 1 hour ago
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}
