package services

import (
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and
// authorization. It is the identity/session source the checkout flow
// consults; everything else works without it (guest path).
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterUser registers a new user, hashes their password, and saves
// them to the database. Registering with an email a guest checkout
// already created upgrades that passwordless record instead of failing.
func (s *AuthService) RegisterUser(user *models.User) error {
	if user.Password == "" {
		return fmt.Errorf("password is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		if existing.Password != "" {
			return fmt.Errorf("email '%s' already registered", user.Email)
		}
		// Guest-created identity: attach credentials to the existing row.
		existing.Password = string(hashedPassword)
		if user.Name != "" {
			existing.Name = user.Name
		}
		if err := s.userRepo.Update(existing); err != nil {
			return fmt.Errorf("failed to upgrade guest account: %w", err)
		}
		*user = *existing
		return nil
	}

	user.Password = string(hashedPassword)
	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user by email and returns a JWT token if
// successful. Guest-created users have no password and cannot log in
// until they register.
func (s *AuthService) LoginUser(email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		// It's good practice not to reveal if the email exists or not for security
		return "", fmt.Errorf("invalid credentials")
	}
	if user.Password == "" {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":     time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims
// if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
