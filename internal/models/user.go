package models

import "gorm.io/gorm"

// User roles.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User represents a store customer. Guest checkouts create a user keyed
// by email with no password; such users cannot log in until they
// register.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Name       string `json:"name" gorm:"type:varchar(200)" validate:"omitempty,max=200"`
	Password   string `gorm:"type:varchar(255)"` // bcrypt hash; empty for guest-created users. No json tag for security.
	Role       string `json:"role" gorm:"type:varchar(20);default:CUSTOMER"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
