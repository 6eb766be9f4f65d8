package models

import (
	"strings"
	"time"
)

// User account types
const (
	UserTypeOwner  = "owner"
	UserTypeTenant = "tenant"
	UserTypeAdmin  = "admin"
)

// User represents an account identity in the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Phone        *string   `gorm:"uniqueIndex;size:20" json:"phone,omitempty"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Type         string    `gorm:"size:20;not null;default:'owner'" json:"type"`
	Roles        []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Name returns the user's display name
func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsSuperAdmin reports whether the user bypasses ownership scoping
func (u *User) IsSuperAdmin() bool {
	return u.Type == UserTypeAdmin
}

// HasRole reports whether the user has the named role loaded
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
