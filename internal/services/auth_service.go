package services

import (
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ownership-api/internal/auth"
	"ownership-api/internal/models"
)

const bcryptCost = 10

// AuthService handles account identity: login and the find-or-create path
// used during invitation acceptance.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Login authenticates a user by email and password and issues a token pair
func (s *AuthService) Login(email, password string) (*models.User, *auth.TokenPair, error) {
	var user models.User
	if err := s.db.Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := auth.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("User logged in: %s (ID: %d)", user.Email, user.ID)
	return &user, tokens, nil
}

// GetUserByID retrieves a user by ID with roles loaded
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreateTenant resolves the registration payload to a user account.
// A new account is created with the tenant type; an existing one is coerced
// to the tenant type and the Tenant role is attached idempotently. The
// returned bool reports whether the account was created in this call.
func (s *AuthService) FindOrCreateTenant(tx *gorm.DB, in RegistrationInput) (*models.User, bool, error) {
	var user models.User
	err := tx.Preload("Roles").Where("email = ?", in.Email).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, false, fmt.Errorf("failed to hash password: %w", err)
		}

		user = models.User{
			Email:        in.Email,
			Phone:        in.Phone,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			PasswordHash: string(hash),
			Type:         models.UserTypeTenant,
		}

		if err := tx.Create(&user).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create user: %w", err)
		}

		if err := s.ensureTenantRole(tx, &user); err != nil {
			return nil, false, err
		}

		return &user, true, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("database error: %w", err)
	}

	if user.Type != models.UserTypeTenant {
		if err := tx.Model(&user).Update("type", models.UserTypeTenant).Error; err != nil {
			return nil, false, fmt.Errorf("failed to update user type: %w", err)
		}
	}

	if err := s.ensureTenantRole(tx, &user); err != nil {
		return nil, false, err
	}

	return &user, false, nil
}

// ensureTenantRole attaches the Tenant role unless already present
func (s *AuthService) ensureTenantRole(tx *gorm.DB, user *models.User) error {
	if user.HasRole(models.RoleTenant) {
		return nil
	}

	var role models.Role
	if err := tx.Where("name = ?", models.RoleTenant).FirstOrCreate(&role, models.Role{Name: models.RoleTenant}).Error; err != nil {
		return fmt.Errorf("failed to resolve tenant role: %w", err)
	}

	if err := tx.Model(user).Association("Roles").Append(&role); err != nil {
		return fmt.Errorf("failed to assign tenant role: %w", err)
	}

	return nil
}
