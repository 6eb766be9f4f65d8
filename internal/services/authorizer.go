package services

import (
	"errors"

	"gorm.io/gorm"

	"ownership-api/internal/models"
)

// Authorizer answers capability checks against an ownership scope
type Authorizer interface {
	Can(userID uint, capability string, ownershipID uint) bool
}

// DBAuthorizer resolves capabilities through roles and permissions, and
// ownership access through user-ownership mappings. Super admins skip the
// ownership check but still need the capability.
type DBAuthorizer struct {
	db *gorm.DB
}

// NewDBAuthorizer creates a new DBAuthorizer
func NewDBAuthorizer(db *gorm.DB) *DBAuthorizer {
	return &DBAuthorizer{db: db}
}

// Can reports whether the user holds the capability within the ownership scope
func (a *DBAuthorizer) Can(userID uint, capability string, ownershipID uint) bool {
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		return false
	}

	if !a.hasCapability(userID, capability) {
		return false
	}

	if user.IsSuperAdmin() {
		return true
	}

	return a.hasOwnership(userID, ownershipID)
}

func (a *DBAuthorizer) hasCapability(userID uint, capability string) bool {
	var count int64
	err := a.db.Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.capability = ?", userID, capability).
		Count(&count).Error
	if err != nil {
		return false
	}
	return count > 0
}

func (a *DBAuthorizer) hasOwnership(userID, ownershipID uint) bool {
	var count int64
	err := a.db.Model(&models.UserOwnershipMapping{}).
		Where("user_id = ? AND ownership_id = ?", userID, ownershipID).
		Count(&count).Error
	if err != nil {
		return false
	}
	return count > 0
}

// GrantCapability attaches a capability to a role, creating both as needed.
// Used by the migration seeder.
func GrantCapability(db *gorm.DB, roleName, capability string) error {
	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		role = models.Role{Name: roleName}
		if err := db.Create(&role).Error; err != nil {
			return err
		}
	}

	var perm models.Permission
	if err := db.Where("capability = ?", capability).First(&perm).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		perm = models.Permission{Capability: capability}
		if err := db.Create(&perm).Error; err != nil {
			return err
		}
	}

	return db.Model(&role).Association("Permissions").Append(&perm)
}
