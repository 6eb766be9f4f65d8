package services

import (
	"errors"

	"gorm.io/gorm"

	"ownership-api/internal/models"
)

// MembershipService manages user-to-ownership mappings
type MembershipService struct {
	db *gorm.DB
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// FindByUserAndOwnership returns the mapping for the pair, or nil when none exists
func (s *MembershipService) FindByUserAndOwnership(db *gorm.DB, userID, ownershipID uint) (*models.UserOwnershipMapping, error) {
	var mapping models.UserOwnershipMapping
	err := db.Where("user_id = ? AND ownership_id = ?", userID, ownershipID).First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// LinkDefaultIfFirst links the user to the ownership, marking the mapping as
// the default when it is the user's first mapping anywhere. No-op when the
// pair is already linked. Runs on the db handle it is given so callers can
// scope it to a transaction or savepoint.
func (s *MembershipService) LinkDefaultIfFirst(db *gorm.DB, userID, ownershipID uint) (*models.UserOwnershipMapping, error) {
	existing, err := s.FindByUserAndOwnership(db, userID, ownershipID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	// First-ever mapping becomes the user's default scope. The count is the
	// explicit precondition, not an inference from insert order.
	var count int64
	if err := db.Model(&models.UserOwnershipMapping{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}

	mapping := models.UserOwnershipMapping{
		UserID:      userID,
		OwnershipID: ownershipID,
		Default:     count == 0,
	}

	if err := db.Create(&mapping).Error; err != nil {
		return nil, err
	}

	return &mapping, nil
}

// GetByUser returns all mappings for a user
func (s *MembershipService) GetByUser(userID uint) ([]models.UserOwnershipMapping, error) {
	var mappings []models.UserOwnershipMapping
	if err := s.db.Where("user_id = ?", userID).Preload("Ownership").Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}
