package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"ownership-api/internal/models"
)

// NotificationService fans invitation lifecycle events out to ownership
// members holding the notification capability. All writes here are
// best-effort: a failed insert is logged and never unwinds the caller.
type NotificationService struct {
	db    *gorm.DB
	authz Authorizer
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(db *gorm.DB, authz Authorizer) *NotificationService {
	return &NotificationService{db: db, authz: authz}
}

// NotifyInvitationCreated records a notification for each authorized member
// of the invitation's ownership
func (s *NotificationService) NotifyInvitationCreated(inv *models.TenantInvitation) {
	contact := "link-only"
	if inv.Email != nil && *inv.Email != "" {
		contact = *inv.Email
	} else if inv.Phone != nil && *inv.Phone != "" {
		contact = *inv.Phone
	}

	s.fanOut(inv.OwnershipID, models.Notification{
		Type:      models.NotificationTypeInfo,
		Title:     "Tenant invitation created",
		Message:   fmt.Sprintf("A tenant invitation (%s) was created for ownership #%d", contact, inv.OwnershipID),
		Category:  models.NotificationCategoryTenantInvitation,
		ActionURL: "/tenants/invitations/" + inv.UUID,
	})
}

// NotifyInvitationAccepted records acceptance notifications for a single-use invitation
func (s *NotificationService) NotifyInvitationAccepted(inv *models.TenantInvitation, tenant *models.Tenant) {
	s.fanOut(inv.OwnershipID, models.Notification{
		Type:      models.NotificationTypeSuccess,
		Title:     "Tenant invitation accepted",
		Message:   fmt.Sprintf("%s accepted the invitation to ownership #%d", tenant.User.Name(), inv.OwnershipID),
		Category:  models.NotificationCategoryTenantInvitation,
		ActionURL: fmt.Sprintf("/tenants/%d", tenant.ID),
	})
}

// NotifyTenantJoined records join notifications for a multi-use invitation redemption
func (s *NotificationService) NotifyTenantJoined(inv *models.TenantInvitation, tenant *models.Tenant) {
	var total int64
	if err := s.db.Model(&models.Tenant{}).Where("invitation_id = ?", inv.ID).Count(&total).Error; err != nil {
		log.Printf("Warning: failed to count tenants for invitation %s: %v", inv.UUID, err)
	}

	s.fanOut(inv.OwnershipID, models.Notification{
		Type:      models.NotificationTypeSuccess,
		Title:     "Tenant joined via invitation link",
		Message:   fmt.Sprintf("%s joined ownership #%d through a standing invitation (%d tenants so far)", tenant.User.Name(), inv.OwnershipID, total),
		Category:  models.NotificationCategoryTenantInvitation,
		ActionURL: "/tenants/invitations/" + inv.UUID,
	})
}

// fanOut writes one notification row per authorized recipient
func (s *NotificationService) fanOut(ownershipID uint, template models.Notification) {
	recipients, err := s.recipients(ownershipID)
	if err != nil {
		log.Printf("Warning: failed to resolve notification recipients for ownership %d: %v", ownershipID, err)
		return
	}

	for _, user := range recipients {
		n := template
		n.UserID = user.ID
		if err := s.db.Create(&n).Error; err != nil {
			log.Printf("Warning: failed to create notification for user %d: %v", user.ID, err)
		}
	}
}

// recipients returns the ownership members holding the notification capability
func (s *NotificationService) recipients(ownershipID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN user_ownership_mappings ON user_ownership_mappings.user_id = users.id").
		Where("user_ownership_mappings.ownership_id = ?", ownershipID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	notifiable := users[:0]
	for _, u := range users {
		if s.authz.Can(u.ID, models.CapInvitationsNotifications, ownershipID) {
			notifiable = append(notifiable, u)
		}
	}
	return notifiable, nil
}

// ListForUser returns a user's notifications, newest first
func (s *NotificationService) ListForUser(userID uint, unreadOnly bool) ([]models.Notification, error) {
	query := s.db.Where("user_id = ?", userID).Order("created_at DESC")
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	now := time.Now()
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
