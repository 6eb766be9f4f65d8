package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ownership-api/internal/config"
	"ownership-api/internal/metrics"
	"ownership-api/internal/models"
	"ownership-api/internal/notifier"
)

// CreateInvitationInput carries the fields for a new invitation
type CreateInvitationInput struct {
	OwnershipID   uint
	InvitedBy     uint
	Email         *string
	Phone         *string
	Name          *string
	ExpiresInDays int
	Notes         *string
}

// InvitationFilters narrows invitation listings
type InvitationFilters struct {
	Status  string
	Search  string
	Page    int
	PerPage int
}

// BulkItemError reports a failed item in a bulk create
type BulkItemError struct {
	Index int
	Err   error
}

// InvitationService orchestrates invitation creation, resend and
// cancellation. Acceptance lives in AcceptanceService.
type InvitationService struct {
	db            *gorm.DB
	tokens        *TokenGenerator
	notifications *NotificationService
	mail          notifier.Notifier
	cfg           config.AppConfig
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(db *gorm.DB, tokens *TokenGenerator, notifications *NotificationService, mail notifier.Notifier, cfg config.AppConfig) *InvitationService {
	return &InvitationService{
		db:            db,
		tokens:        tokens,
		notifications: notifications,
		mail:          mail,
		cfg:           cfg,
	}
}

// Create persists a contact-bound invitation and dispatches the redemption
// link over email when one is set. Phone-only invitations are accepted but
// have no delivery channel yet.
func (s *InvitationService) Create(in CreateInvitationInput) (*models.TenantInvitation, error) {
	if (in.Email == nil || *in.Email == "") && (in.Phone == nil || *in.Phone == "") {
		return nil, ErrContactRequired
	}

	inv, err := s.createInvitation(in)
	if err != nil {
		return nil, err
	}

	if inv.Email != nil && *inv.Email != "" {
		s.sendInvitationEmail(inv)
	} else {
		// TODO: dispatch over SMS once an SMS provider is wired up
		log.Printf("Invitation %s is phone-only; no SMS channel available, link must be shared out of band", inv.UUID)
	}

	s.notifications.NotifyInvitationCreated(inv)

	return inv, nil
}

// CreateBulk applies Create to each item. Items are independent
// invitations: one failure is reported and does not roll back siblings.
func (s *InvitationService) CreateBulk(items []CreateInvitationInput, ownershipID, invitedBy uint) ([]*models.TenantInvitation, []BulkItemError) {
	created := make([]*models.TenantInvitation, 0, len(items))
	var failures []BulkItemError

	for i, item := range items {
		item.OwnershipID = ownershipID
		item.InvitedBy = invitedBy

		inv, err := s.Create(item)
		if err != nil {
			log.Printf("Bulk invitation item %d failed: %v", i, err)
			failures = append(failures, BulkItemError{Index: i, Err: err})
			continue
		}
		created = append(created, inv)
	}

	return created, failures
}

// GenerateLink mints an invitation without dispatching anything, for
// out-of-band distribution. Leaving email and phone empty makes the result
// a standing multi-use link.
func (s *InvitationService) GenerateLink(in CreateInvitationInput) (*models.TenantInvitation, error) {
	return s.createInvitation(in)
}

// Resend redispatches the existing token over email. Returns (false, nil)
// when the invitation is not resendable at all: no email, no longer
// pending, or past its deadline. A delivery failure is a separate outcome
// so callers never report a transient relay problem as a dead invitation.
// The token is never regenerated, so resending is idempotent.
func (s *InvitationService) Resend(inv *models.TenantInvitation) (bool, error) {
	if inv.Email == nil || *inv.Email == "" {
		return false, nil
	}

	if !inv.IsPending() || inv.IsExpiredAt(time.Now()) {
		return false, nil
	}

	fresh, err := s.loadWithRelations(inv.ID)
	if err != nil {
		return false, fmt.Errorf("failed to reload invitation for resend: %w", err)
	}

	subject, body := notifier.InvitationEmail(
		fresh.Inviter.Name(),
		fresh.Ownership.Name,
		fresh.InvitationURL(s.cfg.FrontendURL),
		fresh.ExpiresAt,
	)
	if err := s.mail.Send(*fresh.Email, subject, body); err != nil {
		log.Printf("Failed to resend invitation %s: %v", fresh.UUID, err)
		return false, fmt.Errorf("failed to resend invitation: %w", err)
	}

	return true, nil
}

// Cancel transitions a pending invitation to cancelled. Already-cancelled
// invitations are an idempotent no-op; accepted and expired ones cannot be
// cancelled. The update is conditional on the pending status so it never
// races with an in-flight acceptance.
func (s *InvitationService) Cancel(inv *models.TenantInvitation) (*models.TenantInvitation, error) {
	if inv.IsCancelled() {
		return inv, nil
	}

	res := s.db.Model(&models.TenantInvitation{}).
		Where("id = ? AND status = ?", inv.ID, models.InvitationStatusPending).
		Update("status", models.InvitationStatusCancelled)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to cancel invitation: %w", res.Error)
	}

	fresh, err := s.loadWithRelations(inv.ID)
	if err != nil {
		return nil, err
	}

	if res.RowsAffected == 0 {
		switch fresh.Status {
		case models.InvitationStatusCancelled:
			return fresh, nil
		case models.InvitationStatusAccepted:
			return nil, ErrAlreadyAccepted
		default:
			return nil, ErrExpired
		}
	}

	metrics.InvitationsCancelled.Inc()
	log.Printf("Invitation %s cancelled", fresh.UUID)
	return fresh, nil
}

// List returns invitations for an ownership with filters and pagination
func (s *InvitationService) List(ownershipID uint, f InvitationFilters) ([]models.TenantInvitation, int64, error) {
	query := s.db.Model(&models.TenantInvitation{}).Where("ownership_id = ?", ownershipID)

	now := time.Now()
	switch f.Status {
	case "":
	case models.InvitationStatusPending:
		query = query.Where("status = ? AND expires_at > ?", models.InvitationStatusPending, now)
	case models.InvitationStatusExpired:
		// Overdue-but-unswept rows count as expired too
		query = query.Where("status = ? OR (status = ? AND expires_at <= ?)",
			models.InvitationStatusExpired, models.InvitationStatusPending, now)
	default:
		query = query.Where("status = ?", f.Status)
	}

	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("email LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 15
	}
	if perPage > 100 {
		perPage = 100
	}

	var invitations []models.TenantInvitation
	err := query.Preload("Ownership").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&invitations).Error
	if err != nil {
		return nil, 0, err
	}

	return invitations, total, nil
}

// FindByToken returns the invitation holding the redemption token
func (s *InvitationService) FindByToken(token string) (*models.TenantInvitation, error) {
	var inv models.TenantInvitation
	if err := s.db.Preload("Ownership").Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &inv, nil
}

// FindByUUID returns the invitation by its public UUID with tenants loaded
func (s *InvitationService) FindByUUID(uuid string) (*models.TenantInvitation, error) {
	var inv models.TenantInvitation
	err := s.db.Preload("Ownership").Preload("Inviter").Preload("Tenants.User").
		Where("uuid = ?", uuid).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// createInvitation generates the token and persists the pending record
func (s *InvitationService) createInvitation(in CreateInvitationInput) (*models.TenantInvitation, error) {
	token, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}

	expiresIn := in.ExpiresInDays
	if expiresIn <= 0 {
		expiresIn = s.cfg.InvitationExpiryDays
	}
	if expiresIn > s.cfg.InvitationMaxExpiryDays {
		expiresIn = s.cfg.InvitationMaxExpiryDays
	}

	inv := models.TenantInvitation{
		UUID:        uuid.NewString(),
		OwnershipID: in.OwnershipID,
		InvitedBy:   in.InvitedBy,
		Email:       in.Email,
		Phone:       in.Phone,
		Name:        in.Name,
		Token:       token,
		Status:      models.InvitationStatusPending,
		ExpiresAt:   time.Now().AddDate(0, 0, expiresIn),
		Notes:       in.Notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	metrics.InvitationsCreated.WithLabelValues(ModeOf(&inv).String()).Inc()
	log.Printf("Invitation %s created for ownership %d (%s)", inv.UUID, inv.OwnershipID, ModeOf(&inv))

	return s.loadWithRelations(inv.ID)
}

// sendInvitationEmail dispatches the redemption link; failures are logged
// and never fail the creation that triggered them
func (s *InvitationService) sendInvitationEmail(inv *models.TenantInvitation) {
	subject, body := notifier.InvitationEmail(
		inv.Inviter.Name(),
		inv.Ownership.Name,
		inv.InvitationURL(s.cfg.FrontendURL),
		inv.ExpiresAt,
	)
	if err := s.mail.Send(*inv.Email, subject, body); err != nil {
		log.Printf("Failed to send invitation email for %s: %v", inv.UUID, err)
	}
}

func (s *InvitationService) loadWithRelations(id uint) (*models.TenantInvitation, error) {
	var inv models.TenantInvitation
	if err := s.db.Preload("Ownership").Preload("Inviter").First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}
