package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ownership-api/internal/auth"
	"ownership-api/internal/metrics"
	"ownership-api/internal/models"
)

// RegistrationInput is the self-registration payload submitted together
// with a redemption token
type RegistrationInput struct {
	Email             string              `json:"email" binding:"required,email"`
	Phone             *string             `json:"phone,omitempty"`
	FirstName         string              `json:"first_name" binding:"required"`
	LastName          string              `json:"last_name" binding:"required"`
	Password          string              `json:"password" binding:"required,min=8"`
	NationalID        *string             `json:"national_id,omitempty"`
	IDType            string              `json:"id_type,omitempty"`
	IDExpiry          *time.Time          `json:"id_expiry,omitempty"`
	EmergencyName     *string             `json:"emergency_name,omitempty"`
	EmergencyPhone    *string             `json:"emergency_phone,omitempty"`
	EmergencyRelation *string             `json:"emergency_relation,omitempty"`
	Employment        *string             `json:"employment,omitempty"`
	Employer          *string             `json:"employer,omitempty"`
	Income            decimal.NullDecimal `json:"income,omitempty"`
	Notes             *string             `json:"notes,omitempty"`
}

// AcceptanceResult is everything acceptance produces: the account, the
// tenant profile, the invitation's post-acceptance state and a session.
type AcceptanceResult struct {
	User       *models.User             `json:"user"`
	Tenant     *models.Tenant           `json:"tenant"`
	Invitation *models.TenantInvitation `json:"invitation"`
	Tokens     *auth.TokenPair          `json:"tokens"`
}

// AcceptanceService redeems invitation tokens. The whole redemption runs
// in one transaction so a failure at any step leaves no partial writes.
type AcceptanceService struct {
	db            *gorm.DB
	users         *AuthService
	memberships   *MembershipService
	notifications *NotificationService
}

// NewAcceptanceService creates a new AcceptanceService
func NewAcceptanceService(db *gorm.DB, users *AuthService, memberships *MembershipService, notifications *NotificationService) *AcceptanceService {
	return &AcceptanceService{
		db:            db,
		users:         users,
		memberships:   memberships,
		notifications: notifications,
	}
}

// Validate checks a token for redeemability without consuming it
func (s *AcceptanceService) Validate(token string) (*models.TenantInvitation, error) {
	var inv models.TenantInvitation
	if err := s.db.Preload("Ownership").Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := ValidateForAcceptance(&inv, time.Now()); err != nil {
		return nil, err
	}

	return &inv, nil
}

// Accept redeems the token: resolves or creates the user account, creates
// the tenant profile and, for single-use invitations, consumes the
// invitation. Concurrent redemptions of a single-use token resolve to
// exactly one winner; losers roll back completely.
func (s *AcceptanceService) Accept(token string, in RegistrationInput) (*AcceptanceResult, error) {
	var (
		user    *models.User
		tenant  *models.Tenant
		inv     models.TenantInvitation
		created bool
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := invitationForUpdate(tx, token).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := ValidateForAcceptance(&inv, time.Now()); err != nil {
			return err
		}

		// A contact-bound invitation is only redeemable by the exact
		// invited email
		if inv.Email != nil && *inv.Email != "" && *inv.Email != in.Email {
			return ErrEmailMismatch
		}

		var err error
		user, created, err = s.users.FindOrCreateTenant(tx, in)
		if err != nil {
			return err
		}

		// A pre-existing account may already hold a tenant profile here
		if !created {
			var count int64
			if err := tx.Model(&models.Tenant{}).
				Where("user_id = ? AND ownership_id = ?", user.ID, inv.OwnershipID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			if count > 0 {
				return ErrDuplicateTenant
			}
		}

		tenant = &models.Tenant{
			UserID:            user.ID,
			OwnershipID:       inv.OwnershipID,
			InvitationID:      &inv.ID,
			NationalID:        in.NationalID,
			IDType:            idTypeOrDefault(in.IDType),
			IDExpiry:          in.IDExpiry,
			EmergencyName:     in.EmergencyName,
			EmergencyPhone:    in.EmergencyPhone,
			EmergencyRelation: in.EmergencyRelation,
			Employment:        in.Employment,
			Employer:          in.Employer,
			Income:            in.Income,
			Rating:            models.RatingGood,
			Notes:             in.Notes,
		}
		if err := tx.Create(tenant).Error; err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		// Membership linking is soft: run it in a savepoint so a failure
		// rolls back only the mapping, not the acceptance
		linkErr := tx.Transaction(func(nested *gorm.DB) error {
			_, err := s.memberships.LinkDefaultIfFirst(nested, user.ID, inv.OwnershipID)
			return err
		})
		if linkErr != nil {
			log.Printf("Warning: failed to link user %d to ownership %d: %v", user.ID, inv.OwnershipID, linkErr)
		}

		switch ModeOf(&inv) {
		case SingleUse:
			now := time.Now()
			res := tx.Model(&models.TenantInvitation{}).
				Where("id = ? AND status = ?", inv.ID, models.InvitationStatusPending).
				Updates(map[string]interface{}{
					"status":      models.InvitationStatusAccepted,
					"accepted_at": now,
					"accepted_by": user.ID,
					"tenant_id":   tenant.ID,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to accept invitation: %w", res.Error)
			}
			// Zero rows means a concurrent redemption won the row first
			if res.RowsAffected == 0 {
				return ErrAlreadyAccepted
			}
		case MultiUse:
			// Stays pending; only bump updated_at to record the redemption
			if err := tx.Model(&inv).Update("updated_at", time.Now()).Error; err != nil {
				return fmt.Errorf("failed to touch invitation: %w", err)
			}
		}

		if err := tx.First(&inv, inv.ID).Error; err != nil {
			return fmt.Errorf("failed to reload invitation: %w", err)
		}

		return nil
	})
	if err != nil {
		metrics.AcceptFailures.WithLabelValues(failureKind(err)).Inc()
		return nil, err
	}

	mode := ModeOf(&inv)
	metrics.InvitationsAccepted.WithLabelValues(mode.String()).Inc()
	log.Printf("Invitation %s redeemed by user %d (%s)", inv.UUID, user.ID, mode)

	tenant.User = *user
	switch mode {
	case SingleUse:
		s.notifications.NotifyInvitationAccepted(&inv, tenant)
	case MultiUse:
		s.notifications.NotifyTenantJoined(&inv, tenant)
	}

	// Redemption is already committed: a failed session issuance is logged
	// and the tenant logs in manually instead of retrying the dead token
	tokens, err := auth.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		log.Printf("Warning: failed to issue session tokens for user %d: %v", user.ID, err)
		tokens = nil
	}

	return &AcceptanceResult{
		User:       user,
		Tenant:     tenant,
		Invitation: &inv,
		Tokens:     tokens,
	}, nil
}

// invitationForUpdate scopes the redemption lookup with a write-intent row
// lock so concurrent redeemers of one token queue at the fetch and see the
// winner's committed status. SQLite builds the query without the lock and
// relies on database-level serialization instead.
func invitationForUpdate(tx *gorm.DB, token string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("token = ?", token)
}

func idTypeOrDefault(idType string) string {
	if idType == "" {
		return models.IDTypeNationalID
	}
	return idType
}

// failureKind labels acceptance failures for the metrics counter
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrAlreadyAccepted):
		return "already_accepted"
	case errors.Is(err, ErrEmailMismatch):
		return "email_mismatch"
	case errors.Is(err, ErrDuplicateTenant):
		return "duplicate_tenant"
	default:
		return "internal"
	}
}
