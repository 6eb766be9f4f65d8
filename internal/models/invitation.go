package models

import (
	"strings"
	"time"
)

// Invitation lifecycle statuses
const (
	InvitationStatusPending   = "pending"
	InvitationStatusAccepted  = "accepted"
	InvitationStatusCancelled = "cancelled"
	InvitationStatusExpired   = "expired"
)

// TenantInvitation invites a not-yet-registered tenant into an ownership.
// An invitation with an email or phone is single-use; one without either is
// a standing multi-use link redeemable until cancelled or expired.
type TenantInvitation struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	UUID        string     `gorm:"uniqueIndex;not null;size:36" json:"uuid"`
	OwnershipID uint       `gorm:"not null;index" json:"ownership_id"`
	InvitedBy   uint       `gorm:"not null" json:"invited_by"`
	Email       *string    `gorm:"size:255;index" json:"email,omitempty"`
	Phone       *string    `gorm:"size:20" json:"phone,omitempty"`
	Name        *string    `gorm:"size:255" json:"name,omitempty"`
	Token       string     `gorm:"uniqueIndex;not null;size:64" json:"-"`
	Status      string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ExpiresAt   time.Time  `gorm:"not null;index" json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	AcceptedBy  *uint      `json:"accepted_by,omitempty"`
	TenantID    *uint      `json:"tenant_id,omitempty"`
	Notes       *string    `gorm:"type:text" json:"notes,omitempty"`
	Ownership   Ownership  `gorm:"foreignKey:OwnershipID" json:"ownership,omitempty"`
	Inviter     User       `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
	Tenants     []Tenant   `gorm:"foreignKey:InvitationID" json:"tenants,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for TenantInvitation model
func (TenantInvitation) TableName() string {
	return "tenant_invitations"
}

// HasContact reports whether the invitation is bound to an email or phone.
// Contact-bound invitations are single-use.
func (i *TenantInvitation) HasContact() bool {
	return (i.Email != nil && *i.Email != "") || (i.Phone != nil && *i.Phone != "")
}

// IsExpiredAt reports whether the invitation deadline has passed at t
func (i *TenantInvitation) IsExpiredAt(t time.Time) bool {
	return t.After(i.ExpiresAt)
}

// IsPending reports whether the invitation status is pending
func (i *TenantInvitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

// IsAccepted reports whether the invitation status is accepted
func (i *TenantInvitation) IsAccepted() bool {
	return i.Status == InvitationStatusAccepted
}

// IsCancelled reports whether the invitation status is cancelled
func (i *TenantInvitation) IsCancelled() bool {
	return i.Status == InvitationStatusCancelled
}

// InvitationURL builds the public redemption URL for the token
func (i *TenantInvitation) InvitationURL(frontendURL string) string {
	return strings.TrimRight(frontendURL, "/") + "/register/tenant?token=" + i.Token
}
