package services

import (
	"time"

	"ownership-api/internal/models"
)

// RedemptionMode determines how often an invitation can be redeemed
type RedemptionMode int

const (
	// SingleUse invitations are bound to an email or phone and redeemable exactly once
	SingleUse RedemptionMode = iota
	// MultiUse invitations have no bound contact and stay redeemable until cancelled
	MultiUse
)

// String returns the mode name
func (m RedemptionMode) String() string {
	if m == MultiUse {
		return "multi_use"
	}
	return "single_use"
}

// ModeOf returns the redemption mode of an invitation. Presence of an email
// or phone is what makes an invitation single-use; this predicate is the
// only place that rule lives.
func ModeOf(inv *models.TenantInvitation) RedemptionMode {
	if inv.HasContact() {
		return SingleUse
	}
	return MultiUse
}

// ValidateForAcceptance checks whether an invitation can be redeemed at the
// given instant. Pure decision logic, no I/O.
func ValidateForAcceptance(inv *models.TenantInvitation, now time.Time) error {
	if inv.Status == models.InvitationStatusExpired || inv.IsExpiredAt(now) {
		return ErrExpired
	}

	if inv.IsCancelled() {
		return ErrCancelled
	}

	// Multi-use invitations stay pending and are redeemed repeatedly, so the
	// accepted check only applies to single-use ones.
	if ModeOf(inv) == SingleUse && inv.IsAccepted() {
		return ErrAlreadyAccepted
	}

	return nil
}

// CancelRequiresElevatedPermission reports whether cancelling the invitation
// needs the close-without-contact capability. Cancelling a standing
// multi-use link shuts a public registration channel, so it is gated
// separately from cancelling a targeted invite.
func CancelRequiresElevatedPermission(inv *models.TenantInvitation) bool {
	return ModeOf(inv) == MultiUse
}

// CancelCapability returns the capability required to cancel the invitation
func CancelCapability(inv *models.TenantInvitation) string {
	if CancelRequiresElevatedPermission(inv) {
		return models.CapInvitationsCloseNoContact
	}
	return models.CapInvitationsCancel
}
