package services

import (
	"errors"
	"testing"
	"time"

	"ownership-api/internal/models"
)

func TestModeOf(t *testing.T) {
	email := "tenant@example.com"
	phone := "+966501234567"
	empty := ""

	cases := []struct {
		name string
		inv  models.TenantInvitation
		want RedemptionMode
	}{
		{"email only", models.TenantInvitation{Email: &email}, SingleUse},
		{"phone only", models.TenantInvitation{Phone: &phone}, SingleUse},
		{"email and phone", models.TenantInvitation{Email: &email, Phone: &phone}, SingleUse},
		{"no contact", models.TenantInvitation{}, MultiUse},
		{"empty strings", models.TenantInvitation{Email: &empty, Phone: &empty}, MultiUse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ModeOf(&tc.inv); got != tc.want {
				t.Errorf("ModeOf() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidateForAcceptance(t *testing.T) {
	now := time.Now()
	email := "tenant@example.com"
	future := now.AddDate(0, 0, 7)
	past := now.AddDate(0, 0, -1)

	cases := []struct {
		name string
		inv  models.TenantInvitation
		want error
	}{
		{
			"pending single-use",
			models.TenantInvitation{Email: &email, Status: models.InvitationStatusPending, ExpiresAt: future},
			nil,
		},
		{
			"pending multi-use",
			models.TenantInvitation{Status: models.InvitationStatusPending, ExpiresAt: future},
			nil,
		},
		{
			"overdue but still pending",
			models.TenantInvitation{Email: &email, Status: models.InvitationStatusPending, ExpiresAt: past},
			ErrExpired,
		},
		{
			"swept expired",
			models.TenantInvitation{Email: &email, Status: models.InvitationStatusExpired, ExpiresAt: past},
			ErrExpired,
		},
		{
			"cancelled",
			models.TenantInvitation{Email: &email, Status: models.InvitationStatusCancelled, ExpiresAt: future},
			ErrCancelled,
		},
		{
			// Expiry wins when an invitation is both cancelled and overdue
			"cancelled and overdue",
			models.TenantInvitation{Email: &email, Status: models.InvitationStatusCancelled, ExpiresAt: past},
			ErrExpired,
		},
		{
			"accepted single-use",
			models.TenantInvitation{Email: &email, Status: models.InvitationStatusAccepted, ExpiresAt: future},
			ErrAlreadyAccepted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateForAcceptance(&tc.inv, now)
			if !errors.Is(err, tc.want) {
				t.Errorf("ValidateForAcceptance() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCancelCapability(t *testing.T) {
	email := "tenant@example.com"

	single := models.TenantInvitation{Email: &email}
	if got := CancelCapability(&single); got != models.CapInvitationsCancel {
		t.Errorf("single-use cancel capability = %q, want %q", got, models.CapInvitationsCancel)
	}
	if CancelRequiresElevatedPermission(&single) {
		t.Error("single-use cancel should not require elevated permission")
	}

	multi := models.TenantInvitation{}
	if got := CancelCapability(&multi); got != models.CapInvitationsCloseNoContact {
		t.Errorf("multi-use cancel capability = %q, want %q", got, models.CapInvitationsCloseNoContact)
	}
	if !CancelRequiresElevatedPermission(&multi) {
		t.Error("multi-use cancel should require elevated permission")
	}
}
