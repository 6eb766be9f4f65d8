package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"ownership-api/internal/auth"
	"ownership-api/internal/models"
)

func registration(email string) RegistrationInput {
	return RegistrationInput{
		Email:     email,
		FirstName: "New",
		LastName:  "Tenant",
		Password:  "password123",
	}
}

func TestAcceptSingleUse(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	ownership := createOwnership(t, db, "Palm Compound")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)

	inv := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("tenant@example.com"),
	})

	result, err := svc.Accept(inv.Token, registration("tenant@example.com"))
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if result.User.Email != "tenant@example.com" {
		t.Errorf("user email = %q", result.User.Email)
	}
	if result.User.Type != models.UserTypeTenant {
		t.Errorf("user type = %q, want tenant", result.User.Type)
	}
	if result.Tenant.OwnershipID != ownership.ID {
		t.Errorf("tenant ownership = %d, want %d", result.Tenant.OwnershipID, ownership.ID)
	}
	if result.Tenant.InvitationID == nil || *result.Tenant.InvitationID != inv.ID {
		t.Error("tenant should reference the invitation it came from")
	}
	if result.Tenant.Rating != models.RatingGood {
		t.Errorf("tenant rating = %q, want good", result.Tenant.Rating)
	}
	if result.Tokens == nil || result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Error("acceptance should open a session with a token pair")
	}

	var reloaded models.TenantInvitation
	db.First(&reloaded, inv.ID)
	if reloaded.Status != models.InvitationStatusAccepted {
		t.Errorf("invitation status = %q, want accepted", reloaded.Status)
	}
	if reloaded.AcceptedAt == nil {
		t.Error("accepted_at should be set")
	}
	if reloaded.AcceptedBy == nil || *reloaded.AcceptedBy != result.User.ID {
		t.Error("accepted_by should record the redeeming user")
	}
	if reloaded.TenantID == nil || *reloaded.TenantID != result.Tenant.ID {
		t.Error("tenant_id should record the created tenant")
	}

	// First mapping anywhere becomes the user's default scope
	var mapping models.UserOwnershipMapping
	if err := db.Where("user_id = ? AND ownership_id = ?", result.User.ID, ownership.ID).First(&mapping).Error; err != nil {
		t.Fatalf("membership mapping missing: %v", err)
	}
	if !mapping.Default {
		t.Error("first mapping should be the default")
	}
}

func TestAcceptEmailMismatchLeavesNoWrites(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	ownership := createOwnership(t, db, "Palm Compound")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)

	inv := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("invited@example.com"),
	})

	var usersBefore int64
	db.Model(&models.User{}).Count(&usersBefore)

	_, err := svc.Accept(inv.Token, registration("impostor@example.com"))
	if !errors.Is(err, ErrEmailMismatch) {
		t.Fatalf("Accept = %v, want ErrEmailMismatch", err)
	}

	var usersAfter, tenants int64
	db.Model(&models.User{}).Count(&usersAfter)
	db.Model(&models.Tenant{}).Count(&tenants)
	if usersAfter != usersBefore {
		t.Error("rejected acceptance must not create a user")
	}
	if tenants != 0 {
		t.Error("rejected acceptance must not create a tenant")
	}

	var reloaded models.TenantInvitation
	db.First(&reloaded, inv.ID)
	if !reloaded.IsPending() {
		t.Errorf("invitation status = %q, should remain pending", reloaded.Status)
	}
}

func TestAcceptEmailMatchIsExact(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	ownership := createOwnership(t, db, "Palm Compound")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)

	inv := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("Tenant@Example.com"),
	})

	// The comparison is byte-exact, so a differently cased email is rejected
	if _, err := svc.Accept(inv.Token, registration("tenant@example.com")); !errors.Is(err, ErrEmailMismatch) {
		t.Fatalf("Accept with differently cased email = %v, want ErrEmailMismatch", err)
	}

	if _, err := svc.Accept(inv.Token, registration("Tenant@Example.com")); err != nil {
		t.Fatalf("Accept with exact email failed: %v", err)
	}
}

func TestAcceptDeadInvitations(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	ownership := createOwnership(t, db, "Palm Compound")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)

	cancelled := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("a@example.com"),
		Status:      models.InvitationStatusCancelled,
	})
	if _, err := svc.Accept(cancelled.Token, registration("a@example.com")); !errors.Is(err, ErrCancelled) {
		t.Errorf("cancelled = %v, want ErrCancelled", err)
	}

	overdue := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("b@example.com"),
		ExpiresAt:   time.Now().AddDate(0, 0, -1),
	})
	if _, err := svc.Accept(overdue.Token, registration("b@example.com")); !errors.Is(err, ErrExpired) {
		t.Errorf("overdue = %v, want ErrExpired", err)
	}

	accepted := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("c@example.com"),
		Status:      models.InvitationStatusAccepted,
	})
	if _, err := svc.Accept(accepted.Token, registration("c@example.com")); !errors.Is(err, ErrAlreadyAccepted) {
		t.Errorf("accepted = %v, want ErrAlreadyAccepted", err)
	}

	if _, err := svc.Accept("no-such-token", registration("d@example.com")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("unknown token = %v, want ErrInvalidToken", err)
	}
}

func TestAcceptDuplicateTenantRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	ownership := createOwnership(t, db, "Palm Compound")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)
	existing := createUser(t, db, "tenant@example.com", models.UserTypeTenant)

	if err := db.Create(&models.Tenant{UserID: existing.ID, OwnershipID: ownership.ID, Rating: models.RatingGood}).Error; err != nil {
		t.Fatalf("failed to seed tenant: %v", err)
	}

	inv := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("tenant@example.com"),
	})

	_, err := svc.Accept(inv.Token, registration("tenant@example.com"))
	if !errors.Is(err, ErrDuplicateTenant) {
		t.Fatalf("Accept = %v, want ErrDuplicateTenant", err)
	}

	// Whole transaction rolled back: invitation still redeemable, one tenant row
	var reloaded models.TenantInvitation
	db.First(&reloaded, inv.ID)
	if !reloaded.IsPending() {
		t.Errorf("invitation status = %q, should remain pending", reloaded.Status)
	}

	var tenants int64
	db.Model(&models.Tenant{}).Count(&tenants)
	if tenants != 1 {
		t.Errorf("tenant count = %d, want 1", tenants)
	}
}

func TestAcceptExistingUserIsCoerced(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	ownership := createOwnership(t, db, "Palm Compound")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)
	existing := createUser(t, db, "mixed@example.com", models.UserTypeOwner)

	inv := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("mixed@example.com"),
	})

	result, err := svc.Accept(inv.Token, registration("mixed@example.com"))
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if result.User.ID != existing.ID {
		t.Errorf("expected existing account %d to be reused, got %d", existing.ID, result.User.ID)
	}

	var reloaded models.User
	db.Preload("Roles").First(&reloaded, existing.ID)
	if reloaded.Type != models.UserTypeTenant {
		t.Errorf("user type = %q, want tenant", reloaded.Type)
	}
	if !reloaded.HasRole(models.RoleTenant) {
		t.Error("tenant role should be attached")
	}
}

func TestAcceptMultiUseAccumulates(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	ownership := createOwnership(t, db, "Palm Compound")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)

	inv := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
	})

	first, err := svc.Accept(inv.Token, registration("first@example.com"))
	if err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	second, err := svc.Accept(inv.Token, registration("second@example.com"))
	if err != nil {
		t.Fatalf("second redemption failed: %v", err)
	}

	if first.User.ID == second.User.ID {
		t.Error("redemptions should create distinct accounts")
	}

	var reloaded models.TenantInvitation
	db.Preload("Tenants").First(&reloaded, inv.ID)
	if !reloaded.IsPending() {
		t.Errorf("multi-use invitation status = %q, should stay pending", reloaded.Status)
	}
	if reloaded.AcceptedAt != nil || reloaded.AcceptedBy != nil || reloaded.TenantID != nil {
		t.Error("multi-use invitation should not record a single winner")
	}
	if len(reloaded.Tenants) != 2 {
		t.Errorf("linked tenants = %d, want 2", len(reloaded.Tenants))
	}
}

func TestAcceptSecondMappingIsNotDefault(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	first := createOwnership(t, db, "Palm Compound")
	second := createOwnership(t, db, "Oasis Towers")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)

	invA := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: first.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("tenant@example.com"),
	})
	invB := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: second.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("tenant@example.com"),
	})

	if _, err := svc.Accept(invA.Token, registration("tenant@example.com")); err != nil {
		t.Fatalf("first acceptance failed: %v", err)
	}
	result, err := svc.Accept(invB.Token, registration("tenant@example.com"))
	if err != nil {
		t.Fatalf("second acceptance failed: %v", err)
	}

	var mappings []models.UserOwnershipMapping
	db.Where("user_id = ?", result.User.ID).Order("id").Find(&mappings)
	if len(mappings) != 2 {
		t.Fatalf("mappings = %d, want 2", len(mappings))
	}
	if !mappings[0].Default || mappings[1].Default {
		t.Error("only the first mapping should be the default")
	}
}

func TestRedemptionLookupTakesRowLock(t *testing.T) {
	db := setupTestDB(t)

	var inv models.TenantInvitation
	query := invitationForUpdate(db.Session(&gorm.Session{DryRun: true}), "some-token").Find(&inv)

	// The sqlite dialect drops the locking SQL at build time, so assert on
	// the statement clause that drives the postgres build
	if _, ok := query.Statement.Clauses["FOR"]; !ok {
		t.Error("redemption lookup must carry a FOR UPDATE locking clause")
	}
}

func TestAcceptSurvivesSessionIssuanceFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	ownership := createOwnership(t, db, "Palm Compound")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)

	inv := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("tenant@example.com"),
	})

	// An empty secret makes signing fail after the redemption committed
	auth.InitJWT("")
	defer auth.InitJWT("test-secret")

	result, err := svc.Accept(inv.Token, registration("tenant@example.com"))
	if err != nil {
		t.Fatalf("Accept should not fail on session issuance alone: %v", err)
	}
	if result.Tokens != nil {
		t.Error("tokens should be absent when signing is impossible")
	}

	var reloaded models.TenantInvitation
	db.First(&reloaded, inv.ID)
	if reloaded.Status != models.InvitationStatusAccepted {
		t.Errorf("invitation status = %q, redemption should have committed", reloaded.Status)
	}
}

func TestValidateDoesNotConsume(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAcceptanceService(db)

	ownership := createOwnership(t, db, "Palm Compound")
	owner := createUser(t, db, "owner@example.com", models.UserTypeOwner)

	inv := createInvitation(t, db, &models.TenantInvitation{
		OwnershipID: ownership.ID,
		InvitedBy:   owner.ID,
		Email:       strPtr("tenant@example.com"),
	})

	for i := 0; i < 3; i++ {
		got, err := svc.Validate(inv.Token)
		if err != nil {
			t.Fatalf("Validate failed on pass %d: %v", i, err)
		}
		if got.Ownership.Name != "Palm Compound" {
			t.Error("ownership should be preloaded for the registration form")
		}
	}

	var reloaded models.TenantInvitation
	db.First(&reloaded, inv.ID)
	if !reloaded.IsPending() {
		t.Error("Validate must not change invitation state")
	}
}
