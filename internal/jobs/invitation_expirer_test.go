package jobs

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ownership-api/internal/models"
)

var testDBSeq int

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:jobstest%d?mode=memory&cache=shared", testDBSeq)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&models.TenantInvitation{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func seedInvitation(t *testing.T, db *gorm.DB, status string, expiresAt time.Time) *models.TenantInvitation {
	t.Helper()

	testDBSeq++
	inv := models.TenantInvitation{
		UUID:        fmt.Sprintf("uuid-%d", testDBSeq),
		OwnershipID: 1,
		InvitedBy:   1,
		Token:       fmt.Sprintf("token-%d", testDBSeq),
		Status:      status,
		ExpiresAt:   expiresAt,
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("failed to seed invitation: %v", err)
	}
	return &inv
}

func TestSweepOnceExpiresOverduePending(t *testing.T) {
	db := setupTestDB(t)

	overdue := seedInvitation(t, db, models.InvitationStatusPending, time.Now().Add(-time.Hour))
	future := seedInvitation(t, db, models.InvitationStatusPending, time.Now().Add(time.Hour))
	accepted := seedInvitation(t, db, models.InvitationStatusAccepted, time.Now().Add(-time.Hour))
	cancelled := seedInvitation(t, db, models.InvitationStatusCancelled, time.Now().Add(-time.Hour))

	expirer := NewInvitationExpirer(db, time.Minute)
	expirer.SweepOnce()

	wantStatus := map[uint]string{
		overdue.ID:   models.InvitationStatusExpired,
		future.ID:    models.InvitationStatusPending,
		accepted.ID:  models.InvitationStatusAccepted,
		cancelled.ID: models.InvitationStatusCancelled,
	}

	for id, want := range wantStatus {
		var inv models.TenantInvitation
		if err := db.First(&inv, id).Error; err != nil {
			t.Fatalf("failed to reload invitation %d: %v", id, err)
		}
		if inv.Status != want {
			t.Errorf("invitation %d status = %q, want %q", id, inv.Status, want)
		}
	}
}

func TestSweepOnceIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	inv := seedInvitation(t, db, models.InvitationStatusPending, time.Now().Add(-time.Hour))

	expirer := NewInvitationExpirer(db, time.Minute)
	expirer.SweepOnce()
	expirer.SweepOnce()

	var reloaded models.TenantInvitation
	db.First(&reloaded, inv.ID)
	if reloaded.Status != models.InvitationStatusExpired {
		t.Errorf("status = %q, want expired", reloaded.Status)
	}
}

func TestSweepOnceExpiresMultiUseLinks(t *testing.T) {
	db := setupTestDB(t)

	// Link without contact, still bound by its deadline
	link := seedInvitation(t, db, models.InvitationStatusPending, time.Now().Add(-time.Minute))

	expirer := NewInvitationExpirer(db, time.Minute)
	expirer.SweepOnce()

	var reloaded models.TenantInvitation
	db.First(&reloaded, link.ID)
	if reloaded.Status != models.InvitationStatusExpired {
		t.Errorf("multi-use link status = %q, want expired", reloaded.Status)
	}
}
