package main

import (
	"log"

	"ownership-api/internal/config"
	"ownership-api/internal/database"
	"ownership-api/internal/models"
	"ownership-api/internal/services"
)

// Capabilities granted to the Owner role out of the box. The elevated
// close-without-contact capability is granted separately to admins only.
var ownerCapabilities = []string{
	models.CapInvitationsView,
	models.CapInvitationsCreate,
	models.CapInvitationsResend,
	models.CapInvitationsCancel,
	models.CapInvitationsNotifications,
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run schema migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Seed roles and capabilities
	for _, capability := range ownerCapabilities {
		if err := services.GrantCapability(db, models.RoleOwner, capability); err != nil {
			log.Fatalf("Failed to grant %s to %s: %v", capability, models.RoleOwner, err)
		}
	}

	adminCapabilities := append(ownerCapabilities, models.CapInvitationsCloseNoContact)
	for _, capability := range adminCapabilities {
		if err := services.GrantCapability(db, models.RoleAdmin, capability); err != nil {
			log.Fatalf("Failed to grant %s to %s: %v", capability, models.RoleAdmin, err)
		}
	}

	// The Tenant role carries no invitation capabilities but must exist for
	// role assignment during acceptance
	var tenantRole models.Role
	if err := db.Where("name = ?", models.RoleTenant).
		FirstOrCreate(&tenantRole, models.Role{Name: models.RoleTenant}).Error; err != nil {
		log.Fatalf("Failed to ensure tenant role: %v", err)
	}

	log.Println("Migrations and seed data applied successfully")
}
