package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant ID document types
const (
	IDTypeNationalID             = "national_id"
	IDTypeIqama                  = "iqama"
	IDTypePassport               = "passport"
	IDTypeCommercialRegistration = "commercial_registration"
)

// Tenant employment statuses
const (
	EmploymentEmployed     = "employed"
	EmploymentSelfEmployed = "self_employed"
	EmploymentUnemployed   = "unemployed"
	EmploymentRetired      = "retired"
	EmploymentStudent      = "student"
)

// Default rating assigned to newly registered tenants
const RatingGood = "good"

// Tenant is a profile record under a single ownership, distinct from the
// User account. Created through invitation acceptance.
type Tenant struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	UserID            uint                `gorm:"not null;index" json:"user_id"`
	OwnershipID       uint                `gorm:"not null;index" json:"ownership_id"`
	InvitationID      *uint               `gorm:"index" json:"invitation_id,omitempty"`
	NationalID        *string             `gorm:"size:50" json:"national_id,omitempty"`
	IDType            string              `gorm:"size:50;default:'national_id'" json:"id_type"`
	IDExpiry          *time.Time          `json:"id_expiry,omitempty"`
	EmergencyName     *string             `gorm:"size:100" json:"emergency_name,omitempty"`
	EmergencyPhone    *string             `gorm:"size:20" json:"emergency_phone,omitempty"`
	EmergencyRelation *string             `gorm:"size:50" json:"emergency_relation,omitempty"`
	Employment        *string             `gorm:"size:50" json:"employment,omitempty"`
	Employer          *string             `gorm:"size:255" json:"employer,omitempty"`
	Income            decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"income,omitempty"`
	Rating            string              `gorm:"size:50;not null;default:'good'" json:"rating"`
	Notes             *string             `gorm:"type:text" json:"notes,omitempty"`
	User              User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Ownership         Ownership           `gorm:"foreignKey:OwnershipID" json:"ownership,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// TableName specifies the table name for Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// HasValidID reports whether the tenant's ID document is present and unexpired
func (t *Tenant) HasValidID() bool {
	return t.IDExpiry != nil && t.IDExpiry.After(time.Now())
}
