package models

import "time"

// Ownership is the tenancy/organization scope invitations grant access to
type Ownership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	City      string    `gorm:"size:100" json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Ownership model
func (Ownership) TableName() string {
	return "ownerships"
}

// UserOwnershipMapping links a user to an ownership scope.
// At most one mapping per user carries Default = true.
type UserOwnershipMapping struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_ownership" json:"user_id"`
	OwnershipID uint      `gorm:"not null;uniqueIndex:idx_user_ownership" json:"ownership_id"`
	Default     bool      `gorm:"not null;default:false" json:"default"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Ownership   Ownership `gorm:"foreignKey:OwnershipID" json:"ownership,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for UserOwnershipMapping model
func (UserOwnershipMapping) TableName() string {
	return "user_ownership_mappings"
}
