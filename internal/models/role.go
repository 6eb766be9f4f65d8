package models

import "time"

// Well-known role names
const (
	RoleTenant = "Tenant"
	RoleOwner  = "Owner"
	RoleAdmin  = "Admin"
)

// Capability strings checked by the authorizer
const (
	CapInvitationsView           = "tenants.invitations.view"
	CapInvitationsCreate         = "tenants.invitations.create"
	CapInvitationsResend         = "tenants.invitations.resend"
	CapInvitationsCancel         = "tenants.invitations.cancel"
	CapInvitationsCloseNoContact = "tenants.invitations.close_without_contact"
	CapInvitationsNotifications  = "tenants.invitations.notifications"
)

// Role groups capabilities assigned to users
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName specifies the table name for Role model
func (Role) TableName() string {
	return "roles"
}

// Permission is a single capability string grantable through a role
type Permission struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Capability string    `gorm:"uniqueIndex;not null;size:100" json:"capability"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for Permission model
func (Permission) TableName() string {
	return "permissions"
}
