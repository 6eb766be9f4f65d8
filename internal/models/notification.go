package models

import "time"

// Notification types
const (
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"
)

// Notification category for the invitation lifecycle fan-out
const NotificationCategoryTenantInvitation = "tenant_invitation"

// Notification is an in-app message delivered to a single user
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Type      string     `gorm:"size:20;not null;default:'info'" json:"type"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Category  string     `gorm:"size:50;index" json:"category"`
	ActionURL string     `gorm:"size:255" json:"action_url,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name for Notification model
func (Notification) TableName() string {
	return "notifications"
}
