// File: internal/notification/model.go
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type defines the type of notification.
type Type string

const (
	GoogleSessionRefreshed Type = "google_session_refreshed"
	GoogleReauthRequired   Type = "google_reauth_required"
	CalendarConnected      Type = "calendar_connected"
	CalendarRevoked        Type = "calendar_revoked"
)

// Notification represents a persisted user notice. Notifications are
// immutable once created except for the read flag.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_notification_user_status" json:"user_id"`
	Type      Type      `gorm:"type:varchar(100);not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notification_user_status" json:"is_read"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_notification_user_status" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
