// File: internal/profile/model.go
package profile

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile stores per-user advisor settings: the home location driving the
// weather and events lookups, and the serialized Google credential blob.
// Exactly one row exists per user; rows are created lazily with an idempotent
// get-or-create and removed only by the user-deletion cascade.
type UserProfile struct {
	UserID                uuid.UUID `gorm:"type:uuid;primary_key"`
	Location              *string   `gorm:"type:varchar(100)"`
	GoogleCredentialsJSON *string   `gorm:"type:text"`
	CreatedAt             time.Time `gorm:"not null;default:current_timestamp"`
	UpdatedAt             time.Time `gorm:"not null;default:current_timestamp"`
}

// TableName specifies the table name for GORM.
func (UserProfile) TableName() string {
	return "user_profiles"
}

// ProfileResponse defines the structure for profile data in API responses.
type ProfileResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Location  *string   `json:"location,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	// Whether a Google credential blob is stored; the blob itself is never exposed.
	GoogleConnected bool `json:"google_connected"`
}

// ToProfileResponse converts a UserProfile model to a ProfileResponse DTO.
func ToProfileResponse(p *UserProfile) ProfileResponse {
	return ProfileResponse{
		UserID:          p.UserID,
		Location:        p.Location,
		UpdatedAt:       p.UpdatedAt,
		GoogleConnected: p.GoogleCredentialsJSON != nil && *p.GoogleCredentialsJSON != "",
	}
}

// UpdateProfileRequest defines the payload for location updates.
type UpdateProfileRequest struct {
	Location string `json:"location" binding:"required,min=1,max=100"`
}
