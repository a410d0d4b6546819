// File: internal/user/model.go
package user

import (
	"time"

	"smart_advisor_backend/internal/common"
	"smart_advisor_backend/internal/shared"

	"github.com/google/uuid"
)

// User represents the user model in the database.
type User struct {
	common.BaseModel          // Embeds ID, CreatedAt, UpdatedAt
	FirebaseUID       *string `gorm:"type:varchar(128);uniqueIndex"`
	Email             *string `gorm:"type:varchar(255);uniqueIndex"` // Pointer to allow NULL
	FirstName         *string `gorm:"type:varchar(100)"`
	LastName          *string `gorm:"type:varchar(100)"`
	ProfilePictureURL *string `gorm:"type:text"`
	AuthProvider      string  `gorm:"type:varchar(50);not null;default:'firebase'"`
	IsEmailVerified   bool    `gorm:"not null;default:false"`
	Role              string  `gorm:"type:varchar(50);not null;default:'user'"`
	LastLoginAt       *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID                uuid.UUID  `json:"id"`
	Email             *string    `json:"email,omitempty"`
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	AuthProvider      string     `json:"auth_provider"`
	IsEmailVerified   bool       `json:"is_email_verified"`
	Role              string     `json:"role"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
}

// ToUserResponse converts a shared.User to a UserResponse DTO.
func ToUserResponse(usr *shared.User) UserResponse {
	return UserResponse{
		ID:                usr.ID,
		Email:             usr.Email,
		FirstName:         usr.FirstName,
		LastName:          usr.LastName,
		ProfilePictureURL: usr.ProfilePictureURL,
		AuthProvider:      usr.AuthProvider,
		IsEmailVerified:   usr.IsEmailVerified,
		Role:              usr.Role,
		CreatedAt:         usr.CreatedAt,
		UpdatedAt:         usr.UpdatedAt,
		LastLoginAt:       usr.LastLoginAt,
	}
}

// DBToShared converts a GORM User model to the shared.User DTO.
func DBToShared(usr *User) *shared.User {
	return &shared.User{
		ID:                usr.ID,
		Email:             usr.Email,
		FirstName:         usr.FirstName,
		LastName:          usr.LastName,
		Role:              usr.Role,
		ProfilePictureURL: usr.ProfilePictureURL,
		AuthProvider:      usr.AuthProvider,
		IsEmailVerified:   usr.IsEmailVerified,
		CreatedAt:         usr.CreatedAt,
		UpdatedAt:         usr.UpdatedAt,
		LastLoginAt:       usr.LastLoginAt,
	}
}
