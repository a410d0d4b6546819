// File: internal/shared/core.go
package shared

import (
	"context"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
)

// User represents a user in the system, decoupled from the GORM model.
type User struct {
	ID                uuid.UUID
	Email             *string
	FirstName         *string
	LastName          *string
	Role              string
	ProfilePictureURL *string
	AuthProvider      string
	IsEmailVerified   bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLoginAt       *time.Time
}

// Service defines the interface for user-related business logic consumed by
// the auth middleware and other modules.
type Service interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error)
	GetOrCreateUserFromFirebaseClaims(ctx context.Context, firebaseToken *firebaseauth.Token) (usr *User, wasCreated bool, err error)
}
