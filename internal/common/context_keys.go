// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for the authorization token.
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens.
	AuthorizationTypeBearer = "Bearer"
	// UserIDKey is the context key for storing the authenticated user's ID.
	UserIDKey = "userID"
	// UserEmailKey is the context key for storing the authenticated user's email.
	UserEmailKey = "userEmail"
	// FirebaseUIDKey is the context key for storing the Firebase UID.
	FirebaseUIDKey = "firebaseUID"

	// RoleUser is the default role assigned to new users.
	RoleUser = "user"
	// RoleAdmin marks administrative users.
	RoleAdmin = "admin"
)
