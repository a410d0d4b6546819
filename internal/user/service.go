// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"smart_advisor_backend/internal/common"
	"smart_advisor_backend/internal/config"
	"smart_advisor_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceImplementation implements the shared.Service interface.
type ServiceImplementation struct {
	repo   Repository
	cfg    *config.Config
	logger *zap.Logger
}

var _ shared.Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found by ID", zap.String("userID", id.String()))
		} else {
			s.logger.Error("Error finding user by ID", zap.Error(err), zap.String("userID", id.String()))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*shared.User, error) {
	dbUser, err := s.repo.FindByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

// GetOrCreateUserFromFirebaseClaims resolves the local user for a verified
// Firebase token, provisioning one on first sight. User creation and the
// dependent profile row are kept consistent by the profile module's
// idempotent get-or-create; there is no reactive hook.
func (s *ServiceImplementation) GetOrCreateUserFromFirebaseClaims(ctx context.Context, firebaseToken *firebaseauth.Token) (*shared.User, bool, error) {
	dbUser, err := s.repo.FindByFirebaseUID(ctx, firebaseToken.UID)
	if err == nil && dbUser != nil {
		now := time.Now()
		dbUser.LastLoginAt = &now
		applyFirebaseClaims(dbUser, firebaseToken)
		if err := s.repo.Update(ctx, dbUser); err != nil {
			// Profile sync is best effort; the login itself proceeds.
			s.logger.Error("Failed to update user from Firebase claims", zap.Error(err), zap.String("userID", dbUser.ID.String()))
		}
		return DBToShared(dbUser), false, nil
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Error finding user by Firebase UID", zap.Error(err), zap.String("firebaseUID", firebaseToken.UID))
		return nil, false, err
	}

	s.logger.Info("Creating new user from Firebase claims", zap.String("firebaseUID", firebaseToken.UID))

	now := time.Now()
	uid := firebaseToken.UID
	dbNewUser := &User{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirebaseUID:  &uid,
		AuthProvider: firebaseSignInProvider(firebaseToken),
		Role:         common.RoleUser,
		LastLoginAt:  &now,
	}
	applyFirebaseClaims(dbNewUser, firebaseToken)

	if err := s.repo.Create(ctx, dbNewUser); err != nil {
		s.logger.Error("Failed to create user from Firebase claims", zap.Error(err), zap.String("firebaseUID", firebaseToken.UID))
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, false, apiErr
		}
		return nil, false, common.ErrInternalServer.WithDetails("Could not create user account.")
	}

	s.logger.Info("New user created successfully", zap.String("userID", dbNewUser.ID.String()))
	return DBToShared(dbNewUser), true, nil
}

// applyFirebaseClaims copies profile fields from the verified token claims
// onto the GORM model.
func applyFirebaseClaims(dbUser *User, firebaseToken *firebaseauth.Token) {
	if email, ok := firebaseToken.Claims["email"].(string); ok && email != "" {
		emailCopy := strings.ToLower(strings.TrimSpace(email))
		dbUser.Email = &emailCopy
	}
	if verified, ok := firebaseToken.Claims["email_verified"].(bool); ok {
		dbUser.IsEmailVerified = verified
	}
	if name, ok := firebaseToken.Claims["name"].(string); ok && name != "" {
		first, last := splitFullName(name)
		dbUser.FirstName = &first
		if last != "" {
			dbUser.LastName = &last
		}
	}
	if picture, ok := firebaseToken.Claims["picture"].(string); ok && picture != "" {
		pictureCopy := picture
		dbUser.ProfilePictureURL = &pictureCopy
	}
}

func firebaseSignInProvider(firebaseToken *firebaseauth.Token) string {
	if firebaseToken.Firebase.SignInProvider != "" {
		return firebaseToken.Firebase.SignInProvider
	}
	return "firebase"
}

func splitFullName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
