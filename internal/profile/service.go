// File: internal/profile/service.go
package profile

import (
	"context"
	"strings"

	"smart_advisor_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for profile business logic.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error)
	UpdateLocation(ctx context.Context, userID uuid.UUID, location string) (*UserProfile, error)
}

// ServiceImplementation implements the profile Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new profile service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("ProfileService"),
	}
}

var _ Service = (*ServiceImplementation)(nil)

func (s *ServiceImplementation) GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	p, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load profile", zap.Error(err), zap.String("userID", userID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not load profile.")
	}
	return p, nil
}

func (s *ServiceImplementation) UpdateLocation(ctx context.Context, userID uuid.UUID, location string) (*UserProfile, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, common.ErrBadRequest.WithDetails("Location cannot be empty.")
	}

	p, err := s.repo.UpdateLocation(ctx, userID, location)
	if err != nil {
		s.logger.Error("Failed to update location", zap.Error(err), zap.String("userID", userID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not update location.")
	}
	s.logger.Info("User location updated", zap.String("userID", userID.String()), zap.String("location", location))
	return p, nil
}
