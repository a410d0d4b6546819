// File: internal/notification/service.go
package notification

import (
	"context"

	"smart_advisor_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for notification business logic.
type Service interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, nType Type, message string) (*Notification, error)
	// Notify is the fire-and-forget form used by flows that must not fail
	// because a notice could not be written.
	Notify(ctx context.Context, userID uuid.UUID, nType Type, message string)
	GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ServiceImplementation implements the notification Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("NotificationService"),
	}
}

var _ Service = (*ServiceImplementation)(nil)

func (s *ServiceImplementation) CreateNotification(ctx context.Context, userID uuid.UUID, nType Type, message string) (*Notification, error) {
	n := &Notification{
		UserID:  userID,
		Type:    nType,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.Error(err), zap.String("userID", userID.String()), zap.String("type", string(nType)))
		return nil, common.ErrInternalServer.WithDetails("Could not create notification.")
	}
	s.logger.Debug("Notification created",
		zap.String("userID", userID.String()), zap.String("type", string(nType)))
	return n, nil
}

func (s *ServiceImplementation) Notify(ctx context.Context, userID uuid.UUID, nType Type, message string) {
	// Errors are already logged by CreateNotification.
	_, _ = s.CreateNotification(ctx, userID, nType, message)
}

func (s *ServiceImplementation) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	notifications, pagination, err := s.repo.GetByUserID(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to fetch notifications", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not fetch notifications.")
	}
	return notifications, pagination, nil
}

func (s *ServiceImplementation) MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *ServiceImplementation) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.Error(err), zap.String("userID", userID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not update notifications.")
	}
	return count, nil
}
