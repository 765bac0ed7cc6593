package notification

import (
	"context"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the notification operations used by handlers and other domain services.
type Service interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, notifType NotificationType, message string, relatedEntityID *uuid.UUID) (*Notification, error)
	GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Named("notification_service"),
	}
}

func (s *service) CreateNotification(ctx context.Context, userID uuid.UUID, notifType NotificationType, message string, relatedEntityID *uuid.UUID) (*Notification, error) {
	n := &Notification{
		UserID:          userID,
		Type:            notifType,
		Message:         message,
		RelatedEntityID: relatedEntityID,
		IsRead:          false,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.Error(err),
			zap.String("userID", userID.String()),
			zap.String("type", string(notifType)),
		)
		return nil, common.ErrInternalServer.WithDetails("Could not create notification.")
	}
	return n, nil
}

func (s *service) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	notifications, pagination, err := s.repo.GetByUserID(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to get notifications", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return notifications, pagination, nil
}

func (s *service) MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if apiErr, ok := common.IsAPIError(err); ok {
			return apiErr
		}
		s.logger.Error("Failed to mark notification as read", zap.Error(err), zap.String("notificationID", notificationID.String()))
		return common.ErrInternalServer.WithDetails("Could not mark notification as read.")
	}
	return nil
}

func (s *service) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.Error(err), zap.String("userID", userID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")
	}
	return count, nil
}

func (s *service) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", zap.Error(err), zap.String("userID", userID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not count notifications.")
	}
	return count, nil
}
