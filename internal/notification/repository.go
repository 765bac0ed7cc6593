package notification

import (
	"context"
	"errors"
	"fmt"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	FindByID(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) (*Notification, error) // userID for ownership check
	MarkAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) // Return count of marked notifications
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// Create inserts a new notification into the database.
func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByUserID retrieves a paginated list of notifications for a specific user, newest first.
func (r *GORMRepository) GetByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	var notifications []Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting notifications for user %s failed: %w", userID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	err := query.Order("created_at DESC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching notifications for user %s failed: %w", userID, err)
	}
	return notifications, pagination, nil
}

// FindByID retrieves a specific notification by its ID, ensuring it belongs to the provided userID.
func (r *GORMRepository) FindByID(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) (*Notification, error) {
	var notification Notification
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Notification not found or not owned by user.")
		}
		return nil, fmt.Errorf("failed to find notification %s for user %s: %w", notificationID, userID, err)
	}
	return &notification, nil
}

// MarkAsRead marks a specific notification as read for a user. Marking an
// already read notification is a no-op.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	notification, err := r.FindByID(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification %s as read for user %s: %w", notificationID, userID, result.Error)
	}
	return nil
}

// MarkAllAsRead marks all unread notifications for a user as read.
// It returns the count of notifications that were updated.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// CountUnread returns how many unread notifications the user has.
func (r *GORMRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	return count, nil
}
