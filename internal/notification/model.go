package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType defines the type of notification.
type NotificationType string

const (
	ApplicationReceived      NotificationType = "application_received"
	ApplicationStatusChanged NotificationType = "application_status_changed"
	ApplicationWithdrawn     NotificationType = "application_withdrawn"
)

// Notification represents a user notification.
type Notification struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_notification_user_status" json:"user_id"` // User who receives it
	Type            NotificationType `gorm:"type:varchar(100);not null" json:"type"`
	Message         string           `gorm:"type:text;not null" json:"message"`
	RelatedEntityID *uuid.UUID       `gorm:"type:uuid" json:"related_entity_id,omitempty"` // Application, job or transaction
	IsRead          bool             `gorm:"not null;default:false;index:idx_notification_user_status" json:"is_read"`
	CreatedAt       time.Time        `gorm:"not null;index:idx_notification_user_status" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns the ID in Go.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
