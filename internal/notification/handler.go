package notification

import (
	"net/http"

	"mybench_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for notification operations.
// All routes in this group should be authenticated.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.getNotifications)
		notifications.GET("/unread-count", h.getUnreadCount)
		notifications.POST("/:notification_id/mark-read", h.markNotificationAsRead)
		notifications.POST("/mark-all-read", h.markAllNotificationsAsRead)
	}
}

func (h *Handler) getNotifications(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	page, pageSize := common.GetPaginationParams(c)

	notifications, pagination, err := h.service.GetNotificationsForUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", notifications, pagination)
}

func (h *Handler) getUnreadCount(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}
	count, err := h.service.CountUnread(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Unread count retrieved successfully.", gin.H{"unread": count})
}

func (h *Handler) markNotificationAsRead(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	notificationID, ok := common.ParseUUIDParam(c, "notification_id")
	if !ok {
		return
	}

	if err := h.service.MarkNotificationAsRead(c.Request.Context(), notificationID, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "Notification marked as read successfully.", nil)
}

func (h *Handler) markAllNotificationsAsRead(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	count, err := h.service.MarkAllUserNotificationsAsRead(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "All notifications marked as read successfully.", gin.H{"marked": count})
}
