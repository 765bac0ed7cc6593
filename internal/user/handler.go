// File: internal/user/handler.go
package user

import (
	"mybench_backend/internal/common"
	"mybench_backend/internal/middleware"
	"mybench_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for user handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for user operations. The group is expected
// to be behind the auth middleware already.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	userGroup := router.Group("/users")
	{
		userGroup.GET("/me", h.getMe)
		userGroup.PATCH("/me", h.updateMe)

		admin := userGroup.Group("")
		admin.Use(middleware.RoleAuthMiddleware(common.RoleSuperAdmin))
		{
			admin.GET("", h.listUsers)
			admin.PATCH("/:id/role", h.updateRole)
			admin.PATCH("/:id/active", h.setActive)
		}
	}
}

func (h *Handler) getMe(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		h.logger.Error("User ID not found in context for /me", zap.String("path", c.Request.URL.Path))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User identifier missing."))
		return
	}
	usr, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User profile retrieved successfully.", shared.ToUserResponse(usr))
}

func (h *Handler) updateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if !common.BindJSON(c, &req) {
		return
	}
	usr, err := h.service.UpdateProfile(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated successfully.", shared.ToUserResponse(usr))
}

func (h *Handler) listUsers(c *gin.Context) {
	var query ListUsersQuery
	if !common.BindQuery(c, &query) {
		return
	}
	users, pagination, err := h.service.ListUsers(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	resp := make([]shared.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, shared.ToUserResponse(&users[i]))
	}
	common.RespondPaginated(c, "Users retrieved successfully.", resp, pagination)
}

func (h *Handler) updateRole(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !common.BindJSON(c, &req) {
		return
	}
	usr, err := h.service.UpdateRole(c.Request.Context(), common.ViewerFromContext(c), id, req.Role)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User role updated successfully.", shared.ToUserResponse(usr))
}

func (h *Handler) setActive(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !common.BindJSON(c, &req) {
		return
	}
	usr, err := h.service.SetActive(c.Request.Context(), common.ViewerFromContext(c), id, *req.IsActive)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User status updated successfully.", shared.ToUserResponse(usr))
}
