// File: internal/application/handler.go
package application

import (
	"mybench_backend/internal/common"
	"mybench_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for application handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new application handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for application operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	candidates := middleware.RoleAuthMiddleware(common.RoleCandidate)
	recruiters := middleware.RoleAuthMiddleware(common.RoleRecruiter, common.RoleCompanyAdmin)
	hiring := middleware.RoleAuthMiddleware(common.RoleRecruiter, common.RoleCompanyAdmin, common.RoleSuperAdmin)

	jobs := router.Group("/jobs")
	{
		jobs.POST("/:id/apply", candidates, h.apply)
		jobs.POST("/:id/submissions", recruiters, h.submit)
		jobs.GET("/:id/applications", hiring, h.listForJob)
	}

	apps := router.Group("/applications")
	{
		apps.GET("/mine", h.listMine)
		apps.PATCH("/:id/status", hiring, h.updateStatus)
		apps.POST("/:id/withdraw", h.withdraw)
	}
}

func respondEntries(c *gin.Context, entries []Entry, pagination *common.Pagination) {
	out := make([]ApplicationResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToApplicationResponse(&entries[i].Application, entries[i].Candidate))
	}
	common.RespondPaginated(c, "Applications retrieved successfully.", out, pagination)
}

func (h *Handler) apply(c *gin.Context) {
	jobID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ApplyRequest
	if c.Request.ContentLength != 0 && !common.BindJSON(c, &req) {
		return
	}
	a, err := h.service.Apply(c.Request.Context(), common.ViewerFromContext(c), jobID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Application submitted successfully.", ToApplicationResponse(a, nil))
}

func (h *Handler) submit(c *gin.Context) {
	jobID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req SubmitRequest
	if !common.BindJSON(c, &req) {
		return
	}
	a, err := h.service.Submit(c.Request.Context(), common.ViewerFromContext(c), jobID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Candidate submitted successfully.", ToApplicationResponse(a, nil))
}

func (h *Handler) listForJob(c *gin.Context) {
	jobID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var query ListQuery
	if !common.BindQuery(c, &query) {
		return
	}
	entries, pagination, err := h.service.ListForJob(c.Request.Context(), common.ViewerFromContext(c), jobID, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	respondEntries(c, entries, pagination)
}

func (h *Handler) listMine(c *gin.Context) {
	var query ListQuery
	if !common.BindQuery(c, &query) {
		return
	}
	entries, pagination, err := h.service.ListMine(c.Request.Context(), common.ViewerFromContext(c), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	respondEntries(c, entries, pagination)
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !common.BindJSON(c, &req) {
		return
	}
	a, err := h.service.UpdateStatus(c.Request.Context(), common.ViewerFromContext(c), id, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Application status updated.", ToApplicationResponse(a, nil))
}

func (h *Handler) withdraw(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	a, err := h.service.Withdraw(c.Request.Context(), common.ViewerFromContext(c), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Application withdrawn.", ToApplicationResponse(a, nil))
}
