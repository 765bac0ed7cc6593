// File: internal/job/handler.go
package job

import (
	"mybench_backend/internal/common"
	"mybench_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for job handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new job handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for job operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/jobs")
	posters := middleware.RoleAuthMiddleware(common.RoleRecruiter, common.RoleCompanyAdmin, common.RoleSuperAdmin)
	{
		jobs.GET("", h.listJobs)
		jobs.GET("/:id", h.getJob)
		jobs.POST("", posters, h.createJob)
		jobs.PUT("/:id", posters, h.updateJob)
		jobs.POST("/:id/close", posters, h.closeJob)
	}
}

func (h *Handler) createJob(c *gin.Context) {
	var req CreateJobRequest
	if !common.BindJSON(c, &req) {
		return
	}
	j, err := h.service.CreateJob(c.Request.Context(), common.ViewerFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Job created successfully.", ToJobResponse(j))
}

func (h *Handler) listJobs(c *gin.Context) {
	var query ListJobsQuery
	if !common.BindQuery(c, &query) {
		return
	}
	jobs, pagination, err := h.service.ListJobs(c.Request.Context(), common.ViewerFromContext(c), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, ToJobResponse(&jobs[i]))
	}
	common.RespondPaginated(c, "Jobs retrieved successfully.", out, pagination)
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	j, err := h.service.GetJob(c.Request.Context(), common.ViewerFromContext(c), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Job retrieved successfully.", ToJobResponse(j))
}

func (h *Handler) updateJob(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateJobRequest
	if !common.BindJSON(c, &req) {
		return
	}
	j, err := h.service.UpdateJob(c.Request.Context(), common.ViewerFromContext(c), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Job updated successfully.", ToJobResponse(j))
}

func (h *Handler) closeJob(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	j, err := h.service.CloseJob(c.Request.Context(), common.ViewerFromContext(c), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Job closed successfully.", ToJobResponse(j))
}
