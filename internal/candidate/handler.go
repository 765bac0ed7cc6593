// File: internal/candidate/handler.go
package candidate

import (
	"mybench_backend/internal/common"
	"mybench_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for candidate handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new candidate handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for candidate operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	candidates := router.Group("/candidates")
	{
		me := candidates.Group("/me")
		me.Use(middleware.RoleAuthMiddleware(common.RoleCandidate))
		{
			me.GET("", h.getMyProfile)
			me.PUT("", h.upsertMyProfile)
		}

		bench := candidates.Group("/bench")
		bench.Use(middleware.RoleAuthMiddleware(common.RoleRecruiter, common.RoleCompanyAdmin, common.RoleSuperAdmin))
		{
			bench.GET("", h.listMyBench)
			bench.POST("", h.createBench)
			bench.PUT("/:id", h.updateBench)
			bench.DELETE("/:id", h.deleteBench)
		}

		candidates.GET("/:id", h.getCandidate)
	}
}

func (h *Handler) getMyProfile(c *gin.Context) {
	profile, err := h.service.GetMyProfile(c.Request.Context(), common.ViewerFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved successfully.", ToCandidateResponse(profile, true))
}

func (h *Handler) upsertMyProfile(c *gin.Context) {
	var req UpsertProfileRequest
	if !common.BindJSON(c, &req) {
		return
	}
	profile, err := h.service.UpsertMyProfile(c.Request.Context(), common.ViewerFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile saved successfully.", ToCandidateResponse(profile, true))
}

func (h *Handler) listMyBench(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	list, pagination, err := h.service.ListMyBench(c.Request.Context(), common.ViewerFromContext(c), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	resp := make([]CandidateResponse, 0, len(list))
	for i := range list {
		resp = append(resp, ToCandidateResponse(&list[i], true))
	}
	common.RespondPaginated(c, "Bench retrieved successfully.", resp, pagination)
}

func (h *Handler) createBench(c *gin.Context) {
	var req BenchCandidateRequest
	if !common.BindJSON(c, &req) {
		return
	}
	created, err := h.service.CreateBench(c.Request.Context(), common.ViewerFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Bench candidate created successfully.", ToCandidateResponse(created, true))
}

func (h *Handler) updateBench(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req BenchCandidateRequest
	if !common.BindJSON(c, &req) {
		return
	}
	updated, err := h.service.UpdateBench(c.Request.Context(), common.ViewerFromContext(c), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Bench candidate updated successfully.", ToCandidateResponse(updated, true))
}

func (h *Handler) deleteBench(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteBench(c.Request.Context(), common.ViewerFromContext(c), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) getCandidate(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.service.GetCandidate(c.Request.Context(), common.ViewerFromContext(c), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Candidate retrieved successfully.", ToCandidateResponse(view.Candidate, view.ContactVisible))
}
