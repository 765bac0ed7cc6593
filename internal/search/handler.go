// File: internal/search/handler.go
package search

import (
	"net/http"

	"mybench_backend/internal/common"
	"mybench_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultMinScore is applied to job matching when min_score is not given.
const DefaultMinScore = 0.5

// Handler struct holds dependencies for search handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new search handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for candidate search and job matching.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	searchers := middleware.RoleAuthMiddleware(common.RoleRecruiter, common.RoleCompanyAdmin, common.RoleSuperAdmin)

	search := router.Group("/search")
	search.Use(searchers)
	{
		search.GET("/candidates", h.searchByQuery)
		search.POST("/candidates", h.searchByBody)
	}

	router.GET("/jobs/:id/matches", searchers, h.matchesForJob)
}

type searchResponse struct {
	Status     string             `json:"status"`
	Message    string             `json:"message,omitempty"`
	Data       *Results           `json:"data"`
	Pagination *common.Pagination `json:"pagination"`
}

func (h *Handler) respond(c *gin.Context, criteria Criteria) {
	results, err := h.service.Search(c.Request.Context(), common.ViewerFromContext(c), criteria)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchResponse{
		Status:     "success",
		Message:    "Candidates retrieved successfully.",
		Data:       results,
		Pagination: results.Pagination,
	})
}

func (h *Handler) searchByQuery(c *gin.Context) {
	var criteria Criteria
	if !common.BindQuery(c, &criteria) {
		return
	}
	h.respond(c, criteria)
}

func (h *Handler) searchByBody(c *gin.Context) {
	var criteria Criteria
	if !common.BindJSON(c, &criteria) {
		return
	}
	h.respond(c, criteria)
}

type matchQuery struct {
	MinScore *float64 `form:"min_score" binding:"omitempty,min=0,max=1"`
	Page     int      `form:"page"`
	PageSize int      `form:"page_size"`
}

func (h *Handler) matchesForJob(c *gin.Context) {
	jobID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var q matchQuery
	if !common.BindQuery(c, &q) {
		return
	}
	minScore := DefaultMinScore
	if q.MinScore != nil {
		minScore = *q.MinScore
	}
	results, err := h.service.MatchCandidatesForJob(c.Request.Context(), common.ViewerFromContext(c), jobID, minScore, q.Page, q.PageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Matches retrieved successfully.", results, results.Pagination)
}
