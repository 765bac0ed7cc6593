// File: internal/company/handler.go
package company

import (
	"mybench_backend/internal/common"
	"mybench_backend/internal/middleware"
	"mybench_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for company handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new company handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for company operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	companyGroup := router.Group("/companies")
	{
		companyGroup.GET("", h.listCompanies)
		companyGroup.GET("/:id", h.getCompany)
		companyGroup.POST("", middleware.RoleAuthMiddleware(common.RoleCompanyAdmin), h.createCompany)
		companyGroup.PUT("/:id", middleware.RoleAuthMiddleware(common.RoleCompanyAdmin, common.RoleSuperAdmin), h.updateCompany)
		companyGroup.PATCH("/:id/status", middleware.RoleAuthMiddleware(common.RoleSuperAdmin), h.setStatus)

		members := companyGroup.Group("/:id/members")
		members.Use(middleware.RoleAuthMiddleware(common.RoleRecruiter, common.RoleCompanyAdmin, common.RoleSuperAdmin))
		{
			members.GET("", h.listMembers)
			members.POST("", h.addMember)
			members.DELETE("/:user_id", h.removeMember)
		}
	}
}

func (h *Handler) listCompanies(c *gin.Context) {
	var query ListCompaniesQuery
	if !common.BindQuery(c, &query) {
		return
	}
	companies, pagination, err := h.service.ListCompanies(c.Request.Context(), common.ViewerFromContext(c), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	resp := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		resp = append(resp, ToCompanyResponse(&companies[i]))
	}
	common.RespondPaginated(c, "Companies retrieved successfully.", resp, pagination)
}

// getCompany accepts either the company ID or its slug.
func (h *Handler) getCompany(c *gin.Context) {
	idOrSlug := c.Param("id")
	var (
		company *Company
		err     error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		company, err = h.service.GetCompany(c.Request.Context(), id)
	} else {
		company, err = h.service.GetCompanyBySlug(c.Request.Context(), idOrSlug)
	}
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Company retrieved successfully.", ToCompanyResponse(company))
}

func (h *Handler) createCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if !common.BindJSON(c, &req) {
		return
	}
	company, err := h.service.CreateCompany(c.Request.Context(), common.ViewerFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Company created successfully. It will be visible once approved.", ToCompanyResponse(company))
}

func (h *Handler) updateCompany(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCompanyRequest
	if !common.BindJSON(c, &req) {
		return
	}
	company, err := h.service.UpdateCompany(c.Request.Context(), common.ViewerFromContext(c), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Company updated successfully.", ToCompanyResponse(company))
}

func (h *Handler) setStatus(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req SetStatusRequest
	if !common.BindJSON(c, &req) {
		return
	}
	company, err := h.service.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Company status updated successfully.", ToCompanyResponse(company))
}

func (h *Handler) listMembers(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	members, err := h.service.ListMembers(c.Request.Context(), common.ViewerFromContext(c), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	resp := make([]shared.UserResponse, 0, len(members))
	for i := range members {
		resp = append(resp, shared.ToUserResponse(&members[i]))
	}
	common.RespondOK(c, "Company members retrieved successfully.", resp)
}

func (h *Handler) addMember(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req AddMemberRequest
	if !common.BindJSON(c, &req) {
		return
	}
	member, err := h.service.AddMember(c.Request.Context(), common.ViewerFromContext(c), id, req.Email)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Member added successfully.", shared.ToUserResponse(member))
}

func (h *Handler) removeMember(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := common.ParseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.service.RemoveMember(c.Request.Context(), common.ViewerFromContext(c), id, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
