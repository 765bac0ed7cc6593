// File: internal/credit/handler.go
package credit

import (
	"mybench_backend/internal/candidate"
	"mybench_backend/internal/common"
	"mybench_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for credit handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new credit handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for credit operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	credits := router.Group("/credits")
	credits.Use(middleware.RoleAuthMiddleware(common.RoleRecruiter, common.RoleCompanyAdmin, common.RoleSuperAdmin))
	{
		credits.GET("/balance", h.getBalance)
		credits.GET("/transactions", h.listTransactions)
		credits.POST("/unlock/:candidate_id", h.unlockContact)
		credits.POST("/grant", middleware.RoleAuthMiddleware(common.RoleSuperAdmin), h.grant)
	}
}

func (h *Handler) getBalance(c *gin.Context) {
	balance, err := h.service.GetBalance(c.Request.Context(), common.ViewerFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Balance retrieved successfully.", balance)
}

func (h *Handler) listTransactions(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	entries, pagination, err := h.service.ListTransactions(c.Request.Context(), common.ViewerFromContext(c), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	out := make([]TransactionResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToTransactionResponse(&entries[i]))
	}
	common.RespondPaginated(c, "Transactions retrieved successfully.", out, pagination)
}

type unlockResponse struct {
	Candidate       candidate.CandidateResponse `json:"candidate"`
	Charged         int                         `json:"charged"`
	Balance         int                         `json:"balance"`
	AlreadyUnlocked bool                        `json:"already_unlocked"`
}

func (h *Handler) unlockContact(c *gin.Context) {
	candidateID, ok := common.ParseUUIDParam(c, "candidate_id")
	if !ok {
		return
	}
	result, err := h.service.UnlockContact(c.Request.Context(), common.ViewerFromContext(c), candidateID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Contact details unlocked.", unlockResponse{
		Candidate:       candidate.ToCandidateResponse(result.Candidate, true),
		Charged:         result.Charged,
		Balance:         result.Balance,
		AlreadyUnlocked: result.AlreadyUnlocked,
	})
}

func (h *Handler) grant(c *gin.Context) {
	var req GrantRequest
	if !common.BindJSON(c, &req) {
		return
	}
	entry, err := h.service.Grant(c.Request.Context(), common.ViewerFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Credits granted successfully.", ToTransactionResponse(entry))
}
