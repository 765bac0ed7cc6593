// File: internal/middleware/auth.go
package middleware

import (
	"strings"

	"mybench_backend/internal/common"
	"mybench_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the Firebase ID token in the Authorization header,
// provisions the local user on first sight and stores the identity in the context.
func AuthMiddleware(verifier shared.TokenVerifier, userService shared.Service, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("auth_middleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader(common.AuthorizationHeader)
		if authHeader == "" {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], common.AuthorizationTypeBearer) || strings.TrimSpace(parts[1]) == "" {
			log.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired ID token."))
			return
		}

		usr, created, err := userService.GetOrCreateUserFromFirebaseClaims(c.Request.Context(), token)
		if err != nil {
			log.Warn("Could not resolve local user for Firebase token", zap.String("uid", token.UID), zap.Error(err))
			common.RespondWithError(c, err)
			return
		}
		if !usr.IsActive {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("This account has been deactivated."))
			return
		}

		c.Set(common.UserIDKey, usr.ID)
		c.Set(common.UserEmailKey, usr.Email)
		c.Set(common.UserRoleKey, usr.Role)
		c.Set(common.FirebaseUIDKey, usr.FirebaseUID)
		if usr.CompanyID != nil {
			c.Set(common.UserCompanyIDKey, *usr.CompanyID)
		}

		log.Debug("User authenticated",
			zap.String("userID", usr.ID.String()),
			zap.String("role", usr.Role),
			zap.Bool("created", created),
		)
		c.Next()
	}
}

// RoleAuthMiddleware checks that the authenticated user has one of the allowed roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := common.GetUserRoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User role not found in context."))
			return
		}
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}
