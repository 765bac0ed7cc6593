package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Viewer identifies the authenticated user on whose behalf a service call runs.
type Viewer struct {
	UserID    uuid.UUID
	Role      string
	CompanyID *uuid.UUID
	Email     string
}

func (v Viewer) IsSuperAdmin() bool { return v.Role == RoleSuperAdmin }

// InCompany reports whether the viewer is a member of the given company.
func (v Viewer) InCompany(companyID *uuid.UUID) bool {
	if v.CompanyID == nil || companyID == nil {
		return false
	}
	return *v.CompanyID == *companyID
}

// ViewerFromContext builds a Viewer from values set by the auth middleware.
func ViewerFromContext(c *gin.Context) Viewer {
	v := Viewer{
		UserID: GetUserIDFromContext(c),
		Role:   GetUserRoleFromContext(c),
		Email:  c.GetString(UserEmailKey),
	}
	if val, ok := c.Get(UserCompanyIDKey); ok {
		if id, ok := val.(uuid.UUID); ok && id != uuid.Nil {
			v.CompanyID = &id
		}
	}
	return v
}
