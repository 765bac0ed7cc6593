package common

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON binds the request body into req and writes the matching error response on failure.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			RespondWithError(c, NewValidationAPIError(FormatValidationErrors(ve)))
			return false
		}
		RespondWithError(c, ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}

// BindQuery binds query parameters into req and writes the matching error response on failure.
func BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			RespondWithError(c, NewValidationAPIError(FormatValidationErrors(ve)))
			return false
		}
		RespondWithError(c, ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}
