package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/riparohq/riparo/internal/assignment/domain"
	auditdomain "github.com/riparohq/riparo/internal/audit/domain"
	"github.com/riparohq/riparo/internal/authorization"
	malfunctiondomain "github.com/riparohq/riparo/internal/malfunction/domain"
	productdomain "github.com/riparohq/riparo/internal/product/domain"
	centerdomain "github.com/riparohq/riparo/internal/servicecenter/domain"
	userdomain "github.com/riparohq/riparo/internal/user/domain"
	"gorm.io/gorm"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var (
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware converts domain sentinel errors pushed via
// AbortWithError into the JSON error envelope. Validation and conflict
// failures share status 422; only the message differs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Message: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func mapError(err error) (int, string) {
	switch {
	case isValidationError(err), isConflictError(err):
		return http.StatusUnprocessableEntity, err.Error()
	case isForbiddenError(err):
		return http.StatusForbidden, "forbidden"
	case isNotFoundError(err):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isProductValidationError(err),
		isMalfunctionValidationError(err),
		isCenterValidationError(err),
		isAssignmentValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrModelExists),
		errors.Is(err, centerdomain.ErrCenterExists),
		errors.Is(err, centerdomain.ErrHasTechnicians),
		errors.Is(err, assignmentdomain.ErrSameAssignee),
		errors.Is(err, assignmentdomain.ErrSameCenter),
		errors.Is(err, assignmentdomain.ErrNotAssignedToCenter):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, malfunctiondomain.ErrNotOwner):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, malfunctiondomain.ErrNotFound),
		errors.Is(err, malfunctiondomain.ErrProductNotFound),
		errors.Is(err, centerdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, assignmentdomain.ErrProductNotFound),
		errors.Is(err, assignmentdomain.ErrUserNotFound),
		errors.Is(err, assignmentdomain.ErrCenterNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isAuditValidationError(err error) bool {
	switch {
	case errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}
