package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditdomain "github.com/casaantigua/anticuario/internal/audit/domain"
	authdomain "github.com/casaantigua/anticuario/internal/auth/domain"
	clientdomain "github.com/casaantigua/anticuario/internal/client/domain"
	installmentdomain "github.com/casaantigua/anticuario/internal/installment/domain"
	inventorydomain "github.com/casaantigua/anticuario/internal/inventory/domain"
	landingdomain "github.com/casaantigua/anticuario/internal/landing/domain"
	qrdomain "github.com/casaantigua/anticuario/internal/qr/domain"
	saledomain "github.com/casaantigua/anticuario/internal/sale/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// envelope is the uniform response shape for every JSON endpoint.
type envelope struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Count   *int          `json:"count,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   *errorPayload `json:"error,omitempty"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

func respondList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Count: &count})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message})
}

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

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, envelope{Success: false, Error: &payload})
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
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "request", Code: err.Error(), Message: err.Error()},
			},
		}
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "authentication required",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "insufficient permissions",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	}

	// Internal details never leak to the client.
	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	validation := []error{
		authdomain.ErrInvalidEmail,
		authdomain.ErrInvalidPassword,
		authdomain.ErrInvalidRole,
		auditdomain.ErrInvalidAction,
		auditdomain.ErrInvalidPageToken,
		auditdomain.ErrInvalidTimeRange,
		clientdomain.ErrInvalidID,
		clientdomain.ErrInvalidName,
		clientdomain.ErrInvalidEmail,
		installmentdomain.ErrInvalidPlanID,
		installmentdomain.ErrInvalidPaymentID,
		installmentdomain.ErrInvalidSale,
		installmentdomain.ErrInvalidClient,
		installmentdomain.ErrInvalidAmount,
		installmentdomain.ErrInvalidSchedule,
		installmentdomain.ErrInvalidFrequency,
		installmentdomain.ErrInvalidStatus,
		inventorydomain.ErrInvalidID,
		inventorydomain.ErrInvalidFriendlyID,
		inventorydomain.ErrInvalidName,
		inventorydomain.ErrInvalidCategory,
		inventorydomain.ErrInvalidQuantity,
		inventorydomain.ErrInvalidStatus,
		inventorydomain.ErrInvalidPrice,
		landingdomain.ErrInvalidItemID,
		landingdomain.ErrInvalidSection,
		landingdomain.ErrInvalidOrder,
		landingdomain.ErrDuplicatePosition,
		landingdomain.ErrDuplicateItem,
		landingdomain.ErrSectionFull,
		qrdomain.ErrInvalidItemID,
		qrdomain.ErrInvalidFormat,
		qrdomain.ErrInvalidSize,
		saledomain.ErrInvalidID,
		saledomain.ErrInvalidClient,
		saledomain.ErrInvalidPaymentMethod,
		saledomain.ErrInvalidStatus,
		saledomain.ErrNoLines,
		saledomain.ErrInvalidQuantity,
		saledomain.ErrInvalidPrice,
	}
	for _, candidate := range validation {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

func isUnauthorizedError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, authdomain.ErrInvalidCredentials) ||
		errors.Is(err, authdomain.ErrInvalidToken)
}

func isNotFoundError(err error) bool {
	notFound := []error{
		authdomain.ErrNotFound,
		clientdomain.ErrNotFound,
		installmentdomain.ErrPlanNotFound,
		installmentdomain.ErrPaymentNotFound,
		inventorydomain.ErrNotFound,
		landingdomain.ErrItemNotFound,
		qrdomain.ErrItemNotFound,
		saledomain.ErrNotFound,
		saledomain.ErrItemNotFound,
		gorm.ErrRecordNotFound,
	}
	for _, candidate := range notFound {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

func isConflictError(err error) bool {
	conflicts := []error{
		authdomain.ErrDuplicateEmail,
		clientdomain.ErrDuplicateEmail,
		clientdomain.ErrClientInUse,
		installmentdomain.ErrPlanNotActive,
		inventorydomain.ErrDuplicateFriendlyID,
		inventorydomain.ErrInsufficientStock,
		inventorydomain.ErrItemInUse,
		saledomain.ErrInsufficientStock,
		saledomain.ErrInvalidTransition,
	}
	for _, candidate := range conflicts {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

// classifyErrorForLog keeps expected business failures out of the error
// logs; only 5xx-worthy errors log at error level.
func classifyErrorForLog(err error) (errorType, errorCode string) {
	switch {
	case err == nil:
		return "", ""
	case asValidationErrors(err) != nil:
		return "validation_error", "validation_error"
	case isValidationError(err):
		return "validation_error", err.Error()
	case isUnauthorizedError(err):
		return "unauthorized", err.Error()
	case errors.Is(err, ErrForbidden):
		return "forbidden", err.Error()
	case isNotFoundError(err):
		return "not_found", err.Error()
	case isConflictError(err):
		return "conflict", err.Error()
	}
	return "internal_error", "internal_error"
}
