package respond

import (
	"errors"

	"github.com/gin-gonic/gin"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// AppError translates a service error into the standardized response.
// Known kinds (validation/forbidden/not_found/conflict/transient) pass
// their code and message through; everything else is reported generically
// while the structured record is logged for operators.
func AppError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	code := apperr.CodeOf(err)

	var structured *apperr.Error
	message := "Unexpected server error"
	var details interface{}
	if errors.As(err, &structured) && kind != apperr.FatalInternal {
		message = structured.Message
		if len(structured.Context) > 0 {
			details = structured.Context
		}
	}
	if kind == apperr.FatalInternal {
		telemetry.Failure("http.internal_error", err, map[string]any{
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString("requestId"),
		})
		code = "internal_error"
	}
	if kind == apperr.TransientInfra {
		c.Header("Retry-After", "1")
	}

	Error(c, status, code, message, details)
}
