package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
)

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors become 500 with a generic message so internals do not leak.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	var (
		validationErr *ValidationFailure
		domainValErr  *domain.ValidationError
		tooLarge      *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, NewErrorResponse(ErrorCodePayloadTooLarge, "request body too large")

	case errors.As(err, &validationErr):
		return http.StatusBadRequest, NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", validationErr.Fields)

	case errors.Is(err, ErrBinding):
		return http.StatusBadRequest, NewErrorResponse(ErrorCodeBadRequest, "malformed request body")

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())
		if errors.As(err, &domainValErr) && domainValErr.Field != "" {
			resp.Error.Details = map[string]string{domainValErr.Field: domainValErr.Message}
		}

		return http.StatusBadRequest, resp

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// ValidationFailure carries field-level request validation messages.
type ValidationFailure struct {
	Fields map[string]string
	cause  error
}

// Error implements the error interface.
func (v *ValidationFailure) Error() string {
	return v.cause.Error()
}

// Unwrap returns the validator error.
func (v *ValidationFailure) Unwrap() error {
	return v.cause
}

// HandleError writes the error envelope for err, tagged with the trace ID.
// Binding and validator errors from BindAndValidate are reported per field.
func HandleError(c *gin.Context, err error) {
	if IsValidationError(err) {
		err = &ValidationFailure{Fields: ValidationErrors(err), cause: err}
	}

	status, resp := MapDomainError(err)

	ctx := c.Request.Context()
	resp.TraceID = telemetry.TraceID(ctx)

	if status == http.StatusInternalServerError {
		logging.FromContext(ctx).ErrorContext(ctx, "internal error",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.AbortWithStatusJSON(status, resp)
}

// HandleErrorCode writes an error envelope for a specific error code.
func HandleErrorCode(c *gin.Context, code, message string) {
	resp := NewErrorResponse(code, message).WithTraceID(telemetry.TraceID(c.Request.Context()))
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), resp)
}
