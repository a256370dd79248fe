// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/logshare/backend/internal/encoding"
	"github.com/logshare/backend/internal/logid"
	"github.com/logshare/backend/internal/service"
	"github.com/logshare/backend/internal/storage"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInvalidIDError creates a 400 error for a malformed log identifier
func NewInvalidIDError(id string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_ID",
		Message: fmt.Sprintf("invalid log id: %q", id),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// FromServiceError converts a LogService error for the log with the given id.
// Storage details are not exposed to clients.
func FromServiceError(err error, id string) *APIError {
	switch {
	case errors.Is(err, logid.ErrInvalidFormat):
		return NewInvalidIDError(id)
	case errors.Is(err, storage.ErrNotFound):
		return NewNotFoundError("log", id)
	case errors.Is(err, storage.ErrEmpty):
		return &APIError{Status: http.StatusBadRequest, Code: "EMPTY_LOG", Message: "log content is empty"}
	case errors.Is(err, storage.ErrTooLarge), errors.Is(err, encoding.ErrLimitExceeded):
		return &APIError{Status: http.StatusRequestEntityTooLarge, Code: "LOG_TOO_LARGE", Message: err.Error()}
	case errors.Is(err, storage.ErrTooManyLines):
		return &APIError{Status: http.StatusRequestEntityTooLarge, Code: "TOO_MANY_LINES", Message: err.Error()}
	case errors.Is(err, encoding.ErrUnsupported):
		return &APIError{Status: http.StatusUnsupportedMediaType, Code: "UNSUPPORTED_ENCODING", Message: err.Error()}
	}

	switch service.KindOf(err) {
	case service.KindValidation:
		return NewBadRequestError("invalid request", err)
	case service.KindUnavailable:
		return NewServiceUnavailableError("storage is temporarily unavailable")
	default:
		return NewInternalError("an unexpected error occurred", nil)
	}
}

// NewErrorHandler returns the echo error handler. Unexpected errors are
// logged; their details reach the client only when showDetails is set.
func NewErrorHandler(logger *zap.Logger, showDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
		default:
			apiErr = &APIError{
				Status:  http.StatusInternalServerError,
				Code:    "UNKNOWN_ERROR",
				Message: "An unexpected error occurred",
			}
			if showDetails {
				apiErr.Details = err.Error()
			}
		}

		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", apiErr.Status),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			c.NoContent(apiErr.Status)
			return
		}
		c.JSON(apiErr.Status, apiErr)
	}
}
