package errors

import (
	"net/http"

	"github.com/pkg/errors"

	mailsift_errors "github.com/customeros/mailsift/internal/errors"
)

type ErrorResponse struct {
	Error                   string `json:"error"`
	ReauthorizationRequired bool   `json:"reauthorizationRequired,omitempty"`
}

// StatusFor maps service errors to HTTP status codes. Unknown errors are 500.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, mailsift_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, mailsift_errors.ErrEmailNotFound), errors.Is(err, mailsift_errors.ErrAttachmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, mailsift_errors.ErrReauthorizationRequired), errors.Is(err, mailsift_errors.ErrTokenNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, mailsift_errors.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Error:                   err.Error(),
		ReauthorizationRequired: errors.Is(err, mailsift_errors.ErrReauthorizationRequired),
	}
}
