package errors

import "github.com/pkg/errors"

var (
	// common errors
	ErrInvalidInput = errors.New("invalid input parameters")
	ErrNoContent    = errors.New("no content")

	// mail provider errors
	ErrReauthorizationRequired = errors.New("interactive authorization required")
	ErrTokenNotFound           = errors.New("token not found")

	// persistence errors
	ErrEmailNotFound        = errors.New("email not found")
	ErrAttachmentNotFound   = errors.New("attachment not found")
	ErrStorageNotConfigured = errors.New("object storage not configured")
)
