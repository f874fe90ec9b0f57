package transfer

import (
	"errors"
	"net/http"

	"github.com/tavtun/docsys/pkg/storage"
)

var (
	ErrInvalidConstraints  = errors.New("invalid upload constraints")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrFileTooLarge        = errors.New("file exceeds maximum size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrMalformedForm       = errors.New("malformed multipart form")
)

// MapHTTPStatus maps transfer and storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrExtensionNotAllowed):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrMalformedForm),
		errors.Is(err, ErrInvalidConstraints):
		return http.StatusBadRequest
	default:
		return storage.MapHTTPStatus(err)
	}
}
