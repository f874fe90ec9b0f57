package codes

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("code component not found")
	ErrDuplicate        = errors.New("code component already exists")
	ErrInvalidKind      = errors.New("invalid code component kind")
	ErrInvalidComponent = errors.New("invalid code component")
	ErrEmptyKey         = errors.New("sequence key must not be empty")
)

// MapHTTPStatus maps code configuration errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidComponent),
		errors.Is(err, ErrEmptyKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
