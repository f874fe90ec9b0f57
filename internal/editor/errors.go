package editor

import (
	"errors"
	"net/http"

	"github.com/tavtun/docsys/internal/documents"
	"github.com/tavtun/docsys/internal/transfer"
)

var (
	ErrMissingFields   = errors.New("required fields missing")
	ErrInvalidSequence = errors.New("sequence number must be a non-negative integer")
	ErrUnknownCode     = errors.New("code not in configuration")
	ErrSessionNotFound = errors.New("edit session not found")
	ErrSessionClosed   = errors.New("edit session closed")
	ErrNoDocument      = errors.New("edit session has no document")
	ErrNoPreview       = errors.New("edit session has no preview")
)

// MapHTTPStatus maps workflow errors, and the collaborator errors they
// wrap, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidSequence),
		errors.Is(err, ErrUnknownCode),
		errors.Is(err, ErrNoDocument):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrNoPreview):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, documents.ErrNotFound),
		errors.Is(err, documents.ErrUnmappedType),
		errors.Is(err, documents.ErrInvalidDocument):
		return documents.MapHTTPStatus(err)
	default:
		return transfer.MapHTTPStatus(err)
	}
}
