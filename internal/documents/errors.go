package documents

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("document already exists")
	ErrInvalidDocument = errors.New("invalid document")
	ErrInvalidID       = errors.New("invalid document id")
	ErrUnmappedType    = errors.New("document type code has no category")
)

// MapHTTPStatus maps document domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidDocument) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrUnmappedType) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
