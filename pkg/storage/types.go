package storage

import (
	"io"
	"strconv"
	"strings"
	"time"
)

// MaxListCap is the largest page the blob service returns in one listing.
const MaxListCap int32 = 5000

// Blob describes a stored object.
type Blob struct {
	Key           string     `json:"key"`
	ContentType   string     `json:"content_type"`
	ContentLength int64      `json:"content_length"`
	LastModified  *time.Time `json:"last_modified,omitempty"`
}

// BlobList is one page of a prefix listing. NextMarker is empty on the
// last page.
type BlobList struct {
	Blobs      []Blob `json:"blobs"`
	NextMarker string `json:"next_marker,omitempty"`
}

// Stream is an open download. The caller must close Body.
type Stream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// ParseMaxResults parses a listing page size from a query parameter,
// returning fallback when s is empty and clamping to MaxListCap.
func ParseMaxResults(s string, fallback int32) (int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ErrInvalidMaxResults
	}
	if n > int(MaxListCap) {
		return MaxListCap, nil
	}
	return int32(n), nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
