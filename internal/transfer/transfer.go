// Package transfer moves document files in and out of blob storage. Uploads
// are checked against per-call constraints and filed under a key derived
// from the document's category and code components.
package transfer

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tavtun/docsys/internal/models"
	"github.com/tavtun/docsys/pkg/formatting"
)

// DefaultMaxSizeMB is the upload limit applied by the edit workflow.
const DefaultMaxSizeMB = 10

// DefaultAllowedExtensions lists the office and PDF formats accepted for
// quality documents.
var DefaultAllowedExtensions = []string{
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
}

// File is an in-memory file selected for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Constraints govern where and whether a file may be stored.
type Constraints struct {
	DocumentType      models.DocumentCategory
	ScopeCode         string
	DepartmentCode    string
	DocumentTypeCode  string
	AllowedExtensions []string
	MaxSizeMB         int
}

func (c Constraints) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DocumentType, validation.Required, validation.By(validCategory)),
		validation.Field(&c.ScopeCode, validation.Required),
		validation.Field(&c.DepartmentCode, validation.Required),
		validation.Field(&c.DocumentTypeCode, validation.Required),
		validation.Field(&c.AllowedExtensions, validation.Required),
		validation.Field(&c.MaxSizeMB, validation.Required, validation.Min(1)),
	)
}

func validCategory(v any) error {
	if c, _ := v.(models.DocumentCategory); !c.Valid() {
		return fmt.Errorf("unknown category %q", v)
	}
	return nil
}

// MaxBytes is the upload limit in bytes.
func (c Constraints) MaxBytes() int64 {
	return int64(c.MaxSizeMB) * formatting.MB
}

// Allows reports whether name carries an allowed extension, ignoring case.
func (c Constraints) Allows(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(c.AllowedExtensions, func(allowed string) bool {
		return strings.ToLower(allowed) == ext
	})
}

// Uploaded describes a stored file.
type Uploaded struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	PageCount   *int   `json:"page_count,omitempty"`
}
