// Package documents implements the quality document store: persisted
// document metadata, code and sequence allocation on creation, versioned
// updates with an audit history, QR rendering of document codes, and the
// mapping from document type codes to storage categories.
package documents

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/tavtun/docsys/internal/models"
)

// Document is a persisted quality document.
type Document struct {
	ID                uuid.UUID               `json:"id"`
	Title             string                  `json:"title"`
	Content           string                  `json:"content"`
	Airport           *string                 `json:"airport,omitempty"`
	CompanyCode       *string                 `json:"company_code,omitempty"`
	ScopeCode         *string                 `json:"scope_code,omitempty"`
	DepartmentCode    *string                 `json:"department_code,omitempty"`
	SubDepartmentCode *string                 `json:"sub_department_code,omitempty"`
	DocumentTypeCode  *string                 `json:"document_type_code,omitempty"`
	LanguageCode      *string                 `json:"language_code,omitempty"`
	SequenceNumber    *int                    `json:"sequence_number,omitempty"`
	Version           int                     `json:"version"`
	Tags              []string                `json:"tags"`
	FilePath          *string                 `json:"file_path,omitempty"`
	FileType          *string                 `json:"file_type,omitempty"`
	QRCode            string                  `json:"qr_code"`
	Type              models.DocumentCategory `json:"type"`
	Status            models.DocumentStatus   `json:"status"`
	AuthorID          *uuid.UUID              `json:"author_id,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// CreateCommand registers a new document. The sequence number and code are
// allocated by the store.
type CreateCommand struct {
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Airport           *string    `json:"airport,omitempty"`
	CompanyCode       *string    `json:"company_code,omitempty"`
	ScopeCode         string     `json:"scope_code"`
	DepartmentCode    string     `json:"department_code"`
	SubDepartmentCode *string    `json:"sub_department_code,omitempty"`
	DocumentTypeCode  string     `json:"document_type_code"`
	LanguageCode      string     `json:"language_code"`
	Tags              []string   `json:"tags,omitempty"`
	AuthorID          *uuid.UUID `json:"author_id,omitempty"`
}

func (c CreateCommand) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.ScopeCode, validation.Required),
		validation.Field(&c.DepartmentCode, validation.Required),
		validation.Field(&c.DocumentTypeCode, validation.Required),
		validation.Field(&c.LanguageCode, validation.Required),
	)
}

// UpdateCommand carries every editable field of a document. All fields are
// written; a nil optional clears the column.
type UpdateCommand struct {
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Airport           *string    `json:"airport"`
	CompanyCode       *string    `json:"company_code"`
	ScopeCode         *string    `json:"scope_code"`
	DepartmentCode    *string    `json:"department_code"`
	SubDepartmentCode *string    `json:"sub_department_code"`
	DocumentTypeCode  *string    `json:"document_type_code"`
	LanguageCode      *string    `json:"language_code"`
	SequenceNumber    int        `json:"sequence_number"`
	Version           int        `json:"version"`
	Tags              []string   `json:"tags"`
	FilePath          *string    `json:"file_path"`
	FileType          *string    `json:"file_type"`
	UserID            *uuid.UUID `json:"user_id,omitempty"`
}

func (c UpdateCommand) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.SequenceNumber, validation.Min(0)),
		validation.Field(&c.Version, validation.Min(0)),
	)
}
