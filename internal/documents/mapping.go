package documents

import (
	"encoding/json"
	"net/url"

	"github.com/tavtun/docsys/pkg/query"
	"github.com/tavtun/docsys/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("title", "Title").
	Project("content", "Content").
	Project("airport", "Airport").
	Project("company_code", "CompanyCode").
	Project("scope_code", "ScopeCode").
	Project("department_code", "DepartmentCode").
	Project("sub_department_code", "SubDepartmentCode").
	Project("document_type_code", "DocumentTypeCode").
	Project("language_code", "LanguageCode").
	Project("sequence_number", "SequenceNumber").
	Project("version", "Version").
	Project("tags", "Tags").
	Project("file_path", "FilePath").
	Project("file_type", "FileType").
	Project("qr_code", "QRCode").
	Project("type", "Type").
	Project("status", "Status").
	Project("author_id", "AuthorID").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// returning lists the projected columns unqualified, for INSERT and UPDATE.
const returning = `id, title, content, airport, company_code, scope_code,
	department_code, sub_department_code, document_type_code, language_code,
	sequence_number, version, tags, file_path, file_type, qr_code, type,
	status, author_id, created_at, updated_at`

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters narrows document listings. Nil fields are ignored. Title uses
// case-insensitive contains matching; Tags matches documents carrying every
// listed tag; the rest match exactly.
type Filters struct {
	Title            *string  `json:"title,omitempty"`
	Airport          *string  `json:"airport,omitempty"`
	DepartmentCode   *string  `json:"department_code,omitempty"`
	DocumentTypeCode *string  `json:"document_type_code,omitempty"`
	LanguageCode     *string  `json:"language_code,omitempty"`
	Type             *string  `json:"type,omitempty"`
	Status           *string  `json:"status,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Title", f.Title).
		WhereEquals("Airport", f.Airport).
		WhereEquals("DepartmentCode", f.DepartmentCode).
		WhereEquals("DocumentTypeCode", f.DocumentTypeCode).
		WhereEquals("LanguageCode", f.LanguageCode).
		WhereEquals("Type", f.Type).
		WhereEquals("Status", f.Status).
		WhereJSONContains("Tags", f.Tags)
}

// FiltersFromQuery reads filters from URL query parameters. Tags are given
// as repeated tag parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	for param, dst := range map[string]**string{
		"title":              &f.Title,
		"airport":            &f.Airport,
		"department_code":    &f.DepartmentCode,
		"document_type_code": &f.DocumentTypeCode,
		"language_code":      &f.LanguageCode,
		"type":               &f.Type,
		"status":             &f.Status,
	} {
		if v := values.Get(param); v != "" {
			*dst = &v
		}
	}

	if tags := values["tag"]; len(tags) > 0 {
		f.Tags = tags
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		d    Document
		tags []byte
	)
	err := s.Scan(
		&d.ID,
		&d.Title,
		&d.Content,
		&d.Airport,
		&d.CompanyCode,
		&d.ScopeCode,
		&d.DepartmentCode,
		&d.SubDepartmentCode,
		&d.DocumentTypeCode,
		&d.LanguageCode,
		&d.SequenceNumber,
		&d.Version,
		&tags,
		&d.FilePath,
		&d.FileType,
		&d.QRCode,
		&d.Type,
		&d.Status,
		&d.AuthorID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	d.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return d, err
		}
	}
	return d, nil
}

// encodeTags renders tags as a jsonb array literal, never null.
func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	data, _ := json.Marshal(tags)
	return string(data)
}
