package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tavtun/docsys/internal/codes"
	"github.com/tavtun/docsys/internal/documents"
	"github.com/tavtun/docsys/pkg/doccode"
)

// VersionLabel prefixes the rendered document version.
const VersionLabel = "REV:"

var sequencePattern = regexp.MustCompile(`^[0-9]+$`)

// FormState is the editable view of one document. Nil optional fields are
// unset, which is distinct from an empty string.
type FormState struct {
	Title             string   `json:"title"`
	CompanyCode       string   `json:"company_code"`
	Airport           *string  `json:"airport"`
	DepartmentCode    *string  `json:"department_code"`
	SubDepartmentCode *string  `json:"sub_department_code"`
	DocumentTypeCode  *string  `json:"document_type_code"`
	LanguageCode      *string  `json:"language_code"`
	SequenceNumber    string   `json:"sequence_number"`
	Version           string   `json:"version"`
	Description       string   `json:"description"`
	Content           string   `json:"content"`
	Tags              []string `json:"tags"`
}

func formFromDocument(doc *documents.Document, company string) FormState {
	f := FormState{
		Title:             doc.Title,
		CompanyCode:       company,
		Airport:           nonEmpty(doc.Airport),
		DepartmentCode:    nonEmpty(doc.DepartmentCode),
		SubDepartmentCode: nonEmpty(doc.SubDepartmentCode),
		DocumentTypeCode:  nonEmpty(doc.DocumentTypeCode),
		LanguageCode:      nonEmpty(doc.LanguageCode),
		Version:           VersionLabel + strconv.Itoa(doc.Version),
		Description:       doc.Content,
		Content:           doc.Content,
		Tags:              append([]string{}, doc.Tags...),
	}
	if doc.CompanyCode != nil && *doc.CompanyCode != "" {
		f.CompanyCode = *doc.CompanyCode
	}
	if doc.SequenceNumber != nil {
		f.SequenceNumber = strconv.Itoa(*doc.SequenceNumber)
	}
	return f
}

// Validate reports every required field left empty or unset.
func (f FormState) Validate() error {
	return validation.Errors{
		"title":              validation.Validate(strings.TrimSpace(f.Title), validation.Required),
		"airport":            validation.Validate(f.Airport, validation.Required),
		"document_type_code": validation.Validate(f.DocumentTypeCode, validation.Required),
		"department_code":    validation.Validate(f.DepartmentCode, validation.Required),
		"language_code":      validation.Validate(f.LanguageCode, validation.Required),
		"sequence_number":    validation.Validate(strings.TrimSpace(f.SequenceNumber), validation.Required),
	}.Filter()
}

// CheckCodes reports every set code missing from its component set in cfg.
// The airport is not checked: an unknown airport is stored as its own scope.
func (f FormState) CheckCodes(cfg *codes.Config) error {
	if cfg == nil {
		return nil
	}

	errs := validation.Errors{}
	check := func(field string, kind codes.Kind, code *string) {
		if code != nil && *code != "" && !cfg.Has(kind, *code) {
			errs[field] = fmt.Errorf("unknown %s %q", kind, *code)
		}
	}
	check("department_code", codes.KindDepartment, f.DepartmentCode)
	check("sub_department_code", codes.KindSubDepartment, f.SubDepartmentCode)
	check("document_type_code", codes.KindDocumentType, f.DocumentTypeCode)
	check("language_code", codes.KindLanguage, f.LanguageCode)
	return errs.Filter()
}

// Sequence parses the sequence number as a non-negative integer.
func (f FormState) Sequence() (int, error) {
	s := strings.TrimSpace(f.SequenceNumber)
	if err := validation.Validate(s, validation.Required, validation.Match(sequencePattern)); err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

// Parts returns the document code inputs. The airport doubles as the scope.
func (f FormState) Parts() doccode.Parts {
	return doccode.Parts{
		Company:       f.CompanyCode,
		Scope:         deref(f.Airport),
		Department:    deref(f.DepartmentCode),
		SubDepartment: deref(f.SubDepartmentCode),
		DocumentType:  deref(f.DocumentTypeCode),
		Language:      deref(f.LanguageCode),
		Sequence:      f.SequenceNumber,
	}
}

// Optional is a patch value for a nullable field. An absent key leaves the
// field alone; null unsets it; a string sets it.
type Optional struct {
	Set   bool
	Value *string
}

func (o *Optional) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Value returns an Optional that sets s.
func Value(s string) Optional { return Optional{Set: true, Value: &s} }

// Unset returns an Optional that clears the field.
func Unset() Optional { return Optional{Set: true} }

// Patch is a set of field edits. Nil and absent fields are left unchanged.
type Patch struct {
	Title             *string   `json:"title,omitempty"`
	CompanyCode       *string   `json:"company_code,omitempty"`
	Airport           Optional  `json:"airport"`
	DepartmentCode    Optional  `json:"department_code"`
	SubDepartmentCode Optional  `json:"sub_department_code"`
	DocumentTypeCode  Optional  `json:"document_type_code"`
	LanguageCode      Optional  `json:"language_code"`
	SequenceNumber    *string   `json:"sequence_number,omitempty"`
	Description       *string   `json:"description,omitempty"`
	Content           *string   `json:"content,omitempty"`
	Tags              *[]string `json:"tags,omitempty"`
}

func (f *FormState) apply(p Patch) {
	setString(&f.Title, p.Title)
	setString(&f.CompanyCode, p.CompanyCode)
	setString(&f.SequenceNumber, p.SequenceNumber)
	setString(&f.Description, p.Description)
	setString(&f.Content, p.Content)

	setOptional(&f.Airport, p.Airport)
	setOptional(&f.DepartmentCode, p.DepartmentCode)
	setOptional(&f.SubDepartmentCode, p.SubDepartmentCode)
	setOptional(&f.DocumentTypeCode, p.DocumentTypeCode)
	setOptional(&f.LanguageCode, p.LanguageCode)

	if p.Tags != nil {
		f.Tags = normalizeTags(*p.Tags)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setOptional(dst **string, o Optional) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}

// normalizeTags trims tags and drops empty and repeated entries.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
