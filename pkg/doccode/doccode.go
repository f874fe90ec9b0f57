// Package doccode derives human-readable document codes from their
// categorical components.
//
// A code has the shape COMPANY-SCOPE-DEPT[-SUBDEPT]-DOCTYPE-SEQ-LANG.
// Missing components are replaced by slot placeholders so a partially
// filled form still produces a readable preview.
package doccode

import "strings"

// Slot placeholders rendered when a component is absent.
const (
	PlaceholderCompany      = "COMP"
	PlaceholderScope        = "SCOPE"
	PlaceholderDepartment   = "DEPT"
	PlaceholderDocumentType = "TYPE"
	PlaceholderLanguage     = "LANG"
)

// DefaultCompany is the company segment for documents that name none.
const DefaultCompany = "TAVTUN"

// SequenceWidth is the minimum rendered width of the sequence segment.
const SequenceWidth = 3

const separator = "-"

// Parts holds the inputs of a document code. An empty string marks a
// component as absent.
type Parts struct {
	Company       string
	Scope         string
	Department    string
	SubDepartment string
	DocumentType  string
	Language      string
	Sequence      string
}

// Format renders the document code for p.
func Format(p Parts) string {
	dept := orDefault(p.Department, PlaceholderDepartment)
	if p.SubDepartment != "" {
		dept += separator + p.SubDepartment
	}

	return strings.Join([]string{
		orDefault(p.Company, PlaceholderCompany),
		orDefault(p.Scope, PlaceholderScope),
		dept,
		orDefault(p.DocumentType, PlaceholderDocumentType),
		PadSequence(p.Sequence),
		orDefault(p.Language, PlaceholderLanguage),
	}, separator)
}

// PadSequence left-pads s with zeros to SequenceWidth.
// Values already at or beyond the width are returned unchanged.
func PadSequence(s string) string {
	if len(s) >= SequenceWidth {
		return s
	}
	return strings.Repeat("0", SequenceWidth-len(s)) + s
}

// SequenceKey builds the composite key under which the sequence counter for
// a component combination is stored. An absent sub-department keeps its
// position as an empty segment.
func SequenceKey(scope, department, subDepartment, documentType, language string) string {
	return strings.Join([]string{
		scope,
		department,
		subDepartment,
		documentType,
		language,
	}, separator)
}

func orDefault(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
