// Package codes owns the document code configuration: the sets of
// document types, departments, sub-departments, languages and scopes a
// document code is assembled from, and the sequence counters that number
// documents within each combination.
package codes

import (
	"regexp"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind names one component set.
type Kind string

const (
	KindDocumentType  Kind = "document_type"
	KindDepartment    Kind = "department"
	KindSubDepartment Kind = "sub_department"
	KindLanguage      Kind = "language"
	KindScope         Kind = "scope"
)

var kinds = []Kind{
	KindDocumentType,
	KindDepartment,
	KindSubDepartment,
	KindLanguage,
	KindScope,
}

func (k Kind) Valid() bool { return slices.Contains(kinds, k) }

// ParseKind validates s as a component kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

var codePattern = regexp.MustCompile(`^[A-Z0-9_]{1,16}$`)

// Component is one selectable code within a set.
type Component struct {
	Code        string  `json:"code"`
	Label       string  `json:"label"`
	Description *string `json:"description,omitempty"`
}

func (c Component) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Code, validation.Required, validation.Match(codePattern)),
		validation.Field(&c.Label, validation.Required, validation.Length(1, 128)),
	)
}

// Config is a read-only snapshot of every component set and counter.
type Config struct {
	DocumentTypes    []Component    `json:"document_types"`
	Departments      []Component    `json:"departments"`
	SubDepartments   []Component    `json:"sub_departments"`
	Languages        []Component    `json:"languages"`
	Scopes           []Component    `json:"scopes"`
	SequenceCounters map[string]int `json:"sequence_counters"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Set returns the component list for kind.
func (c *Config) Set(kind Kind) []Component {
	switch kind {
	case KindDocumentType:
		return c.DocumentTypes
	case KindDepartment:
		return c.Departments
	case KindSubDepartment:
		return c.SubDepartments
	case KindLanguage:
		return c.Languages
	case KindScope:
		return c.Scopes
	}
	return nil
}

func (c *Config) add(kind Kind, comp Component) {
	switch kind {
	case KindDocumentType:
		c.DocumentTypes = append(c.DocumentTypes, comp)
	case KindDepartment:
		c.Departments = append(c.Departments, comp)
	case KindSubDepartment:
		c.SubDepartments = append(c.SubDepartments, comp)
	case KindLanguage:
		c.Languages = append(c.Languages, comp)
	case KindScope:
		c.Scopes = append(c.Scopes, comp)
	}
}

// Find looks up code within kind.
func (c *Config) Find(kind Kind, code string) (Component, bool) {
	i := slices.IndexFunc(c.Set(kind), func(comp Component) bool {
		return comp.Code == code
	})
	if i < 0 {
		return Component{}, false
	}
	return c.Set(kind)[i], true
}

func (c *Config) Has(kind Kind, code string) bool {
	_, ok := c.Find(kind, code)
	return ok
}

// Scope looks up a scope by code.
func (c *Config) Scope(code string) (Component, bool) {
	return c.Find(KindScope, code)
}

// DepartmentByLabel finds a department by its display label.
func (c *Config) DepartmentByLabel(label string) (Component, bool) {
	i := slices.IndexFunc(c.Departments, func(comp Component) bool {
		return comp.Label == label
	})
	if i < 0 {
		return Component{}, false
	}
	return c.Departments[i], true
}

// Counter returns the last issued sequence number for key, 0 if none.
func (c *Config) Counter(key string) int {
	return c.SequenceCounters[key]
}
