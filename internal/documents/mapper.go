package documents

import (
	"fmt"
	"maps"
	"strings"

	"github.com/tavtun/docsys/internal/models"
)

// DefaultTypeCategories maps the stock document type codes to their storage
// category.
var DefaultTypeCategories = map[string]models.DocumentCategory{
	"FO":   models.CategoryFormulaire,
	"FORM": models.CategoryFormulaire,
	"PR":   models.CategoryQualite,
	"PS":   models.CategoryQualite,
	"MQ":   models.CategoryQualite,
	"IT":   models.CategoryQualite,
	"NV":   models.CategoryNouveau,
	"GEN":  models.CategoryGeneral,
}

// Mapper resolves document type codes to storage categories.
type Mapper struct {
	table map[string]models.DocumentCategory
}

// NewMapper layers overrides (type code to category name) over
// DefaultTypeCategories.
func NewMapper(overrides map[string]string) (*Mapper, error) {
	table := maps.Clone(DefaultTypeCategories)
	for code, name := range overrides {
		category, err := models.ParseDocumentCategory(name)
		if err != nil {
			return nil, fmt.Errorf("type %s: category %q: %w", code, name, err)
		}
		table[strings.ToUpper(code)] = category
	}
	return &Mapper{table: table}, nil
}

// Map returns ErrUnmappedType for codes without a category.
func (m *Mapper) Map(code string) (models.DocumentCategory, error) {
	category, ok := m.table[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnmappedType, code)
	}
	return category, nil
}
