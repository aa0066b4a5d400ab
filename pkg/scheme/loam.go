package scheme

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/opencivic/sahayak/pkg/rules"
)

// Metadata is the frontmatter of a scheme document in a Loam
// repository. The markdown body becomes the scheme description.
type Metadata struct {
	Name        string        `json:"name" mapstructure:"name"`
	DisplayName string        `json:"display_name" mapstructure:"display_name"`
	Slots       []Slot        `json:"slots" mapstructure:"slots"`
	Rules       rules.RuleSet `json:"rules" mapstructure:"rules"`
	Sources     []string      `json:"sources" mapstructure:"sources"`
}

// LoadLoam builds a catalog from a Loam repository of scheme
// documents, one document per scheme. Strict mode keeps numeric rule
// values as json.Number so large income ceilings survive intact.
func LoadLoam(ctx context.Context, path string) (*StaticCatalog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam catalog: %w", err)
	}

	typed := loam.NewTypedRepository[Metadata](repo)

	docs, err := typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheme documents: %w", err)
	}

	schemes := make([]Scheme, 0, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			// Fall back to the filename, minus extension.
			name = strings.TrimSuffix(doc.ID, filepath.Ext(doc.ID))
		}

		s := Scheme{
			Name:        name,
			DisplayName: doc.Data.DisplayName,
			Description: strings.TrimSpace(doc.Content),
			Slots:       doc.Data.Slots,
			Rules:       doc.Data.Rules,
			Sources:     doc.Data.Sources,
		}

		if err := validate.Struct(s); err != nil {
			return nil, fmt.Errorf("invalid scheme document %s: %w", doc.ID, err)
		}
		schemes = append(schemes, s)
	}

	if len(schemes) == 0 {
		return nil, fmt.Errorf("catalog %s contains no scheme documents", path)
	}

	return NewStatic(schemes), nil
}
