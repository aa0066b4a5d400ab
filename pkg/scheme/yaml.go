package scheme

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// catalogFile is the shape of a YAML catalog document.
type catalogFile struct {
	Schemes []Scheme `yaml:"schemes" validate:"required,min=1,dive"`
}

var validate = validator.New()

// LoadFile reads a YAML scheme catalog. The whole file is validated
// before anything is served: a catalog with one malformed scheme is
// rejected outright rather than silently serving the rest.
func LoadFile(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	if err := validate.Struct(cf); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(cf.Schemes))
	for _, s := range cf.Schemes {
		key := normalize(s.Name)
		if seen[key] {
			return nil, fmt.Errorf("invalid catalog %s: duplicate scheme %q", path, s.Name)
		}
		seen[key] = true
	}

	return NewStatic(cf.Schemes), nil
}
