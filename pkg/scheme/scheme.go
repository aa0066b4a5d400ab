// Package scheme defines benefit scheme descriptors and the catalogs
// that serve them. A scheme bundles the slots a caller must answer and
// the mandatory rules that decide eligibility.
package scheme

import (
	"sort"
	"strings"

	"github.com/opencivic/sahayak/pkg/rules"
)

// Slot is one question a scheme asks the caller.
type Slot struct {
	Key    string `json:"key" yaml:"key" mapstructure:"key" validate:"required"`
	Type   string `json:"type" yaml:"type" mapstructure:"type" validate:"required,oneof=string float int boolean"`
	Prompt string `json:"prompt" yaml:"prompt" mapstructure:"prompt" validate:"required"`

	// CodeMap translates keypad digits to values for IVR callers,
	// e.g. {"1": "Farmer", "2": "Laborer"}.
	CodeMap map[string]string `json:"code_map,omitempty" yaml:"code_map,omitempty" mapstructure:"code_map"`
}

// Scheme describes one benefit program.
type Scheme struct {
	Name        string        `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	DisplayName string        `json:"display_name,omitempty" yaml:"display_name,omitempty" mapstructure:"display_name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Slots       []Slot        `json:"slots" yaml:"slots" mapstructure:"slots" validate:"required,min=1,dive"`
	Rules       rules.RuleSet `json:"rules" yaml:"rules" mapstructure:"rules"`

	// Sources cite the government orders or scheme documents the rules
	// were transcribed from. They surface on every receipt.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty" mapstructure:"sources"`
}

// Title returns the name to show callers.
func (s *Scheme) Title() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

// Catalog serves scheme definitions to the dialogue engine.
type Catalog interface {
	// GetScheme resolves a scheme by its canonical name.
	GetScheme(name string) (*Scheme, bool)

	// Names returns all scheme names in sorted order.
	Names() []string
}

// StaticCatalog is an immutable in-memory Catalog.
type StaticCatalog struct {
	schemes map[string]*Scheme
}

// NewStatic builds a catalog from a fixed scheme list.
func NewStatic(schemes []Scheme) *StaticCatalog {
	c := &StaticCatalog{schemes: make(map[string]*Scheme, len(schemes))}
	for i := range schemes {
		s := schemes[i]
		c.schemes[normalize(s.Name)] = &s
	}
	return c
}

// GetScheme resolves a scheme by name, case-insensitively.
func (c *StaticCatalog) GetScheme(name string) (*Scheme, bool) {
	s, ok := c.schemes[normalize(name)]
	return s, ok
}

// Names returns all scheme names, sorted.
func (c *StaticCatalog) Names() []string {
	names := make([]string, 0, len(c.schemes))
	for _, s := range c.schemes {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
