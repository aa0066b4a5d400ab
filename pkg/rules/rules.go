// Package rules evaluates a scheme's mandatory rule set against a flat
// applicant profile. Evaluation is deterministic and pure: the same profile
// and rule set always yield the same verdict, trace, and score.
package rules

import "fmt"

// Supported operator names. Symbolic aliases ("==", "<=", ...) from older
// rule files normalize onto these at evaluation time.
const (
	OpEquals    = "equals"
	OpNotEquals = "not_equals"
	OpLT        = "lt"
	OpLTE       = "lte"
	OpGT        = "gt"
	OpGTE       = "gte"
	OpIn        = "in"
	OpContains  = "contains"
)

// Rule is one mandatory condition of a scheme.
type Rule struct {
	Field    string `json:"field" yaml:"field" mapstructure:"field" validate:"required"`
	Operator string `json:"operator" yaml:"operator" mapstructure:"operator" validate:"required"`
	Value    any    `json:"value" yaml:"value" mapstructure:"value"`
	Label    string `json:"label" yaml:"label" mapstructure:"label"`
	Citation string `json:"citation,omitempty" yaml:"citation,omitempty" mapstructure:"citation"`
}

// Expression renders the rule in "field operator value" form for traces.
func (r Rule) Expression() string {
	return fmt.Sprintf("%s %s %v", r.Field, r.Operator, r.Value)
}

// RuleSet groups a scheme's rules. Only mandatory rules exist today;
// eligibility is the AND of all of them.
type RuleSet struct {
	Mandatory []Rule `json:"mandatory" yaml:"mandatory" mapstructure:"mandatory" validate:"dive"`
}
