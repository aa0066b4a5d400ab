package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/opencivic/sahayak/pkg/domain"
)

// Evaluate checks every mandatory rule against the profile.
//
// Semantics:
//   - no mandatory rules: eligible, score 1.0, one informational trace entry;
//   - score = matched / total;
//   - eligible requires every rule to pass (AND, not a threshold);
//   - an unknown operator records a failing trace entry and counts in the
//     denominator, but evaluation of the remaining rules continues;
//   - the trace preserves rule declaration order.
func Evaluate(profile map[string]any, rs RuleSet) domain.EligibilityVerdict {
	if len(rs.Mandatory) == 0 {
		return domain.EligibilityVerdict{
			Eligible: true,
			Score:    1.0,
			Trace: []domain.RuleTraceEntry{{
				Label: "no mandatory rules defined",
				Rule:  "none",
				Pass:  true,
			}},
		}
	}

	trace := make([]domain.RuleTraceEntry, 0, len(rs.Mandatory))
	matched := 0
	unknownOp := false

	for _, rule := range rs.Mandatory {
		userValue := profile[rule.Field]

		pass, known := apply(normalizeOperator(rule.Operator), userValue, rule.Value)
		if !known {
			unknownOp = true
			pass = false
		}

		entry := domain.RuleTraceEntry{
			Label:         rule.Label,
			Rule:          rule.Expression(),
			Pass:          pass,
			Citation:      rule.Citation,
			UserValue:     userValue,
			RequiredValue: rule.Value,
		}
		if !known {
			entry.Rule = fmt.Sprintf("%s <unknown operator %q> %v", rule.Field, rule.Operator, rule.Value)
		}
		trace = append(trace, entry)

		if pass {
			matched++
		}
	}

	score := float64(matched) / float64(len(rs.Mandatory))
	return domain.EligibilityVerdict{
		Eligible: matched == len(rs.Mandatory) && !unknownOp,
		Trace:    trace,
		Score:    score,
	}
}

func normalizeOperator(op string) string {
	switch strings.ToLower(strings.TrimSpace(op)) {
	case "==", "eq", OpEquals:
		return OpEquals
	case "!=", "ne", OpNotEquals:
		return OpNotEquals
	case "<", OpLT:
		return OpLT
	case "<=", OpLTE:
		return OpLTE
	case ">", OpGT:
		return OpGT
	case ">=", OpGTE:
		return OpGTE
	case OpIn:
		return OpIn
	case OpContains:
		return OpContains
	default:
		return strings.ToLower(strings.TrimSpace(op))
	}
}

// apply evaluates one comparison. The second return is false when the
// operator is not recognized.
func apply(op string, user, target any) (bool, bool) {
	switch op {
	case OpEquals:
		return looseEqual(user, target), true
	case OpNotEquals:
		return !looseEqual(user, target), true
	case OpLT, OpLTE, OpGT, OpGTE:
		return compareOrdered(op, user, target), true
	case OpIn:
		return membership(user, target), true
	case OpContains:
		return strings.Contains(
			strings.ToLower(asString(user)),
			strings.ToLower(asString(target)),
		), true
	default:
		return false, false
	}
}

// looseEqual compares numerically when both sides have a numeric reading,
// falling back to case-insensitive string equality.
func looseEqual(user, target any) bool {
	if tn, ok := asNumber(target); ok {
		if un, ok := asNumber(user); ok {
			return un == tn
		}
	}
	return strings.EqualFold(asString(user), asString(target))
}

// compareOrdered compares numerically where possible. A parse failure never
// aborts the evaluation: it degrades to lexicographic comparison of the raw
// string forms.
func compareOrdered(op string, user, target any) bool {
	un, uok := asNumber(user)
	tn, tok := asNumber(target)
	if uok && tok {
		switch op {
		case OpLT:
			return un < tn
		case OpLTE:
			return un <= tn
		case OpGT:
			return un > tn
		case OpGTE:
			return un >= tn
		}
	}

	us, ts := asString(user), asString(target)
	switch op {
	case OpLT:
		return us < ts
	case OpLTE:
		return us <= ts
	case OpGT:
		return us > ts
	case OpGTE:
		return us >= ts
	}
	return false
}

// membership treats a non-list target as plain equality.
func membership(user, target any) bool {
	switch list := target.(type) {
	case []any:
		for _, item := range list {
			if looseEqual(user, item) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range list {
			if looseEqual(user, item) {
				return true
			}
		}
		return false
	default:
		return looseEqual(user, target)
	}
}

// asNumber extracts a float64 reading from the common scalar shapes a
// profile or rule file can carry, including strings with thousands
// separators and strings whose leading token is numeric ("1.5 acres").
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		return 0, false
	case string:
		return parseLeadingNumber(n)
	default:
		return 0, false
	}
}

func parseLeadingNumber(s string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return f, true
	}
	// Leading numeric token: "1.5 acres" -> 1.5.
	if fields := strings.Fields(cleaned); len(fields) > 0 {
		if f, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
