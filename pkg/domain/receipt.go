package domain

import (
	"encoding/json"
	"fmt"
)

// RuleTraceEntry records the outcome of one mandatory rule. Entries are
// produced fresh on every evaluation, in rule declaration order, and never
// mutated afterwards; receipts display them in this order.
type RuleTraceEntry struct {
	Label         string `json:"label"`
	Rule          string `json:"rule"`
	Pass          bool   `json:"pass"`
	Citation      string `json:"citation,omitempty"`
	UserValue     any    `json:"user_value,omitempty"`
	RequiredValue any    `json:"required_value,omitempty"`
}

// EligibilityVerdict is the rules engine's output. Score is the ratio of
// matched mandatory rules to total mandatory rules (1.0 when no rules are
// defined); Eligible requires every mandatory rule to pass.
type EligibilityVerdict struct {
	Eligible bool             `json:"eligible"`
	Trace    []RuleTraceEntry `json:"trace"`
	Score    float64          `json:"score"`
}

// BenefitReceipt is the stored snapshot of a verdict for a scheme and
// session. It is written into session data once and never mutated.
type BenefitReceipt struct {
	Eligible   bool             `json:"eligible"`
	Scheme     string           `json:"scheme"`
	Trace      []RuleTraceEntry `json:"trace"`
	Sources    []string         `json:"sources,omitempty"`
	Confidence float64          `json:"confidence"`
}

// ReceiptFromSession rehydrates the stored receipt, if any. In-process
// the value is still a *BenefitReceipt; after a store round trip it is a
// generic JSON map, so decoding goes through JSON either way.
func ReceiptFromSession(s *Session) (*BenefitReceipt, error) {
	return decodeReceipt(s.Data[KeyReceipt])
}

// ReceiptFromResult rehydrates the receipt attached to a turn result, if any.
func ReceiptFromResult(r *TurnResult) (*BenefitReceipt, error) {
	if r == nil || r.Extra == nil {
		return nil, nil
	}
	return decodeReceipt(r.Extra[ExtraReceipt])
}

func decodeReceipt(raw any) (*BenefitReceipt, error) {
	if raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case *BenefitReceipt:
		return v, nil
	case BenefitReceipt:
		return &v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode stored receipt: %w", err)
		}
		var rec BenefitReceipt
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode stored receipt: %w", err)
		}
		return &rec, nil
	}
}
