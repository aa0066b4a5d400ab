// Package verifier blends the deterministic rules score with auxiliary
// confidence signals into a single risk score and a ternary routing
// decision. It is pure arithmetic; the workflow engine owns when to call it.
package verifier

import "fmt"

// Decision is the routing outcome for a completed application.
type Decision string

const (
	DecisionAutoSubmit  Decision = "AutoSubmit"
	DecisionHitlQueue   Decision = "HitlQueue"
	DecisionNotEligible Decision = "NotEligible"
)

// Signal weights. Rules dominate: deterministic policy outweighs channel
// confidence.
const (
	WeightASR     = 0.20
	WeightRules   = 0.50
	WeightIntent  = 0.20
	WeightHistory = 0.10
)

// Composite-score decision thresholds.
const (
	ThresholdAutoSubmit = 0.85
	ThresholdHitl       = 0.60
)

// Per-signal advisory thresholds; falling below one adds a reason but does
// not by itself change the decision.
const (
	minASR    = 0.60
	minRules  = 0.80
	minIntent = 0.70
)

// flaggedHistoryValue stands in for a caller with prior flagged activity.
const flaggedHistoryValue = 0.1

// Signals are the auxiliary per-turn confidence inputs.
type Signals struct {
	ASR                float64 `json:"asr"`
	Intent             float64 `json:"intent"`
	CallerHistoryClean bool    `json:"caller_history_clean"`
}

// Result is the verifier's output. Reasons are advisory explanations of
// which signals fell below their thresholds; they are not decision inputs.
type Result struct {
	SessionID string   `json:"session_id,omitempty"`
	RiskScore float64  `json:"risk_score"`
	Decision  Decision `json:"decision"`
	Reasons   []string `json:"reasons"`
	Inputs    struct {
		ASR           float64 `json:"asr"`
		Rules         float64 `json:"rules"`
		Intent        float64 `json:"intent"`
		CallerHistory float64 `json:"caller_history"`
	} `json:"signals"`
}

// Assess combines the rules score and eligibility with the channel signals.
//
// Hard override: a failed deterministic evaluation (!eligible or a zero
// rules score) short-circuits to NotEligible with riskScore 0. No weighting
// is applied, and no other signal can rescue the case.
func Assess(sessionID string, rulesScore float64, eligible bool, sig Signals) Result {
	res := Result{SessionID: sessionID}

	if !eligible || rulesScore == 0.0 {
		res.RiskScore = 0.0
		res.Decision = DecisionNotEligible
		res.Reasons = []string{"deterministic rule failure overrides all other signals"}
		return res
	}

	asr := clamp01(sig.ASR)
	rulesVal := clamp01(rulesScore)
	intent := clamp01(sig.Intent)
	history := flaggedHistoryValue
	if sig.CallerHistoryClean {
		history = 1.0
	}

	res.Inputs.ASR = asr
	res.Inputs.Rules = rulesVal
	res.Inputs.Intent = intent
	res.Inputs.CallerHistory = history

	composite := WeightASR*asr + WeightRules*rulesVal + WeightIntent*intent + WeightHistory*history
	res.RiskScore = composite

	switch {
	case composite >= ThresholdAutoSubmit:
		res.Decision = DecisionAutoSubmit
	case composite >= ThresholdHitl:
		res.Decision = DecisionHitlQueue
	default:
		res.Decision = DecisionNotEligible
	}

	if asr < minASR {
		res.Reasons = append(res.Reasons, fmt.Sprintf("speech confidence %.2f below %.2f", asr, minASR))
	}
	if rulesVal < minRules {
		res.Reasons = append(res.Reasons, fmt.Sprintf("rules score %.2f below %.2f", rulesVal, minRules))
	}
	if intent < minIntent {
		res.Reasons = append(res.Reasons, fmt.Sprintf("intent confidence %.2f below %.2f", intent, minIntent))
	}
	if !sig.CallerHistoryClean {
		res.Reasons = append(res.Reasons, "caller history flagged")
	}
	res.Reasons = append(res.Reasons, fmt.Sprintf("composite score %.4f", composite))

	return res
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
