package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssess_HardOverrideIgnoresOtherSignals(t *testing.T) {
	// The decision must be independent of asr/intent/history once the
	// deterministic evaluation failed.
	for _, sig := range []Signals{
		{ASR: 1.0, Intent: 1.0, CallerHistoryClean: true},
		{ASR: 0.0, Intent: 0.0, CallerHistoryClean: false},
		{ASR: 0.5, Intent: 0.9, CallerHistoryClean: true},
	} {
		res := Assess("s1", 0.9, false, sig)
		assert.Equal(t, 0.0, res.RiskScore)
		assert.Equal(t, DecisionNotEligible, res.Decision)
	}

	// Zero rules score triggers it even with eligible=true.
	res := Assess("s1", 0.0, true, Signals{ASR: 1, Intent: 1, CallerHistoryClean: true})
	assert.Equal(t, 0.0, res.RiskScore)
	assert.Equal(t, DecisionNotEligible, res.Decision)
}

func TestAssess_PerfectSignalsAutoSubmit(t *testing.T) {
	res := Assess("s1", 1.0, true, Signals{ASR: 1.0, Intent: 1.0, CallerHistoryClean: true})

	assert.InDelta(t, 1.0, res.RiskScore, 1e-9)
	assert.Equal(t, DecisionAutoSubmit, res.Decision)
}

func TestAssess_Thresholds(t *testing.T) {
	tests := []struct {
		name string
		sig  Signals
		want Decision
	}{
		// 0.2*1 + 0.5*1 + 0.2*0.75 + 0.1*1 = 0.95 -> auto submit.
		{"high auto", Signals{ASR: 1.0, Intent: 0.75, CallerHistoryClean: true}, DecisionAutoSubmit},
		// 0.2*0.5 + 0.5*1 + 0.2*0.5 + 0.1*0.1 = 0.71 -> review.
		{"mid review", Signals{ASR: 0.5, Intent: 0.5, CallerHistoryClean: false}, DecisionHitlQueue},
		// 0.2*0 + 0.5*1 + 0.2*0 + 0.1*0.1 = 0.51 -> not eligible.
		{"low", Signals{ASR: 0.0, Intent: 0.0, CallerHistoryClean: false}, DecisionNotEligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Assess("s1", 1.0, true, tt.sig)
			assert.Equal(t, tt.want, res.Decision)
		})
	}
}

func TestAssess_ClampsInputs(t *testing.T) {
	res := Assess("s1", 1.0, true, Signals{ASR: 7.0, Intent: -3.0, CallerHistoryClean: true})

	assert.Equal(t, 1.0, res.Inputs.ASR)
	assert.Equal(t, 0.0, res.Inputs.Intent)
	// 0.2 + 0.5 + 0 + 0.1 = 0.8
	assert.InDelta(t, 0.8, res.RiskScore, 1e-9)
	assert.Equal(t, DecisionHitlQueue, res.Decision)
}

func TestAssess_ReasonsEndWithCompositeScore(t *testing.T) {
	res := Assess("s1", 0.9, true, Signals{ASR: 0.5, Intent: 0.6, CallerHistoryClean: false})

	assert.Contains(t, res.Reasons[0], "speech confidence")
	assert.Contains(t, res.Reasons, "caller history flagged")
	assert.Contains(t, res.Reasons[len(res.Reasons)-1], "composite score")
}

func TestAssess_CleanRunHasOnlyCompositeReason(t *testing.T) {
	res := Assess("s1", 1.0, true, Signals{ASR: 0.95, Intent: 0.9, CallerHistoryClean: true})

	assert.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "composite score")
}
