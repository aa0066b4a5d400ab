package statemachine

import (
	"testing"

	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expected mirrors the full static table; the test asserts IsValidTransition
// agrees with it for every (state, next) pair over the table's domain.
var expected = map[string][]string{
	domain.StateStart:              {domain.StateAwaitingState, domain.StateCollectingSlots, domain.StateCompleted},
	domain.StateAwaitingState:      {domain.StateAwaitingLand, domain.StateCompleted},
	domain.StateAwaitingLand:       {domain.StateEligibilityChecked, domain.StateCompleted},
	domain.StateEligibilityChecked: {domain.StateGrievanceDraft, domain.StateCompleted},
	domain.StateGrievanceDraft:     {domain.StateGrievanceSubmitted, domain.StateCompleted},
	domain.StateGrievanceSubmitted: {domain.StateCompleted},
	domain.StateCollectingSlots:    {domain.StateCollectingSlots, domain.StateEligibilityResult, domain.StateHitlPending, domain.StateCompleted},
	domain.StateEligibilityResult:  {domain.StateEligibleConfirmed, domain.StateNotEligible, domain.StateHitlPending, domain.StateCompleted},
	domain.StateHitlPending:        {domain.StateEligibleConfirmed, domain.StateNotEligible, domain.StateCompleted},
	domain.StateEligibleConfirmed:  {domain.StateCompleted},
	domain.StateNotEligible:        {domain.StateCompleted},
	domain.StateCompleted:          {},
}

func TestDefaultTableMatchesExactly(t *testing.T) {
	table := Default()

	require.ElementsMatch(t, keys(expected), table.States())

	for state, allowed := range expected {
		assert.ElementsMatch(t, allowed, table.Allowed(state), "allowed-set for %s", state)

		allowedSet := make(map[string]bool, len(allowed))
		for _, n := range allowed {
			allowedSet[n] = true
		}
		for _, next := range table.States() {
			got := table.IsValidTransition(state, next)
			assert.Equal(t, allowedSet[next], got, "%s -> %s", state, next)
		}
	}
}

func TestUnknownStateIsAlwaysAllowed(t *testing.T) {
	table := Default()

	for _, next := range append(table.States(), "AlsoUnknown") {
		ruling := table.Check("SchemeDefinedState", next)
		assert.True(t, ruling.Allowed)
		assert.True(t, ruling.Open, "open policy must be reported, not silent")
	}
}

func TestKnownStateRulingIsNotOpen(t *testing.T) {
	table := Default()

	ruling := table.Check(domain.StateStart, domain.StateAwaitingState)
	assert.True(t, ruling.Allowed)
	assert.False(t, ruling.Open)

	ruling = table.Check(domain.StateCompleted, domain.StateStart)
	assert.False(t, ruling.Allowed)
	assert.False(t, ruling.Open)
}

func TestCompletedIsTheOnlyTerminalState(t *testing.T) {
	table := Default()

	for _, state := range table.States() {
		if state == domain.StateCompleted {
			assert.True(t, table.Terminal(state))
		} else {
			assert.False(t, table.Terminal(state), state)
		}
	}

	// Unknown states are not terminal: the open policy keeps them live.
	assert.False(t, table.Terminal("SchemeDefinedState"))
}

func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
