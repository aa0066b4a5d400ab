// Package statemachine defines the directed transition table over dialogue
// states. It is pure: no I/O, no clock, no store.
package statemachine

import (
	"sort"

	"github.com/opencivic/sahayak/pkg/domain"
)

// Ruling is the outcome of a transition check. It is a tagged result rather
// than a bare bool so the open-policy case stays explicit and testable:
// Open reports that the current state was not in the static table and the
// forward-compatibility policy allowed the transition unconditionally.
// Callers should log when Open is set so operators can detect drift.
type Ruling struct {
	Allowed bool
	Open    bool
}

// Table maps each known state to its allowed successors.
type Table struct {
	transitions map[string]map[string]struct{}
}

// Default returns the transition table for the civic-benefit dialogue. Two
// overlapping graphs coexist: the fixed legacy path and the schema-driven
// path through CollectingSlots. Completed is reachable from every
// non-terminal state (abort/grievance shortcut) and is the only state with
// an empty allowed-set.
func Default() *Table {
	t := &Table{transitions: make(map[string]map[string]struct{})}

	t.allow(domain.StateStart, domain.StateAwaitingState, domain.StateCollectingSlots)
	t.allow(domain.StateAwaitingState, domain.StateAwaitingLand)
	t.allow(domain.StateAwaitingLand, domain.StateEligibilityChecked)
	t.allow(domain.StateEligibilityChecked, domain.StateGrievanceDraft)
	t.allow(domain.StateGrievanceDraft, domain.StateGrievanceSubmitted)
	t.allow(domain.StateGrievanceSubmitted)

	t.allow(domain.StateCollectingSlots,
		domain.StateCollectingSlots,
		domain.StateEligibilityResult,
		domain.StateHitlPending,
	)
	t.allow(domain.StateEligibilityResult,
		domain.StateEligibleConfirmed,
		domain.StateNotEligible,
		domain.StateHitlPending,
	)
	t.allow(domain.StateHitlPending,
		domain.StateEligibleConfirmed,
		domain.StateNotEligible,
	)
	t.allow(domain.StateEligibleConfirmed)
	t.allow(domain.StateNotEligible)

	// Completed: terminal, empty allowed-set; and reachable from everywhere.
	t.transitions[domain.StateCompleted] = map[string]struct{}{}
	for state := range t.transitions {
		if state != domain.StateCompleted {
			t.transitions[state][domain.StateCompleted] = struct{}{}
		}
	}

	return t
}

func (t *Table) allow(state string, next ...string) {
	set, ok := t.transitions[state]
	if !ok {
		set = make(map[string]struct{})
		t.transitions[state] = set
	}
	for _, n := range next {
		set[n] = struct{}{}
	}
}

// Check rules on a transition. Known current state: allowed iff next is in
// its set. Unknown current state: allowed unconditionally with Open set,
// since schemes may introduce states the static table has never seen and
// the core must not reject them.
func (t *Table) Check(current, next string) Ruling {
	set, known := t.transitions[current]
	if !known {
		return Ruling{Allowed: true, Open: true}
	}
	_, ok := set[next]
	return Ruling{Allowed: ok}
}

// IsValidTransition reports whether current → next is permitted.
func (t *Table) IsValidTransition(current, next string) bool {
	return t.Check(current, next).Allowed
}

// Known reports whether state is in the static table.
func (t *Table) Known(state string) bool {
	_, ok := t.transitions[state]
	return ok
}

// Terminal reports whether state is known and has no allowed successors.
func (t *Table) Terminal(state string) bool {
	set, ok := t.transitions[state]
	return ok && len(set) == 0
}

// States returns the table's domain, sorted.
func (t *Table) States() []string {
	out := make([]string, 0, len(t.transitions))
	for s := range t.transitions {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Allowed returns the sorted allowed-set for a known state, nil otherwise.
func (t *Table) Allowed(state string) []string {
	set, ok := t.transitions[state]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
