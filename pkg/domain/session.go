package domain

import "time"

// Dialogue states. The fixed path (Start → AwaitingState → ... → Completed)
// predates schema-driven collection and is kept for callers still on it; the
// schema-driven path runs through CollectingSlots.
const (
	StateStart = "Start"

	// Fixed legacy path.
	StateAwaitingState      = "AwaitingState"
	StateAwaitingLand       = "AwaitingLandOwnership"
	StateEligibilityChecked = "EligibilityChecked"
	StateGrievanceDraft     = "GrievanceDraft"
	StateGrievanceSubmitted = "GrievanceSubmitted"

	// Schema-driven path.
	StateCollectingSlots   = "CollectingSlots"
	StateEligibilityResult = "EligibilityResult"
	StateHitlPending       = "HitlPending"
	StateEligibleConfirmed = "EligibleConfirmed"
	StateNotEligible       = "NotEligible"

	// StateCompleted is the single terminal state. Note that a turn can be
	// terminal (IsTerminal on the TurnResult) while the session sits in a
	// non-terminal state such as EligibleConfirmed; the two concepts are
	// deliberately distinct.
	StateCompleted = "Completed"
)

// Session is the per-caller working memory carried across request/response
// cycles. Data holds filled slots keyed by slot key, internal bookkeeping
// under "_"-prefixed keys, and derived artifacts such as the benefit receipt.
type Session struct {
	ID           string         `json:"id"`
	CurrentState string         `json:"current_state"`
	Data         map[string]any `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewSession creates a fresh session in the Start state.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		CurrentState: StateStart,
		Data:         make(map[string]any),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a copy with its own Data map, safe to mutate without
// affecting the original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Data = make(map[string]any, len(s.Data))
	for k, v := range s.Data {
		next.Data[k] = v
	}
	return &next
}

// PublicData returns the session data without internal bookkeeping keys.
// This is the view handed to transports and to the rules profile.
func (s *Session) PublicData() map[string]any {
	out := make(map[string]any, len(s.Data))
	for k, v := range s.Data {
		if IsInternalKey(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// IsInternalKey reports whether a session-data key is core bookkeeping and
// must not leak into profiles or transport payloads.
func IsInternalKey(key string) bool {
	return len(key) > 0 && key[0] == '_'
}

// Internal session-data keys used by the workflow engine.
const (
	KeyScheme        = "_scheme"
	KeyPendingSlots  = "_pending_slots"
	KeySlotSchema    = "_slot_schema"
	KeyReceipt       = "_receipt"
	KeyScore         = "_score"
	KeyGrievanceID   = "_grievance_id"
	KeyGrievanceText = "_grievance_text"
	KeyCaseID        = "_case_id"
)
