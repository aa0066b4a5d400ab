package domain

// Action types describing what a turn produced. Transport adapters map these
// onto their own protocol (TTS prompt, SMS body, chat message, ...).
const (
	ActionPrompt      = "prompt"
	ActionSlotPrompt  = "slot_prompt"
	ActionSchemeList  = "scheme_list"
	ActionEligibility = "eligibility_result"
	ActionEscalated   = "hitl_escalation"
	ActionGrievance   = "grievance_ack"
	ActionStatus      = "status"
	ActionCompleted   = "completed"
)

// Extra keys a TurnResult may carry.
const (
	ExtraReceipt     = "benefit_receipt"
	ExtraVerifier    = "verifier_result"
	ExtraCaseID      = "case_id"
	ExtraGrievanceID = "grievance_id"
	ExtraSchemes     = "available_schemes"
)

// TurnResult is the core's output contract to any transport.
//
// IsTerminal means this turn concludes the flow from the caller's point of
// view; it does not imply CurrentState == Completed. An eligibility
// confirmation is terminal yet leaves the session in EligibleConfirmed so a
// follow-up turn can still act on it.
type TurnResult struct {
	Response      string         `json:"response"`
	CurrentState  string         `json:"current_state"`
	ActionType    string         `json:"action_type"`
	RequiresInput bool           `json:"requires_input"`
	IsTerminal    bool           `json:"is_terminal"`
	SessionData   map[string]any `json:"session_data"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// TurnMeta carries auxiliary per-turn signals from the channel layer.
// When present on an eligibility-concluding turn, the verifier combines them
// with the rules score into a routing decision.
type TurnMeta struct {
	TurnID             string  `json:"turn_id,omitempty"`
	Channel            string  `json:"channel,omitempty"`
	ASRConfidence      float64 `json:"asr_confidence"`
	IntentConfidence   float64 `json:"intent_confidence"`
	CallerHistoryClean bool    `json:"caller_history_clean"`
}
