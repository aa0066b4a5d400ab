package domain

import "context"

// TurnEvent describes a completed turn.
type TurnEvent struct {
	SessionID  string
	ActionType string
	State      string
	Terminal   bool
}

// TransitionEvent describes a state change. Open is true when the
// forward-compatibility policy allowed a transition out of a state not in
// the static table.
type TransitionEvent struct {
	SessionID string
	From      string
	To        string
	Open      bool
}

// EscalationEvent describes a case handed to manual review.
type EscalationEvent struct {
	SessionID string
	CaseID    string
	Scheme    string
	Score     float64
}

// DecisionEvent describes a verifier routing decision.
type DecisionEvent struct {
	SessionID string
	Decision  string
	RiskScore float64
}

// LifecycleHooks lets hosts observe the engine without coupling it to a
// metrics or logging backend. All hooks are optional and must be fast; they
// run inline on the turn path.
type LifecycleHooks struct {
	OnTurn           func(ctx context.Context, e *TurnEvent)
	OnTransition     func(ctx context.Context, e *TransitionEvent)
	OnOpenTransition func(ctx context.Context, e *TransitionEvent)
	OnEscalation     func(ctx context.Context, e *EscalationEvent)
	OnDecision       func(ctx context.Context, e *DecisionEvent)
}

// EmitTurn invokes OnTurn if set.
func (h LifecycleHooks) EmitTurn(ctx context.Context, e *TurnEvent) {
	if h.OnTurn != nil {
		h.OnTurn(ctx, e)
	}
}

// EmitTransition invokes OnTransition, plus OnOpenTransition when the open
// policy fired.
func (h LifecycleHooks) EmitTransition(ctx context.Context, e *TransitionEvent) {
	if h.OnTransition != nil {
		h.OnTransition(ctx, e)
	}
	if e.Open && h.OnOpenTransition != nil {
		h.OnOpenTransition(ctx, e)
	}
}

// EmitEscalation invokes OnEscalation if set.
func (h LifecycleHooks) EmitEscalation(ctx context.Context, e *EscalationEvent) {
	if h.OnEscalation != nil {
		h.OnEscalation(ctx, e)
	}
}

// EmitDecision invokes OnDecision if set.
func (h LifecycleHooks) EmitDecision(ctx context.Context, e *DecisionEvent) {
	if h.OnDecision != nil {
		h.OnDecision(ctx, e)
	}
}
