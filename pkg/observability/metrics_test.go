package observability_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/observability"
)

func TestMetricsHooks(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()

	hooks.EmitTurn(ctx, &domain.TurnEvent{SessionID: "s1", ActionType: domain.ActionSlotPrompt})
	hooks.EmitTurn(ctx, &domain.TurnEvent{SessionID: "s1", ActionType: domain.ActionSlotPrompt})
	hooks.EmitTransition(ctx, &domain.TransitionEvent{From: domain.StateStart, To: domain.StateCollectingSlots})
	hooks.EmitTransition(ctx, &domain.TransitionEvent{From: "Mystery", To: domain.StateCompleted, Open: true})
	hooks.EmitEscalation(ctx, &domain.EscalationEvent{SessionID: "s1", Scheme: "PM-KISAN", Score: 0.5})
	hooks.EmitDecision(ctx, &domain.DecisionEvent{SessionID: "s1", Decision: "AutoSubmit", RiskScore: 0.9})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Turns.WithLabelValues(domain.ActionSlotPrompt)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues(domain.StateCollectingSlots)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpenTransitions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Escalations.WithLabelValues("PM-KISAN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("AutoSubmit")))
}

func TestMergeFansOut(t *testing.T) {
	ctx := context.Background()

	var a, b int
	merged := observability.Merge(
		domain.LifecycleHooks{OnTurn: func(context.Context, *domain.TurnEvent) { a++ }},
		domain.LifecycleHooks{OnTurn: func(context.Context, *domain.TurnEvent) { b++ }},
	)

	merged.EmitTurn(ctx, &domain.TurnEvent{})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestMergeDoesNotDoubleFireOpen(t *testing.T) {
	ctx := context.Background()

	var open int
	merged := observability.Merge(domain.LifecycleHooks{
		OnOpenTransition: func(context.Context, *domain.TransitionEvent) { open++ },
	})

	merged.EmitTransition(ctx, &domain.TransitionEvent{From: "Mystery", To: domain.StateCompleted, Open: true})
	assert.Equal(t, 1, open)
}
