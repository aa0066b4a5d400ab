// Package observability binds lifecycle hooks to Prometheus metrics.
// The workflow core stays metrics-free; hosts that want counters attach
// this package's hooks to the engine and the session manager.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/opencivic/sahayak/pkg/domain"
)

// Metrics holds the dialogue core's instruments.
type Metrics struct {
	Turns           *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	OpenTransitions prometheus.Counter
	Escalations     *prometheus.CounterVec
	Decisions       *prometheus.CounterVec
	RuleScores      prometheus.Histogram
}

// NewMetrics registers the instruments on the given registerer. Pass
// prometheus.DefaultRegisterer in production, a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahayak",
			Subsystem: "workflow",
			Name:      "turns_total",
			Help:      "Completed dialogue turns by action type",
		}, []string{"action"}),

		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahayak",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "State transitions by destination state",
		}, []string{"to"}),

		OpenTransitions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sahayak",
			Subsystem: "workflow",
			Name:      "open_transitions_total",
			Help:      "Transitions allowed by the unknown-state forward-compatibility policy",
		}),

		Escalations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahayak",
			Subsystem: "workflow",
			Name:      "escalations_total",
			Help:      "Cases handed to manual review, by scheme",
		}, []string{"scheme"}),

		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahayak",
			Subsystem: "verifier",
			Name:      "decisions_total",
			Help:      "Verifier routing decisions by outcome",
		}, []string{"decision"}),

		RuleScores: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sahayak",
			Subsystem: "rules",
			Name:      "score",
			Help:      "Distribution of rule-set match scores on escalated cases",
			Buckets:   []float64{0.0, 0.2, 0.4, 0.6, 0.8, 0.9, 1.0},
		}),
	}
}

// Hooks returns lifecycle hooks that feed these instruments.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(e.ActionType).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(e.To).Inc()
		},
		OnOpenTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.OpenTransitions.Inc()
		},
		OnEscalation: func(_ context.Context, e *domain.EscalationEvent) {
			m.Escalations.WithLabelValues(e.Scheme).Inc()
			m.RuleScores.Observe(e.Score)
		},
		OnDecision: func(_ context.Context, e *domain.DecisionEvent) {
			m.Decisions.WithLabelValues(e.Decision).Inc()
		},
	}
}

// Merge combines multiple hook sets so the engine can feed metrics and
// other observers at once.
func Merge(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			for _, h := range sets {
				h.EmitTurn(ctx, e)
			}
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			for _, h := range sets {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnOpenTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			for _, h := range sets {
				if h.OnOpenTransition != nil {
					h.OnOpenTransition(ctx, e)
				}
			}
		},
		OnEscalation: func(ctx context.Context, e *domain.EscalationEvent) {
			for _, h := range sets {
				h.EmitEscalation(ctx, e)
			}
		},
		OnDecision: func(ctx context.Context, e *domain.DecisionEvent) {
			for _, h := range sets {
				h.EmitDecision(ctx, e)
			}
		},
	}
}
