package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencivic/sahayak/internal/workflow"
	"github.com/opencivic/sahayak/pkg/adapters/memory"
	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/ports"
	"github.com/opencivic/sahayak/pkg/rules"
	"github.com/opencivic/sahayak/pkg/scheme"
	"github.com/opencivic/sahayak/pkg/session"
	"github.com/opencivic/sahayak/pkg/verifier"
)

// captureQueue records enqueued cases and hands out sequential case IDs.
type captureQueue struct {
	cases []ports.Case
	fail  bool
}

func (q *captureQueue) Enqueue(_ context.Context, c ports.Case) (string, error) {
	if q.fail {
		return "", errors.New("queue unavailable")
	}
	q.cases = append(q.cases, c)
	return "case-1", nil
}

func testCatalog() scheme.Catalog {
	return scheme.NewStatic([]scheme.Scheme{
		{
			Name:        "pm_kisan",
			DisplayName: "PM-KISAN",
			Slots: []scheme.Slot{
				{
					Key:    "occupation",
					Type:   domain.SlotTypeString,
					Prompt: "What is your occupation?",
					CodeMap: map[string]string{
						"1": "Farmer",
						"2": "Laborer",
					},
				},
				{
					Key:    "land_acres",
					Type:   domain.SlotTypeFloat,
					Prompt: "How many acres of land do you own?",
				},
			},
			Rules: rules.RuleSet{
				Mandatory: []rules.Rule{
					{
						Field:    "occupation",
						Operator: rules.OpIn,
						Value:    []any{"Farmer"},
						Label:    "Must be a farmer",
						Citation: "PM-KISAN guidelines",
					},
				},
			},
			Sources: []string{"PM-KISAN Operational Guidelines, Feb 2019"},
		},
	})
}

func newEngine(t *testing.T, opts ...workflow.Option) (*workflow.Engine, *session.Manager) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore())
	require.NoError(t, mgr.Initialize(context.Background()))
	return workflow.New(mgr, testCatalog(), opts...), mgr
}

func receiptFrom(t *testing.T, res *domain.TurnResult) *domain.BenefitReceipt {
	t.Helper()
	require.NotNil(t, res.Extra)
	receipt, ok := res.Extra[domain.ExtraReceipt].(*domain.BenefitReceipt)
	require.True(t, ok, "expected a benefit receipt in extras")
	return receipt
}

func TestEligibleApplication(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	res, err := eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)
	assert.Equal(t, "What is your occupation?", res.Response)
	assert.Equal(t, domain.StateCollectingSlots, res.CurrentState)
	assert.Equal(t, domain.ActionSlotPrompt, res.ActionType)
	assert.True(t, res.RequiresInput)

	res, err = eng.HandleInput(ctx, "s1", "Farmer")
	require.NoError(t, err)
	assert.Equal(t, "How many acres of land do you own?", res.Response)
	assert.Equal(t, domain.StateCollectingSlots, res.CurrentState)

	res, err = eng.HandleInput(ctx, "s1", "1.5")
	require.NoError(t, err)
	assert.Equal(t, domain.StateEligibleConfirmed, res.CurrentState)
	assert.Equal(t, domain.ActionEligibility, res.ActionType)
	assert.True(t, res.IsTerminal)
	assert.True(t, res.RequiresInput)

	receipt := receiptFrom(t, res)
	assert.True(t, receipt.Eligible)
	assert.Equal(t, 1.0, receipt.Confidence)
	assert.Equal(t, "PM-KISAN", receipt.Scheme)
	require.Len(t, receipt.Trace, 1)
	assert.True(t, receipt.Trace[0].Pass)
	assert.Equal(t, []string{"PM-KISAN Operational Guidelines, Feb 2019"}, receipt.Sources)

	assert.Equal(t, "Farmer", res.SessionData["occupation"])
	assert.Equal(t, 1.5, res.SessionData["land_acres"])
}

func TestFailedRuleEscalatesToReview(t *testing.T) {
	ctx := context.Background()
	queue := &captureQueue{}
	eng, _ := newEngine(t, workflow.WithReviewQueue(queue))

	_, err := eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "s1", "Laborer")
	require.NoError(t, err)

	res, err := eng.HandleInput(ctx, "s1", "3.0")
	require.NoError(t, err)

	// Score 0.0 sits below the escalation threshold, so the failed
	// verdict goes to manual review instead of an outright rejection.
	assert.Equal(t, domain.StateHitlPending, res.CurrentState)
	assert.Equal(t, domain.ActionEscalated, res.ActionType)
	assert.True(t, res.IsTerminal)
	assert.False(t, res.RequiresInput)

	receipt := receiptFrom(t, res)
	assert.False(t, receipt.Eligible)
	assert.Equal(t, 0.0, receipt.Confidence)
	require.Len(t, receipt.Trace, 1)
	assert.False(t, receipt.Trace[0].Pass)

	require.Len(t, queue.cases, 1)
	assert.Equal(t, ports.CaseKindLowConfidence, queue.cases[0].Kind)
	assert.Equal(t, "s1", queue.cases[0].SessionID)
	assert.Equal(t, "case-1", res.Extra[domain.ExtraCaseID])
}

func TestQueueFailureDoesNotFailTurn(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t, workflow.WithReviewQueue(&captureQueue{fail: true}))

	_, err := eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "s1", "Laborer")
	require.NoError(t, err)

	res, err := eng.HandleInput(ctx, "s1", "3.0")
	require.NoError(t, err)
	assert.Equal(t, domain.StateHitlPending, res.CurrentState)
	assert.NotContains(t, res.Extra, domain.ExtraCaseID)
}

func TestUnknownSchemeListsAvailable(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	res, err := eng.HandleInput(ctx, "s1", "start_apply:doesnotexist")
	require.NoError(t, err)
	assert.Equal(t, domain.StateStart, res.CurrentState)
	assert.Equal(t, domain.ActionSchemeList, res.ActionType)
	assert.Contains(t, res.Response, "pm_kisan")
	assert.Equal(t, []string{"pm_kisan"}, res.Extra[domain.ExtraSchemes])
}

func TestRestartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	first, err := eng.HandleInput(ctx, "s1", "restart")
	require.NoError(t, err)
	second, err := eng.HandleInput(ctx, "s1", "restart")
	require.NoError(t, err)

	assert.Equal(t, first.Response, second.Response)
	assert.Equal(t, first.CurrentState, second.CurrentState)
	assert.Equal(t, domain.StateAwaitingState, second.CurrentState)
}

func TestDTMFInputResolvesThroughCodeMap(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	_, err := eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)

	res, err := eng.HandleInput(ctx, "s1", "dtmf:1")
	require.NoError(t, err)
	assert.Equal(t, "Farmer", res.SessionData["occupation"])

	res, err = eng.HandleInput(ctx, "s1", "1.5")
	require.NoError(t, err)
	assert.True(t, receiptFrom(t, res).Eligible)
}

func TestDTMFFallsBackToRawDigits(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	_, err := eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)

	res, err := eng.HandleInput(ctx, "s1", "dtmf:9")
	require.NoError(t, err)
	assert.Equal(t, "9", res.SessionData["occupation"])
}

func TestThousandsSeparatorCoercion(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	_, err := eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "s1", "Farmer")
	require.NoError(t, err)

	res, err := eng.HandleInput(ctx, "s1", "1,200")
	require.NoError(t, err)
	assert.Equal(t, 1200.0, res.SessionData["land_acres"])
}

func TestLegacyFixedPath(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	res, err := eng.HandleInput(ctx, "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingState, res.CurrentState)
	assert.Contains(t, res.Response, "Which state")

	res, err = eng.HandleInput(ctx, "s1", "Tamil Nadu")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingLand, res.CurrentState)
	assert.Contains(t, res.Response, "agricultural land")

	res, err = eng.HandleInput(ctx, "s1", "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.StateEligibilityChecked, res.CurrentState)
	assert.Contains(t, res.Response, "appear eligible")

	res, err = eng.HandleInput(ctx, "s1", "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.StateGrievanceDraft, res.CurrentState)

	res, err = eng.HandleInput(ctx, "s1", "My application was rejected last year")
	require.NoError(t, err)
	assert.Equal(t, domain.StateGrievanceSubmitted, res.CurrentState)
	assert.Equal(t, domain.ActionGrievance, res.ActionType)
	assert.NotEmpty(t, res.Extra[domain.ExtraGrievanceID])
}

func TestLegacyNotEligibleOutsideTamilNadu(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	_, err := eng.HandleInput(ctx, "s1", "restart")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "s1", "Kerala")
	require.NoError(t, err)

	res, err := eng.HandleInput(ctx, "s1", "yes")
	require.NoError(t, err)
	assert.Contains(t, res.Response, "not appear eligible")
}

func TestGlobalGrievanceCommand(t *testing.T) {
	ctx := context.Background()
	queue := &captureQueue{}
	eng, _ := newEngine(t, workflow.WithReviewQueue(queue))

	res, err := eng.HandleInput(ctx, "s1", "grievance: pension not received for two months")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, res.CurrentState)
	assert.Equal(t, domain.ActionGrievance, res.ActionType)
	assert.True(t, res.IsTerminal)
	assert.NotEmpty(t, res.Extra[domain.ExtraGrievanceID])

	require.Len(t, queue.cases, 1)
	assert.Equal(t, "grievance", queue.cases[0].Kind)
	assert.Equal(t, "pension not received for two months", queue.cases[0].Transcript)
}

func TestGrievanceOnCompletedSession(t *testing.T) {
	ctx := context.Background()
	queue := &captureQueue{}
	eng, _ := newEngine(t, workflow.WithReviewQueue(queue))

	res, err := eng.HandleInput(ctx, "s1", "grievance: first complaint")
	require.NoError(t, err)
	require.Equal(t, domain.StateCompleted, res.CurrentState)
	firstTicket := res.Extra[domain.ExtraGrievanceID]

	// Completed has no successors, so the second registration must not
	// attempt a transition; it still issues a fresh ticket.
	res, err = eng.HandleInput(ctx, "s1", "grievance: second complaint")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, res.CurrentState)
	assert.Equal(t, domain.ActionGrievance, res.ActionType)
	assert.NotEmpty(t, res.Extra[domain.ExtraGrievanceID])
	assert.NotEqual(t, firstTicket, res.Extra[domain.ExtraGrievanceID])

	require.Len(t, queue.cases, 2)
	assert.Equal(t, "second complaint", queue.cases[1].Transcript)
}

func TestTrackStatus(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	res, err := eng.HandleInput(ctx, "s1", "track_status")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStatus, res.ActionType)
	assert.Contains(t, res.Response, "No application")

	_, err = eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "s1", "Farmer")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "s1", "1.5")
	require.NoError(t, err)

	res, err = eng.HandleInput(ctx, "s1", "track_status")
	require.NoError(t, err)
	assert.Contains(t, res.Response, "on file")
	assert.Contains(t, res.Extra, domain.ExtraReceipt)
}

func TestSessionSelfHeals(t *testing.T) {
	ctx := context.Background()
	eng, mgr := newEngine(t)

	res, err := eng.HandleInput(ctx, "never-seen", "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingState, res.CurrentState)

	sess, err := mgr.Get(ctx, "never-seen")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingState, sess.CurrentState)
}

func TestVerifierAutoSubmit(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	meta := &domain.TurnMeta{ASRConfidence: 1.0, IntentConfidence: 1.0, CallerHistoryClean: true}

	_, err := eng.HandleTurn(ctx, "s1", "start_apply:pm_kisan", meta)
	require.NoError(t, err)
	_, err = eng.HandleTurn(ctx, "s1", "Farmer", meta)
	require.NoError(t, err)

	res, err := eng.HandleTurn(ctx, "s1", "1.5", meta)
	require.NoError(t, err)
	assert.Equal(t, domain.StateEligibleConfirmed, res.CurrentState)

	vres, ok := res.Extra[domain.ExtraVerifier].(*verifier.Result)
	require.True(t, ok)
	assert.Equal(t, verifier.DecisionAutoSubmit, vres.Decision)
	assert.InDelta(t, 1.0, vres.RiskScore, 1e-9)
}

func TestVerifierRoutesToReview(t *testing.T) {
	ctx := context.Background()
	queue := &captureQueue{}
	eng, _ := newEngine(t, workflow.WithReviewQueue(queue))

	// 0.2*0.5 + 0.5*1.0 + 0.2*0.5 + 0.1*1.0 = 0.80, inside the review band.
	meta := &domain.TurnMeta{ASRConfidence: 0.5, IntentConfidence: 0.5, CallerHistoryClean: true}

	_, err := eng.HandleTurn(ctx, "s1", "start_apply:pm_kisan", meta)
	require.NoError(t, err)
	_, err = eng.HandleTurn(ctx, "s1", "Farmer", meta)
	require.NoError(t, err)

	res, err := eng.HandleTurn(ctx, "s1", "1.5", meta)
	require.NoError(t, err)
	assert.Equal(t, domain.StateHitlPending, res.CurrentState)
	assert.Equal(t, domain.ActionEscalated, res.ActionType)

	require.Len(t, queue.cases, 1)
	assert.Equal(t, ports.CaseKindVerifier, queue.cases[0].Kind)
}

func TestVerifierRejectsLowComposite(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	// 0.2*0.2 + 0.5*1.0 + 0.2*0.2 + 0.1*0.1 = 0.59, below the review band.
	meta := &domain.TurnMeta{ASRConfidence: 0.2, IntentConfidence: 0.2, CallerHistoryClean: false}

	_, err := eng.HandleTurn(ctx, "s1", "start_apply:pm_kisan", meta)
	require.NoError(t, err)
	_, err = eng.HandleTurn(ctx, "s1", "Farmer", meta)
	require.NoError(t, err)

	res, err := eng.HandleTurn(ctx, "s1", "1.5", meta)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, res.CurrentState)
	assert.True(t, res.IsTerminal)

	vres, ok := res.Extra[domain.ExtraVerifier].(*verifier.Result)
	require.True(t, ok)
	assert.Equal(t, verifier.DecisionNotEligible, vres.Decision)
}

func TestSubmitAfterConfirmation(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	_, err := eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "s1", "Farmer")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "s1", "1.5")
	require.NoError(t, err)

	res, err := eng.HandleInput(ctx, "s1", "submit")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, res.CurrentState)
	assert.Equal(t, domain.ActionCompleted, res.ActionType)
}

func TestTurnHookFires(t *testing.T) {
	ctx := context.Background()

	var events []domain.TurnEvent
	eng, _ := newEngine(t, workflow.WithHooks(domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			events = append(events, *e)
		},
	}))

	_, err := eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, domain.ActionSlotPrompt, events[0].ActionType)
	assert.Equal(t, domain.StateCollectingSlots, events[0].State)
}

func TestStartApplyResetsPriorFlow(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(t)

	// Walk partway into the legacy path, then begin an application.
	_, err := eng.HandleInput(ctx, "s1", "restart")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "s1", "Kerala")
	require.NoError(t, err)

	res, err := eng.HandleInput(ctx, "s1", "start_apply:pm_kisan")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCollectingSlots, res.CurrentState)

	// The legacy answer must not leak into the scheme profile.
	assert.NotContains(t, res.SessionData, "state")
}
