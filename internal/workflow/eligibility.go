package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/ports"
	"github.com/opencivic/sahayak/pkg/rules"
	"github.com/opencivic/sahayak/pkg/session"
	"github.com/opencivic/sahayak/pkg/verifier"
)

// escalationThreshold routes low-scoring evaluations to manual review
// before any eligibility message reaches the caller.
const escalationThreshold = 0.8

// evaluate runs the scheme's rules over the collected profile, stores
// the receipt, and routes the outcome.
func (e *Engine) evaluate(ctx context.Context, sess *domain.Session, transcript string, meta *domain.TurnMeta) (*domain.TurnResult, error) {
	sch, ok := e.catalog.GetScheme(schemeName(sess))
	if !ok {
		return &domain.TurnResult{
			Response:      "Your application's scheme is no longer available. Say restart to begin again.",
			CurrentState:  sess.CurrentState,
			ActionType:    domain.ActionPrompt,
			RequiresInput: true,
			SessionData:   sess.PublicData(),
		}, nil
	}

	profile := sess.PublicData()
	verdict := rules.Evaluate(profile, sch.Rules)
	receipt := domain.BenefitReceipt{
		Eligible:   verdict.Eligible,
		Scheme:     sch.Title(),
		Trace:      verdict.Trace,
		Sources:    sch.Sources,
		Confidence: verdict.Score,
	}

	if verdict.Score < escalationThreshold {
		return e.escalate(ctx, sess, &receipt, verdict.Score, transcript, meta, ports.CaseKindLowConfidence, nil)
	}

	if verdict.Eligible {
		return e.confirmOrVerify(ctx, sess, &receipt, verdict.Score, transcript, meta)
	}

	return e.reject(ctx, sess, &receipt, verdict)
}

// escalate enqueues a review case and parks the session in HitlPending.
// The enqueue is best-effort: a queue failure is logged, never surfaced.
func (e *Engine) escalate(ctx context.Context, sess *domain.Session, receipt *domain.BenefitReceipt, score float64, transcript string, meta *domain.TurnMeta, kind string, vres *verifier.Result) (*domain.TurnResult, error) {
	var caseID string
	if e.queue != nil {
		c := ports.Case{
			SessionID:  sess.ID,
			Kind:       kind,
			Transcript: transcript,
			Response:   "pending manual review",
			Confidence: score,
			Receipt:    receipt,
			Slots:      sess.PublicData(),
		}
		if meta != nil {
			c.TurnID = meta.TurnID
		}
		id, err := e.queue.Enqueue(ctx, c)
		if err != nil {
			e.logger.Warn("Failed to enqueue review case", "session_id", sess.ID, "kind", kind, "err", err)
		} else {
			caseID = id
		}
	}

	updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
		tx.SetData(domain.KeyReceipt, receipt)
		tx.SetData(domain.KeyScore, score)
		if caseID != "" {
			tx.SetData(domain.KeyCaseID, caseID)
		}
		if sess.CurrentState == domain.StateCollectingSlots {
			return tx.SetState(domain.StateHitlPending)
		}
		if err := tx.SetState(domain.StateEligibilityResult); err != nil {
			return err
		}
		return tx.SetState(domain.StateHitlPending)
	})
	if err != nil {
		return nil, err
	}

	e.hooks.EmitEscalation(ctx, &domain.EscalationEvent{
		SessionID: sess.ID,
		CaseID:    caseID,
		Scheme:    receipt.Scheme,
		Score:     score,
	})

	extra := map[string]any{domain.ExtraReceipt: receipt}
	if caseID != "" {
		extra[domain.ExtraCaseID] = caseID
	}
	if vres != nil {
		extra[domain.ExtraVerifier] = vres
	}

	return &domain.TurnResult{
		Response:      "Thank you. Your application needs a quick manual check; an officer will review it and you will be notified. Say track_status anytime to check progress.",
		CurrentState:  updated.CurrentState,
		ActionType:    domain.ActionEscalated,
		RequiresInput: false,
		IsTerminal:    true,
		SessionData:   updated.PublicData(),
		Extra:         extra,
	}, nil
}

// confirmOrVerify finishes an eligible evaluation. With channel metadata
// present the verifier decides between auto-submit, review, and
// rejection; without it the eligible verdict stands on its own.
func (e *Engine) confirmOrVerify(ctx context.Context, sess *domain.Session, receipt *domain.BenefitReceipt, score float64, transcript string, meta *domain.TurnMeta) (*domain.TurnResult, error) {
	var vres *verifier.Result
	if meta != nil {
		r := verifier.Assess(sess.ID, score, true, verifier.Signals{
			ASR:                meta.ASRConfidence,
			Intent:             meta.IntentConfidence,
			CallerHistoryClean: meta.CallerHistoryClean,
		})
		vres = &r
		e.hooks.EmitDecision(ctx, &domain.DecisionEvent{
			SessionID: sess.ID,
			Decision:  string(r.Decision),
			RiskScore: r.RiskScore,
		})

		switch r.Decision {
		case verifier.DecisionHitlQueue:
			return e.escalate(ctx, sess, receipt, score, transcript, meta, ports.CaseKindVerifier, vres)
		case verifier.DecisionNotEligible:
			return e.rejectByVerifier(ctx, sess, receipt, score, vres)
		}
	}

	updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
		tx.SetData(domain.KeyReceipt, receipt)
		tx.SetData(domain.KeyScore, score)
		if err := tx.SetState(domain.StateEligibilityResult); err != nil {
			return err
		}
		return tx.SetState(domain.StateEligibleConfirmed)
	})
	if err != nil {
		return nil, err
	}

	extra := map[string]any{domain.ExtraReceipt: receipt}
	if vres != nil {
		extra[domain.ExtraVerifier] = vres
	}

	return &domain.TurnResult{
		Response:      fmt.Sprintf("Good news! Based on your answers you appear eligible for %s. Say submit to confirm your application, or track_status to review it later.", receipt.Scheme),
		CurrentState:  updated.CurrentState,
		ActionType:    domain.ActionEligibility,
		RequiresInput: true,
		IsTerminal:    true,
		SessionData:   updated.PublicData(),
		Extra:         extra,
	}, nil
}

// reject closes an application every mandatory rule check could not pass.
func (e *Engine) reject(ctx context.Context, sess *domain.Session, receipt *domain.BenefitReceipt, verdict domain.EligibilityVerdict) (*domain.TurnResult, error) {
	updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
		tx.SetData(domain.KeyReceipt, receipt)
		tx.SetData(domain.KeyScore, verdict.Score)
		if err := tx.SetState(domain.StateEligibilityResult); err != nil {
			return err
		}
		if err := tx.SetState(domain.StateNotEligible); err != nil {
			return err
		}
		return tx.SetState(domain.StateCompleted)
	})
	if err != nil {
		return nil, err
	}

	var failed []string
	for _, entry := range verdict.Trace {
		if !entry.Pass {
			label := entry.Label
			if label == "" {
				label = entry.Rule
			}
			failed = append(failed, label)
		}
	}

	response := fmt.Sprintf("Based on your answers you do not appear eligible for %s.", receipt.Scheme)
	if len(failed) > 0 {
		response += " Unmet conditions: " + strings.Join(failed, "; ") + "."
	}
	response += " If you believe this is wrong, say grievance: followed by your complaint."

	return &domain.TurnResult{
		Response:      response,
		CurrentState:  updated.CurrentState,
		ActionType:    domain.ActionEligibility,
		RequiresInput: false,
		IsTerminal:    true,
		SessionData:   updated.PublicData(),
		Extra:         map[string]any{domain.ExtraReceipt: receipt},
	}, nil
}

// rejectByVerifier closes an application the rules passed but the risk
// blend could not clear.
func (e *Engine) rejectByVerifier(ctx context.Context, sess *domain.Session, receipt *domain.BenefitReceipt, score float64, vres *verifier.Result) (*domain.TurnResult, error) {
	updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
		tx.SetData(domain.KeyReceipt, receipt)
		tx.SetData(domain.KeyScore, score)
		if err := tx.SetState(domain.StateEligibilityResult); err != nil {
			return err
		}
		if err := tx.SetState(domain.StateNotEligible); err != nil {
			return err
		}
		return tx.SetState(domain.StateCompleted)
	})
	if err != nil {
		return nil, err
	}

	return &domain.TurnResult{
		Response:      "We could not verify your application automatically. Please visit your nearest service center with your documents, or say grievance: followed by your complaint.",
		CurrentState:  updated.CurrentState,
		ActionType:    domain.ActionEligibility,
		RequiresInput: false,
		IsTerminal:    true,
		SessionData:   updated.PublicData(),
		Extra: map[string]any{
			domain.ExtraReceipt:  receipt,
			domain.ExtraVerifier: vres,
		},
	}, nil
}
