package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/session"
)

// legacyStep advances the fixed collection path one state per turn, and
// answers turns arriving in post-eligibility states.
func (e *Engine) legacyStep(ctx context.Context, sess *domain.Session, input, lower string) (*domain.TurnResult, error) {
	switch sess.CurrentState {
	case domain.StateStart:
		updated, err := e.sessions.SetState(ctx, sess.ID, domain.StateAwaitingState)
		if err != nil {
			return nil, err
		}
		return prompt(updated, "Namaste! I can help you check benefit eligibility. Which state do you live in?"), nil

	case domain.StateAwaitingState:
		updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
			tx.SetData("state", lower)
			return tx.SetState(domain.StateAwaitingLand)
		})
		if err != nil {
			return nil, err
		}
		return prompt(updated, "Do you own agricultural land? Please answer yes or no."), nil

	case domain.StateAwaitingLand:
		landOwned := "no"
		if domain.IsAffirmative(input) {
			landOwned = "yes"
		}

		updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
			tx.SetData("landOwned", landOwned)
			return tx.SetState(domain.StateEligibilityChecked)
		})
		if err != nil {
			return nil, err
		}

		state, _ := updated.Data["state"].(string)
		msg := "Based on your answers you do not appear eligible for the land support scheme."
		if legacyDemoEligible(state, landOwned) {
			msg = "Based on your answers you appear eligible for the land support scheme."
		}
		msg += " Would you like to raise a grievance? Please answer yes or no."

		return &domain.TurnResult{
			Response:      msg,
			CurrentState:  updated.CurrentState,
			ActionType:    domain.ActionEligibility,
			RequiresInput: true,
			SessionData:   updated.PublicData(),
		}, nil

	case domain.StateEligibilityChecked:
		if domain.IsAffirmative(input) {
			updated, err := e.sessions.SetState(ctx, sess.ID, domain.StateGrievanceDraft)
			if err != nil {
				return nil, err
			}
			return prompt(updated, "Please describe your grievance."), nil
		}

		updated, err := e.sessions.SetState(ctx, sess.ID, domain.StateCompleted)
		if err != nil {
			return nil, err
		}
		return completed(updated, "Thank you for using the service. Say restart to begin again."), nil

	case domain.StateGrievanceDraft:
		grievanceID := uuid.NewString()
		updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
			tx.SetData(domain.KeyGrievanceID, grievanceID)
			tx.SetData(domain.KeyGrievanceText, input)
			return tx.SetState(domain.StateGrievanceSubmitted)
		})
		if err != nil {
			return nil, err
		}
		return &domain.TurnResult{
			Response:      fmt.Sprintf("Your grievance has been registered with ticket ID %s. An officer will review it.", grievanceID),
			CurrentState:  updated.CurrentState,
			ActionType:    domain.ActionGrievance,
			RequiresInput: false,
			SessionData:   updated.PublicData(),
			Extra: map[string]any{
				domain.ExtraGrievanceID: grievanceID,
			},
		}, nil

	case domain.StateGrievanceSubmitted:
		updated, err := e.sessions.SetState(ctx, sess.ID, domain.StateCompleted)
		if err != nil {
			return nil, err
		}
		return completed(updated, "Your grievance is on file. Say track_status anytime to check progress."), nil

	case domain.StateHitlPending:
		return &domain.TurnResult{
			Response:      "Your application is still pending manual review. Say track_status to check progress.",
			CurrentState:  sess.CurrentState,
			ActionType:    domain.ActionStatus,
			RequiresInput: false,
			SessionData:   sess.PublicData(),
		}, nil

	case domain.StateEligibleConfirmed:
		if domain.IsAffirmative(input) || lower == "submit" {
			updated, err := e.sessions.SetState(ctx, sess.ID, domain.StateCompleted)
			if err != nil {
				return nil, err
			}
			return completed(updated, "Your application has been submitted. Say track_status anytime to check progress."), nil
		}
		return prompt(sess, "Say submit to confirm your application, or grievance: followed by your complaint."), nil

	case domain.StateNotEligible:
		updated, err := e.sessions.SetState(ctx, sess.ID, domain.StateCompleted)
		if err != nil {
			return nil, err
		}
		return completed(updated, "This application is closed. Say restart to begin again."), nil

	case domain.StateCompleted:
		return completed(sess, "This session is complete. Say restart to begin again."), nil

	default:
		// Unknown state written by a newer deployment or a scheme-defined
		// flow. Offer a way back instead of erroring.
		return prompt(sess, "I did not understand. Say restart to begin again, or start_apply: followed by a scheme name."), nil
	}
}

// legacyDemoEligible is the hard-coded two-field demo rule of the fixed
// path. It is a placeholder policy, deliberately isolated here: real
// eligibility goes through the rules engine and a scheme's rule set.
func legacyDemoEligible(state, landOwned string) bool {
	return state == "tamil nadu" && landOwned == "yes"
}

func prompt(sess *domain.Session, msg string) *domain.TurnResult {
	return &domain.TurnResult{
		Response:      msg,
		CurrentState:  sess.CurrentState,
		ActionType:    domain.ActionPrompt,
		RequiresInput: true,
		SessionData:   sess.PublicData(),
	}
}

func completed(sess *domain.Session, msg string) *domain.TurnResult {
	return &domain.TurnResult{
		Response:      msg,
		CurrentState:  sess.CurrentState,
		ActionType:    domain.ActionCompleted,
		RequiresInput: false,
		IsTerminal:    true,
		SessionData:   sess.PublicData(),
	}
}
