// Package workflow orchestrates the eligibility dialogue: it interprets
// user input against the current session state, drives slot collection,
// invokes the rules engine once all slots are filled, and routes the
// outcome. All mutations of one turn land in a single session persist.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"github.com/opencivic/sahayak/internal/logging"
	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/ports"
	"github.com/opencivic/sahayak/pkg/scheme"
	"github.com/opencivic/sahayak/pkg/session"
)

// Input markers recognized ahead of state routing.
const (
	cmdRestart     = "restart"
	cmdTrackStatus = "track_status"
	prefixApply    = "start_apply:"
	prefixGrieve   = "grievance:"
	prefixDTMF     = "dtmf:"
)

// Engine drives dialogue turns.
type Engine struct {
	sessions *session.Manager
	catalog  scheme.Catalog
	queue    ports.ReviewQueue
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithReviewQueue sets the queue escalated cases are handed to.
func WithReviewQueue(queue ports.ReviewQueue) Option {
	return func(e *Engine) {
		e.queue = queue
	}
}

// WithHooks registers lifecycle hooks fired on turns, escalations, and
// routing decisions.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New creates a workflow engine over a session manager and a catalog.
func New(sessions *session.Manager, catalog scheme.Catalog, opts ...Option) *Engine {
	e := &Engine{
		sessions: sessions,
		catalog:  catalog,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleInput processes one turn without channel metadata.
func (e *Engine) HandleInput(ctx context.Context, sessionID, rawInput string) (*domain.TurnResult, error) {
	return e.HandleTurn(ctx, sessionID, rawInput, nil)
}

// HandleTurn processes one turn. meta, when present, feeds the verifier on
// eligibility-concluding turns.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, rawInput string, meta *domain.TurnMeta) (*domain.TurnResult, error) {
	sess, err := e.ensureSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	input := strings.TrimSpace(rawInput)
	lower := strings.ToLower(input)

	var result *domain.TurnResult
	switch {
	case lower == cmdRestart:
		result, err = e.restart(ctx, sessionID)
	case strings.HasPrefix(lower, prefixApply):
		name := strings.TrimSpace(input[len(prefixApply):])
		result, err = e.startApply(ctx, sess, name)
	case strings.HasPrefix(lower, prefixGrieve):
		text := strings.TrimSpace(input[len(prefixGrieve):])
		result, err = e.registerGrievance(ctx, sess, text, meta)
	case lower == cmdTrackStatus:
		result, err = e.trackStatus(sess)
	case sess.CurrentState == domain.StateCollectingSlots:
		result, err = e.collectSlot(ctx, sess, input, meta)
	default:
		result, err = e.legacyStep(ctx, sess, input, lower)
	}
	if err != nil {
		return nil, err
	}

	e.hooks.EmitTurn(ctx, &domain.TurnEvent{
		SessionID:  sessionID,
		ActionType: result.ActionType,
		State:      result.CurrentState,
		Terminal:   result.IsTerminal,
	})
	return result, nil
}

// ensureSession loads the session, self-healing a miss by creating a
// fresh one. A dropped call that resumes after store expiry starts over
// instead of erroring out.
func (e *Engine) ensureSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := e.sessions.Get(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	e.logger.Debug("Session missing, creating fresh", "session_id", sessionID)
	sess, err = e.sessions.Create(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// restart recreates the session and opens the fixed collection path.
func (e *Engine) restart(ctx context.Context, sessionID string) (*domain.TurnResult, error) {
	if _, err := e.sessions.Create(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to restart session: %w", err)
	}

	sess, err := e.sessions.SetState(ctx, sessionID, domain.StateAwaitingState)
	if err != nil {
		return nil, err
	}

	return &domain.TurnResult{
		Response:      "Namaste! I can help you check benefit eligibility. Which state do you live in?",
		CurrentState:  sess.CurrentState,
		ActionType:    domain.ActionPrompt,
		RequiresInput: true,
		SessionData:   sess.PublicData(),
	}, nil
}

// registerGrievance files a grievance ticket and closes the session.
// The review enqueue is best-effort; a queue outage must not cost the
// caller their ticket ID.
func (e *Engine) registerGrievance(ctx context.Context, sess *domain.Session, text string, meta *domain.TurnMeta) (*domain.TurnResult, error) {
	grievanceID := uuid.NewString()

	updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
		tx.SetData(domain.KeyGrievanceID, grievanceID)
		tx.SetData(domain.KeyGrievanceText, text)
		if tx.Session().CurrentState == domain.StateCompleted {
			return nil
		}
		return tx.SetState(domain.StateCompleted)
	})
	if err != nil {
		return nil, err
	}

	if e.queue != nil {
		c := ports.Case{
			SessionID:  sess.ID,
			Kind:       "grievance",
			Transcript: text,
			Slots:      updated.PublicData(),
		}
		if meta != nil {
			c.TurnID = meta.TurnID
		}
		if _, err := e.queue.Enqueue(ctx, c); err != nil {
			e.logger.Warn("Failed to enqueue grievance for review", "session_id", sess.ID, "err", err)
		}
	}

	return &domain.TurnResult{
		Response:      fmt.Sprintf("Your grievance has been registered with ticket ID %s. An officer will review it.", grievanceID),
		CurrentState:  updated.CurrentState,
		ActionType:    domain.ActionGrievance,
		RequiresInput: false,
		IsTerminal:    true,
		SessionData:   updated.PublicData(),
		Extra: map[string]any{
			domain.ExtraGrievanceID: grievanceID,
		},
	}, nil
}

// trackStatus is a read-only report of receipt and grievance status.
func (e *Engine) trackStatus(sess *domain.Session) (*domain.TurnResult, error) {
	var parts []string
	extra := make(map[string]any)

	if receipt, ok := sess.Data[domain.KeyReceipt]; ok {
		extra[domain.ExtraReceipt] = receipt
		if sess.CurrentState == domain.StateHitlPending {
			parts = append(parts, "Your application is pending manual review.")
		} else {
			parts = append(parts, "Your eligibility result is on file.")
		}
	}
	if gid, ok := sess.Data[domain.KeyGrievanceID].(string); ok && gid != "" {
		extra[domain.ExtraGrievanceID] = gid
		parts = append(parts, fmt.Sprintf("Grievance ticket %s is registered.", gid))
	}
	if caseID, ok := sess.Data[domain.KeyCaseID].(string); ok && caseID != "" {
		extra[domain.ExtraCaseID] = caseID
	}
	if len(parts) == 0 {
		parts = append(parts, "No application or grievance on file. Say start_apply:<scheme> to begin.")
	}
	if len(extra) == 0 {
		extra = nil
	}

	return &domain.TurnResult{
		Response:      strings.Join(parts, " "),
		CurrentState:  sess.CurrentState,
		ActionType:    domain.ActionStatus,
		RequiresInput: false,
		SessionData:   sess.PublicData(),
		Extra:         extra,
	}, nil
}
