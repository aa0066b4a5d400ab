package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/scheme"
	"github.com/opencivic/sahayak/pkg/session"
)

// startApply begins schema-driven collection for the named scheme. An
// unknown scheme leaves the session untouched and lists what is known.
func (e *Engine) startApply(ctx context.Context, sess *domain.Session, name string) (*domain.TurnResult, error) {
	sch, ok := e.catalog.GetScheme(name)
	if !ok {
		names := e.catalog.Names()
		return &domain.TurnResult{
			Response:      fmt.Sprintf("Scheme %q not found. Available schemes: %s.", name, strings.Join(names, ", ")),
			CurrentState:  sess.CurrentState,
			ActionType:    domain.ActionSchemeList,
			RequiresInput: true,
			SessionData:   sess.PublicData(),
			Extra: map[string]any{
				domain.ExtraSchemes: names,
			},
		}, nil
	}

	// An application begins from a clean session; data from an earlier
	// flow must not leak into this scheme's profile.
	if sess.CurrentState != domain.StateStart || len(sess.Data) > 0 {
		if _, err := e.sessions.Create(ctx, sess.ID); err != nil {
			return nil, fmt.Errorf("failed to reset session for application: %w", err)
		}
	}

	pending := make([]string, 0, len(sch.Slots))
	schema := make(map[string]scheme.Slot, len(sch.Slots))
	for _, slot := range sch.Slots {
		pending = append(pending, slot.Key)
		schema[slot.Key] = slot
	}

	updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
		tx.SetData(domain.KeyScheme, sch.Name)
		tx.SetData(domain.KeyPendingSlots, pending)
		tx.SetData(domain.KeySlotSchema, schema)
		return tx.SetState(domain.StateCollectingSlots)
	})
	if err != nil {
		return nil, err
	}

	return &domain.TurnResult{
		Response:      sch.Slots[0].Prompt,
		CurrentState:  updated.CurrentState,
		ActionType:    domain.ActionSlotPrompt,
		RequiresInput: true,
		SessionData:   updated.PublicData(),
	}, nil
}

// collectSlot fills the next pending slot from raw input. When the last
// slot is filled the same turn runs eligibility evaluation, so the
// caller sees the verdict without an extra round trip.
func (e *Engine) collectSlot(ctx context.Context, sess *domain.Session, input string, meta *domain.TurnMeta) (*domain.TurnResult, error) {
	pending := pendingSlots(sess)
	if len(pending) == 0 {
		// Collection state with nothing pending: evaluation is due.
		return e.evaluate(ctx, sess, input, meta)
	}

	schema, err := slotSchema(sess)
	if err != nil {
		return nil, err
	}

	key := pending[0]
	slot, ok := schema[key]
	if !ok {
		slot = scheme.Slot{Key: key, Type: domain.SlotTypeString}
	}

	value := resolveSlotValue(slot, input)
	remaining := pending[1:]

	updated, err := e.sessions.Update(ctx, sess.ID, func(tx *session.Tx) error {
		tx.SetData(key, value)
		tx.SetData(domain.KeyPendingSlots, remaining)
		return tx.SetState(domain.StateCollectingSlots)
	})
	if err != nil {
		return nil, err
	}

	if len(remaining) > 0 {
		next := schema[remaining[0]]
		prompt := next.Prompt
		if prompt == "" {
			prompt = fmt.Sprintf("Please provide %s.", remaining[0])
		}
		return &domain.TurnResult{
			Response:      prompt,
			CurrentState:  updated.CurrentState,
			ActionType:    domain.ActionSlotPrompt,
			RequiresInput: true,
			SessionData:   updated.PublicData(),
		}, nil
	}

	return e.evaluate(ctx, updated, input, meta)
}

// resolveSlotValue applies the DTMF code map, then type coercion.
func resolveSlotValue(slot scheme.Slot, input string) any {
	raw := input
	if strings.HasPrefix(strings.ToLower(raw), prefixDTMF) {
		digits := strings.TrimSpace(raw[len(prefixDTMF):])
		if mapped, ok := slot.CodeMap[digits]; ok {
			raw = mapped
		} else {
			raw = digits
		}
	}
	return domain.CoerceSlot(slot.Type, raw).Interface()
}

// pendingSlots rehydrates the pending-slot list. JSON round-trips turn
// []string into []any, so both shapes are accepted.
func pendingSlots(sess *domain.Session) []string {
	switch v := sess.Data[domain.KeyPendingSlots].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// slotSchema rehydrates the slot schema map from session data.
func slotSchema(sess *domain.Session) (map[string]scheme.Slot, error) {
	switch v := sess.Data[domain.KeySlotSchema].(type) {
	case map[string]scheme.Slot:
		return v, nil
	case nil:
		return map[string]scheme.Slot{}, nil
	default:
		var schema map[string]scheme.Slot
		if err := mapstructure.Decode(v, &schema); err != nil {
			return nil, fmt.Errorf("failed to decode slot schema from session data: %w", err)
		}
		return schema, nil
	}
}

// schemeName returns the scheme under application, if any.
func schemeName(sess *domain.Session) string {
	name, _ := sess.Data[domain.KeyScheme].(string)
	return name
}
