package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceSlot(t *testing.T) {
	tests := []struct {
		name     string
		slotType string
		raw      string
		want     any
		kind     ValueKind
	}{
		{"float plain", SlotTypeFloat, "1.5", 1.5, ValueNumber},
		{"float thousands separator", SlotTypeFloat, "1,200", 1200.0, ValueNumber},
		{"float with spaces", SlotTypeFloat, " 2,500.75 ", 2500.75, ValueNumber},
		{"int", SlotTypeInt, "42", 42.0, ValueNumber},
		{"int thousands separator", SlotTypeInt, "12,000", 12000.0, ValueNumber},
		{"boolean yes", SlotTypeBoolean, "yes", true, ValueBool},
		{"boolean hindi", SlotTypeBoolean, "haan", true, ValueBool},
		{"boolean tamil", SlotTypeBoolean, "ஆம்", true, ValueBool},
		{"boolean dtmf digit", SlotTypeBoolean, "1", true, ValueBool},
		{"boolean no", SlotTypeBoolean, "no", false, ValueBool},
		{"boolean case insensitive", SlotTypeBoolean, "YES", true, ValueBool},
		{"string passthrough", SlotTypeString, "Farmer", "Farmer", ValueString},
		{"empty type defaults to string", "", "Chennai", "Chennai", ValueString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CoerceSlot(tt.slotType, tt.raw)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.want, v.Interface())
		})
	}
}

func TestCoerceSlot_LenientFallback(t *testing.T) {
	// Failures keep the raw value instead of failing the turn.
	v := CoerceSlot(SlotTypeFloat, "about two acres")
	assert.Equal(t, ValueRaw, v.Kind)
	assert.Equal(t, "about two acres", v.Interface())

	v = CoerceSlot(SlotTypeBoolean, "maybe")
	assert.Equal(t, ValueRaw, v.Kind)
	assert.Equal(t, "maybe", v.Interface())
}

func TestSessionClone(t *testing.T) {
	s := NewSession("abc")
	s.Data["occupation"] = "Farmer"

	c := s.Clone()
	c.Data["occupation"] = "Laborer"
	c.CurrentState = StateCollectingSlots

	assert.Equal(t, "Farmer", s.Data["occupation"])
	assert.Equal(t, StateStart, s.CurrentState)
}

func TestPublicDataHidesInternalKeys(t *testing.T) {
	s := NewSession("abc")
	s.Data["occupation"] = "Farmer"
	s.Data[KeyScheme] = "pm_kisan"
	s.Data[KeyPendingSlots] = []string{"land_acres"}

	public := s.PublicData()
	assert.Equal(t, map[string]any{"occupation": "Farmer"}, public)
}
