package domain

import (
	"strconv"
	"strings"
)

// ValueKind discriminates a coerced slot value.
type ValueKind int

const (
	// ValueRaw marks input that failed coercion and was kept verbatim.
	ValueRaw ValueKind = iota
	ValueString
	ValueNumber
	ValueBool
)

// SlotValue is the discriminated result of the type-coercion step. Consumers
// switch on Kind instead of duck-typing an any; Interface returns the
// JSON-safe scalar that is stored into session data.
type SlotValue struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Raw  string
}

// Interface returns the scalar representation for persistence.
func (v SlotValue) Interface() any {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return v.Num
	case ValueBool:
		return v.Bool
	default:
		return v.Raw
	}
}

// Slot value types a scheme may declare.
const (
	SlotTypeString  = "string"
	SlotTypeFloat   = "float"
	SlotTypeInt     = "int"
	SlotTypeBoolean = "boolean"
)

// Affirmative and negative tokens across the channels' supported languages.
// DTMF 1/2 map onto yes/no on keypad-only calls.
var (
	yesTokens = []string{"yes", "y", "haan", "han", "ha", "aam", "ஆம்", "ஆமாம்", "हाँ", "हां", "1"}
	noTokens  = []string{"no", "n", "nahi", "nahin", "illai", "இல்லை", "नहीं", "2"}
)

// CoerceSlot converts raw user input per the slot's declared type. Coercion
// is lenient: on failure the raw value is kept unchanged (ValueRaw) rather
// than failing the turn.
func CoerceSlot(slotType, raw string) SlotValue {
	trimmed := strings.TrimSpace(raw)

	switch slotType {
	case SlotTypeFloat:
		if f, err := strconv.ParseFloat(stripThousands(trimmed), 64); err == nil {
			return SlotValue{Kind: ValueNumber, Num: f}
		}
	case SlotTypeInt:
		if n, err := strconv.ParseInt(stripThousands(trimmed), 10, 64); err == nil {
			return SlotValue{Kind: ValueNumber, Num: float64(n)}
		}
	case SlotTypeBoolean:
		lower := strings.ToLower(trimmed)
		for _, tok := range yesTokens {
			if lower == tok {
				return SlotValue{Kind: ValueBool, Bool: true}
			}
		}
		for _, tok := range noTokens {
			if lower == tok {
				return SlotValue{Kind: ValueBool, Bool: false}
			}
		}
	case SlotTypeString, "":
		return SlotValue{Kind: ValueString, Str: trimmed}
	}

	return SlotValue{Kind: ValueRaw, Raw: trimmed}
}

// stripThousands removes separators so "1,200" parses as 1200.
func stripThousands(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// IsAffirmative reports whether input is a yes-token in any supported
// language.
func IsAffirmative(input string) bool {
	v := CoerceSlot(SlotTypeBoolean, input)
	return v.Kind == ValueBool && v.Bool
}
