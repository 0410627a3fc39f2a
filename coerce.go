package toast

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Kind identifies which field of a Value is set.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	default:
		return "string"
	}
}

// Value is the coerced form of a single attribute.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
}

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Number returns a numeric Value.
func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// String returns a string Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Interface returns the value as a bool, float64 or string.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	default:
		return v.Str
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	default:
		return v.Str
	}
}

// MarshalJSON encodes the value as a plain JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber && (math.IsInf(v.Number, 0) || math.IsNaN(v.Number)) {
		return json.Marshal(v.String())
	}
	return json.Marshal(v.Interface())
}

// Attributes maps attribute names to their coerced values.
type Attributes map[string]Value

// Coerce converts a raw attribute string to a Value.
//
// "true" and "false" become booleans. Anything whose trimmed form is a
// non-empty number accepted by strconv.ParseFloat becomes a number, except
// NaN and infinity spellings which stay strings. Literals too large for a
// float64 become ±Inf. Everything else is returned unchanged.
func Coerce(raw string) Value {
	switch raw {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || isInfSpelling(trimmed) {
		return String(raw)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return String(raw)
	}
	if math.IsNaN(f) {
		return String(raw)
	}
	// Out of range literals such as 1e400 overflow to ±Inf.
	return Number(f)
}

// isInfSpelling reports whether s is one of the infinity words ParseFloat
// accepts, with an optional sign.
func isInfSpelling(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return strings.EqualFold(s, "inf") || strings.EqualFold(s, "infinity")
}

// CoerceAttributes coerces every attribute of an element. Later duplicates of
// a name are ignored, matching how parsers keep the first occurrence.
func CoerceAttributes(attrs []html.Attribute) Attributes {
	out := make(Attributes, len(attrs))
	for _, a := range attrs {
		if a.Namespace != "" {
			continue
		}
		if _, seen := out[a.Key]; seen {
			continue
		}
		out[a.Key] = Coerce(a.Val)
	}
	return out
}
