package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseOptionalFloat coerces a loosely typed upstream value to a float.
// Numbers pass through, numeric strings are parsed, everything else
// (nil, empty or non-numeric strings, NaN, bools) yields nil.
func ParseOptionalFloat(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	case *float64:
		if x == nil {
			return nil
		}
		f = *x
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParseOptionalInt coerces like ParseOptionalFloat and truncates, so "4.0" becomes 4.
func ParseOptionalInt(v any) *int {
	f := ParseOptionalFloat(v)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

// ParseOptionalString returns a trimmed non-empty string, or nil.
// Numbers are formatted so identifiers that arrive as JSON numbers survive.
func ParseOptionalString(v any) *string {
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case json.Number:
		s = x.String()
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

// ParseLooseNumber pulls a number out of free text such as "$25,000" or "under 30k miles".
// Only digits, '.' and '-' are kept, which matches how extraction collaborators
// hand numbers back.
func ParseLooseNumber(v any) *float64 {
	s, ok := v.(string)
	if !ok {
		return ParseOptionalFloat(v)
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return ParseOptionalFloat(b.String())
}
