// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	floatPrefixRe = regexp.MustCompile(`^[+-]?(Infinity|\d+(\.\d*)?([eE][+-]?\d+)?|\.\d+([eE][+-]?\d+)?)`)
	intPrefixRe   = regexp.MustCompile(`^[+-]?\d+`)
)

// ParseFloat converts a decoded JSON value to a number the way a score is
// read from the API: numbers as is, anything else through its string form
// with the longest numeric prefix ("0.42abc" is 0.42). ok is false when no
// prefix parses.
func ParseFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case int:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	s := strings.TrimLeftFunc(Stringify(v), unicode.IsSpace)
	m := floatPrefixRe.FindString(s)
	if m == "" {
		return 0, false
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseInt reads a base-10 integer prefix from the string form of v, so
// 2001, "2001", and "2001-05" all give 2001. ok is false for missing,
// null, and non-numeric values. Digits beyond the range of int clamp to
// math.MaxInt or math.MinInt, so such values still order as huge.
func ParseInt(v any) (int, bool) {
	s := strings.TrimLeftFunc(Stringify(v), unicode.IsSpace)
	m := intPrefixRe.FindString(s)
	if m == "" {
		return 0, false
	}
	return atoiClamped(m), true
}

// atoiClamped converts a string already matched by intPrefixRe.
func atoiClamped(m string) int {
	n, err := strconv.Atoi(m)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(m, "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	return n
}

// Stringify renders a decoded JSON value as text: strings verbatim,
// integral numbers without a fraction, arrays comma-joined, null as "null".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case int:
		return strconv.Itoa(x)
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			if e != nil {
				parts[i] = Stringify(e)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// 1e-07 -> 1e-7
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
