package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a literal into a Value.
//
//   - null, true, false
//   - integers (e.g. 42, -7) become Int
//   - anything else strconv.ParseFloat accepts (e.g. 1.5, 1e3, NaN) becomes Float
//   - double quoted or back quoted strings (Go syntax) become String
//
// Bare words are rejected so that a typo never silently turns into a string.
func Parse(literal string) (Value, error) {
	s := strings.TrimSpace(literal)
	if s == "" {
		return Value{}, fmt.Errorf("empty literal")
	}

	switch s {
	case "null":
		return Null(), nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}

	if s[0] == '"' || s[0] == '`' {
		str, err := strconv.Unquote(s)
		if err != nil {
			return Value{}, fmt.Errorf("invalid string literal %s: %w", s, err)
		}
		return String(str), nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), nil
	}

	return Value{}, fmt.Errorf("invalid literal %q (strings must be quoted)", s)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(literal string) Value {
	v, err := Parse(literal)
	if err != nil {
		panic(err)
	}
	return v
}
