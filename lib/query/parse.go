package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ValentinKolb/eKV/lib/value"
)

// operators maps every accepted spelling to its operator.
// Longer spellings are matched first by the scanner.
var operators = map[string]Operator{
	"=":  Equals,
	"==": Equals,
	"!=": NotEquals,
	"<>": NotEquals,
	">":  GreaterThan,
	">=": GreaterOrEqual,
	"<":  LessThan,
	"<=": LessOrEqual,
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokQuoted
	tokOp
)

type token struct {
	kind tokenKind
	text string // raw text, quoted tokens keep their quotes
	pos  int
}

func isOpChar(r byte) bool {
	return r == '=' || r == '!' || r == '<' || r == '>'
}

// endsWord reports whether the rune at the start of s terminates a bare word
func endsWord(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r) || isOpChar(s[0]) || s[0] == '"' || s[0] == '`'
}

// tokenize splits expr into words, quoted strings and operators
func tokenize(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		r, size := utf8.DecodeRuneInString(expr[i:])
		switch {
		case unicode.IsSpace(r):
			i += size

		case c == '"' || c == '`':
			start := i
			i++
			for i < len(expr) && expr[i] != c {
				if c == '"' && expr[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(expr) {
				return nil, fmt.Errorf("%w: unterminated string at %d", ErrMalformed, start)
			}
			i++
			tokens = append(tokens, token{kind: tokQuoted, text: expr[start:i], pos: start})

		case isOpChar(c):
			start := i
			if i+1 < len(expr) {
				if _, ok := operators[expr[i:i+2]]; ok {
					i += 2
					tokens = append(tokens, token{kind: tokOp, text: expr[start:i], pos: start})
					continue
				}
			}
			if _, ok := operators[expr[i:i+1]]; !ok {
				return nil, fmt.Errorf("%w: unknown operator %q at %d", ErrMalformed, expr[i:i+1], start)
			}
			i++
			tokens = append(tokens, token{kind: tokOp, text: expr[start:i], pos: start})

		default:
			start := i
			for i < len(expr) && !endsWord(expr[i:]) {
				_, size := utf8.DecodeRuneInString(expr[i:])
				i += size
			}
			tokens = append(tokens, token{kind: tokWord, text: expr[start:i], pos: start})
		}
	}
	return tokens, nil
}

// Parse reads a query in the form
//
//	field op literal [AND field op literal ...]
//
// AND is case-insensitive. Fields are bare words or double quoted strings,
// literals use the syntax of value.Parse (null, true, 42, 1.5, "text").
// Operators are = == != <> > >= < <=. An empty expression is the empty query.
func Parse(expr string) (*Query, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	q := New()
	for i := 0; i < len(tokens); {
		if len(q.Conditions) > 0 {
			if tokens[i].kind != tokWord || !strings.EqualFold(tokens[i].text, "AND") {
				return nil, fmt.Errorf("%w: expected AND at %d, got %q", ErrMalformed, tokens[i].pos, tokens[i].text)
			}
			i++
		}
		if i+3 > len(tokens) {
			return nil, fmt.Errorf("%w: incomplete condition at end of %q", ErrMalformed, expr)
		}

		field, err := parseField(tokens[i])
		if err != nil {
			return nil, err
		}

		opTok := tokens[i+1]
		if opTok.kind != tokOp {
			return nil, fmt.Errorf("%w: expected operator at %d, got %q", ErrMalformed, opTok.pos, opTok.text)
		}

		litTok := tokens[i+2]
		if litTok.kind == tokOp {
			return nil, fmt.Errorf("%w: expected literal at %d, got %q", ErrMalformed, litTok.pos, litTok.text)
		}
		lit, err := value.Parse(litTok.text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		q.Where(field, operators[opTok.text], lit)
		i += 3
	}
	return q, nil
}

func parseField(tok token) (string, error) {
	switch tok.kind {
	case tokWord:
		return tok.text, nil
	case tokQuoted:
		field, err := strconv.Unquote(tok.text)
		if err != nil {
			return "", fmt.Errorf("%w: invalid field %s: %v", ErrMalformed, tok.text, err)
		}
		if field == "" {
			return "", fmt.Errorf("%w: empty field at %d", ErrMalformed, tok.pos)
		}
		return field, nil
	default:
		return "", fmt.Errorf("%w: expected field at %d, got %q", ErrMalformed, tok.pos, tok.text)
	}
}

// formatField quotes field unless Parse would read it back as the same bare word
func formatField(field string) string {
	if field == "" || strings.EqualFold(field, "AND") {
		return strconv.Quote(field)
	}
	if !utf8.ValidString(field) {
		return strconv.Quote(field)
	}
	for i := range field {
		if endsWord(field[i:]) {
			return strconv.Quote(field)
		}
	}
	return field
}
