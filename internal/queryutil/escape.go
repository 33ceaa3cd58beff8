// Package queryutil holds small helpers for building engine query strings.
package queryutil

import (
	"strings"
)

// Escape backslash-escapes the characters the query parser treats as
// operators, plus quotes and whitespace, so a literal value can be embedded
// in a query expression.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\', '+', '-', '!', '(', ')', ':', '^', '[', ']', '"', '{', '}', '~', '*', '?', '|', '&', ';', '/', ' ', '\t':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsRangeExpression reports whether the value is already a range expression
// such as "[10 TO 20]" and must not be escaped.
func IsRangeExpression(s string) bool {
	return strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}

// IsExactMatch reports whether a rule query uses the exact-match syntax,
// which wraps the query text in brackets.
func IsExactMatch(q string) bool {
	return len(q) >= 2 && strings.HasPrefix(q, "[") && strings.HasSuffix(q, "]")
}

// TrimExactMatch strips the exact-match brackets.
func TrimExactMatch(q string) string {
	return q[1 : len(q)-1]
}
