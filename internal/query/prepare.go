// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query validates and rewrites the free-text boolean queries sent
// to the study search endpoint.
//
// Normalize wraps bare operands of AND/OR and the target of NOT in
// parentheses so the backend sees an unambiguous grouping. It reproduces a
// single left-to-right, non-overlapping regular-expression pass: in a chain
// such as "a OR b OR c" only the first pair is wrapped. Parse offers a
// full grammar for diagnostics.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrIncompleteQuery is wrapped by every validation failure.
var ErrIncompleteQuery = errors.New("incomplete query (operator at end, unmatched quotes or parentheses)")

// Validation failures. Each wraps ErrIncompleteQuery.
var (
	ErrEmptyQuery       = fmt.Errorf("%w: empty", ErrIncompleteQuery)
	ErrTrailingOperator = fmt.Errorf("%w: ends with an operator", ErrIncompleteQuery)
	ErrUnbalancedParens = fmt.Errorf("%w: unbalanced parentheses", ErrIncompleteQuery)
	ErrUnmatchedQuote   = fmt.Errorf("%w: unmatched quote", ErrIncompleteQuery)
)

// spaceClass is the whitespace set of browser regular expressions: ASCII
// spaces plus \v, every Zs rune, the line and paragraph separators and the
// byte order mark.
const spaceClass = `[\t\n\v\f\r \p{Zs}\x{2028}\x{2029}\x{FEFF}]`

var trailingOperatorRe = regexp.MustCompile(`(?i)(?:^|` + spaceClass + `)(AND|OR|NOT)` + spaceClass + `*$`)

// Validate reports why q is not complete enough to send, or nil.
func Validate(q string) error {
	s := trimSpace(q)
	if s == "" {
		return ErrEmptyQuery
	}
	if trailingOperatorRe.MatchString(s) {
		return ErrTrailingOperator
	}

	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return ErrUnbalancedParens
			}
		}
	}
	if depth != 0 {
		return ErrUnbalancedParens
	}

	if strings.Count(s, `"`)%2 == 1 {
		return ErrUnmatchedQuote
	}
	return nil
}

// IsRunnable reports whether q passes Validate.
func IsRunnable(q string) bool {
	return Validate(q) == nil
}

// Prepare validates q and returns its normalized form.
func Prepare(q string) (string, error) {
	if err := Validate(q); err != nil {
		return "", err
	}
	return Normalize(q), nil
}

var whitespaceRe = regexp.MustCompile(spaceClass + `+`)

// Normalize collapses whitespace, wraps the operands of AND/OR pairs, and
// wraps the target of NOT. Operators are emitted upper-case. Terms already
// inside parentheses or quotes are left alone, so Normalize is idempotent
// on its own output for simple queries.
func Normalize(q string) string {
	s := trimSpace(q)
	if s == "" {
		return s
	}
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = replaceEach(s, matchBinary)
	s = replaceEach(s, matchNot)
	return s
}

// matcher tries to match at byte offset p of s. On success it returns the
// end of the consumed text and its replacement.
type matcher func(s string, p int) (end int, repl string, ok bool)

// replaceEach scans s left to right and replaces every non-overlapping
// match, resuming the search at the end of the previous match.
func replaceEach(s string, m matcher) string {
	var b strings.Builder
	last := 0
	for p := 0; p < len(s); {
		end, repl, ok := m(s, p)
		if !ok {
			_, w := utf8.DecodeRuneInString(s[p:])
			p += w
			continue
		}
		b.WriteString(s[last:p])
		b.WriteString(repl)
		last, p = end, end
	}
	b.WriteString(s[last:])
	return b.String()
}

// prefixes returns the candidate (prefix, rest) splits at p for the
// (^|[\s(]) group, in the order a backtracking engine tries them.
func prefixes(s string, p int) []int {
	var out []int
	if p == 0 {
		out = append(out, 0)
	}
	if r, w := utf8.DecodeRuneInString(s[p:]); w > 0 && (isSpace(r) || r == '(') {
		out = append(out, w)
	}
	return out
}

// matchBinary matches (^|[\s(])TERM\s+(OR|AND)\s+TERM(?=[\s)]|$).
func matchBinary(s string, p int) (int, string, bool) {
	for _, n := range prefixes(s, p) {
		i := p + n
		a, i := scanTerm(s, i)
		if !isOperand(a) {
			continue
		}
		i, ok := scanSpaces(s, i)
		if !ok {
			continue
		}
		op, i := scanKeyword(s, i, "OR", "AND")
		if op == "" {
			continue
		}
		i, ok = scanSpaces(s, i)
		if !ok {
			continue
		}
		b, i := scanTerm(s, i)
		if !isOperand(b) || !atBoundary(s, i) {
			continue
		}
		return i, s[p:p+n] + "(" + a + ") " + op + " (" + b + ")", true
	}
	return 0, "", false
}

// matchNot matches (^|[\s(])NOT\s+TERM(?=[\s)]|$).
func matchNot(s string, p int) (int, string, bool) {
	for _, n := range prefixes(s, p) {
		i := p + n
		op, i := scanKeyword(s, i, "NOT")
		if op == "" {
			continue
		}
		i, ok := scanSpaces(s, i)
		if !ok {
			continue
		}
		t, i := scanTerm(s, i)
		if !isOperand(t) || !atBoundary(s, i) {
			continue
		}
		return i, s[p:p+n] + "NOT (" + t + ")", true
	}
	return 0, "", false
}

// scanTerm consumes the longest run of [^\s()"'] starting at i. A shorter
// run can never satisfy what follows a term, so no backtracking is needed.
func scanTerm(s string, i int) (string, int) {
	j := i
	for j < len(s) {
		r, w := utf8.DecodeRuneInString(s[j:])
		if !isTermRune(r) {
			break
		}
		j += w
	}
	return s[i:j], j
}

func scanSpaces(s string, i int) (int, bool) {
	j := i
	for j < len(s) {
		r, w := utf8.DecodeRuneInString(s[j:])
		if !isSpace(r) {
			break
		}
		j += w
	}
	return j, j > i
}

// scanKeyword matches one of words case-insensitively at i and returns it
// upper-cased.
func scanKeyword(s string, i int, words ...string) (string, int) {
	for _, w := range words {
		if len(s)-i >= len(w) && strings.EqualFold(s[i:i+len(w)], w) {
			return w, i + len(w)
		}
	}
	return "", i
}

// isOperand rejects empty runs and the operator keywords themselves, so
// "a AND NOT b" wraps the NOT target instead of treating NOT as a term.
func isOperand(t string) bool {
	if t == "" {
		return false
	}
	switch strings.ToUpper(t) {
	case "AND", "OR", "NOT":
		return false
	}
	return true
}

func atBoundary(s string, i int) bool {
	if i == len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isSpace(r) || r == ')'
}

func isTermRune(r rune) bool {
	return !isSpace(r) && r != '(' && r != ')' && r != '"' && r != '\''
}

// isSpace matches spaceClass. Unlike unicode.IsSpace it excludes U+0085
// and includes U+FEFF.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}
