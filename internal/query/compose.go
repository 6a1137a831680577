// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"regexp"
	"strings"
)

var (
	endsOpenRe     = regexp.MustCompile(`(?:` + spaceClass + `|\()$`)
	endsOperatorRe = regexp.MustCompile(`(?i)(AND|OR)` + spaceClass + `+$`)
	operatorRe     = regexp.MustCompile(`(?i)^(AND|OR|NOT)$`)
)

// AppendTerm adds term to the end of current. When current ends in a
// complete operand the term is joined with AND; after an open parenthesis,
// whitespace, or a dangling AND/OR it is appended as is.
func AppendTerm(current, term string) string {
	if trimSpace(current) == "" {
		return term
	}
	if !endsOpenRe.MatchString(current) && !endsOperatorRe.MatchString(current) {
		return current + " AND " + term
	}
	if strings.HasSuffix(current, " ") {
		return current + term
	}
	return current + " " + term
}

// InsertOperator inserts symbol into value at the rune offset caret and
// returns the new value and the caret just after the insertion. The
// operators AND, OR, and NOT are upper-cased and padded with the spaces
// needed to keep them separate from their neighbours; anything else is
// inserted verbatim.
func InsertOperator(value string, caret int, symbol string) (string, int) {
	runes := []rune(value)
	if caret < 0 || caret > len(runes) {
		caret = len(runes)
	}
	before := string(runes[:caret])
	after := string(runes[caret:])

	text := symbol
	if operatorRe.MatchString(symbol) {
		text = strings.ToUpper(symbol)
		if before != "" && !endsWithSpaceOrParen(before) {
			text = " " + text
		}
		if after == "" || !startsWithSpaceOrClose(after) {
			text += " "
		}
	}

	return before + text + after, caret + len([]rune(text))
}

func endsWithSpaceOrParen(s string) bool {
	r := []rune(s)
	last := r[len(r)-1]
	return isSpace(last) || last == '('
}

func startsWithSpaceOrClose(s string) bool {
	r := []rune(s)[0]
	return isSpace(r) || r == ')'
}
