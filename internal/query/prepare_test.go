// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  error
	}{
		{"simple term", "amygdala", nil},
		{"binary", "pain AND fear", nil},
		{"grouped", "(pain OR fear) AND NOT memory", nil},
		{"quoted phrase", `"working memory" AND pain`, nil},
		{"empty", "", ErrEmptyQuery},
		{"whitespace only", "   \t ", ErrEmptyQuery},
		{"trailing AND", "pain AND", ErrTrailingOperator},
		{"trailing or lower-case", "pain or  ", ErrTrailingOperator},
		{"trailing NOT mixed case", "pain AND Not", ErrTrailingOperator},
		{"bare operator", "OR", ErrTrailingOperator},
		{"operator suffix inside word is fine", "pain ANDROID", nil},
		{"word ending in or is fine", "motor", nil},
		{"unclosed paren", "(pain AND fear", ErrUnbalancedParens},
		{"nested unclosed", "((pain) AND fear", ErrUnbalancedParens},
		{"excess close paren", "pain) AND (fear", ErrUnbalancedParens},
		{"trailing close paren", "(pain))", ErrUnbalancedParens},
		{"odd quotes", `"working memory AND pain`, ErrUnmatchedQuote},
		{"three quotes", `"a" "b`, ErrUnmatchedQuote},
		{"trailing operator after no-break space", "pain\u00a0AND", ErrTrailingOperator},
		{"trailing operator before line separator", "pain OR\u2028", ErrTrailingOperator},
		{"byte order mark only", "\ufeff", ErrEmptyQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.query)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.True(t, IsRunnable(tt.query))
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrIncompleteQuery)
			assert.False(t, IsRunnable(tt.query))
		})
	}
}

func TestIsRunnableTrailingOperators(t *testing.T) {
	for _, op := range []string{"AND", "OR", "NOT", "and", "or", "not", "AnD"} {
		for _, suffix := range []string{"", " ", "\t", "   "} {
			q := "pain " + op + suffix
			assert.False(t, IsRunnable(q), "%q should not be runnable", q)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"empty", "", ""},
		{"single term", "pain", "pain"},
		{"or pair", "a OR b", "(a) OR (b)"},
		{"and pair lower-case", "a and b", "(a) AND (b)"},
		{"not", "NOT a", "NOT (a)"},
		{"not lower-case", "not a", "NOT (a)"},
		{"collapses whitespace", "  a   OR \t b  ", "(a) OR (b)"},
		{"chain wraps first pair only", "a OR b OR c", "(a) OR (b) OR c"},
		{"second pair after operand", "a OR b AND c OR d", "(a) OR (b) AND (c) OR (d)"},
		{"inside parens", "(a OR b)", "((a) OR (b))"},
		{"not then pair", "NOT a OR b", "NOT (a) OR (b)"},
		{"pair then not", "a AND NOT b", "a AND NOT (b)"},
		{"quoted phrase untouched", `"working memory" OR pain`, `"working memory" OR pain`},
		{"apostrophe blocks term", "parkinson's OR pain", "parkinson's OR pain"},
		{"word containing operator", "ANDES OR pain", "(ANDES) OR (pain)"},
		{"operator prefix is not an operator", "a ORB b", "a ORB b"},
		{"term before open paren not wrapped", "a OR b(c)", "a OR b(c)"},
		{"hyphenated terms", "long-term OR short-term", "(long-term) OR (short-term)"},
		{"nothing wraps already wrapped", "(a) OR (b)", "(a) OR (b)"},
		{"not before group untouched", "NOT (a OR b)", "NOT ((a) OR (b))"},
		{"no-break spaces", "pain\u00a0OR\u00a0fear", "(pain) OR (fear)"},
		{"ideographic space and bom", "\ufeffNOT\u3000pain", "NOT (pain)"},
		{"non-ascii terms", "émotion OR peur", "(émotion) OR (peur)"},
		{"next line is not a space", "a\u0085OR b", "a\u0085OR b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.query))
		})
	}
}

func TestNormalizeIdempotentOnWrapped(t *testing.T) {
	for _, q := range []string{"(a) OR (b)", "NOT (a)", "((a) AND (b)) OR (c)"} {
		once := Normalize(q)
		assert.Equal(t, q, once)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestPrepare(t *testing.T) {
	got, err := Prepare("  pain   or fear ")
	require.NoError(t, err)
	assert.Equal(t, "(pain) OR (fear)", got)

	_, err = Prepare("pain OR")
	assert.ErrorIs(t, err, ErrTrailingOperator)
}
