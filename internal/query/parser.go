// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnexpectedToken is returned by Parse when an operator or closing
// parenthesis appears where an operand is expected.
var ErrUnexpectedToken = errors.New("unexpected token")

// ParseError locates a Parse failure in the input.
type ParseError struct {
	Pos int // byte offset
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Pos)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Op is a binary boolean operator.
type Op string

const (
	OpAnd Op = "AND"
	OpOr  Op = "OR"
)

// Expr is a node of a parsed boolean query. String serializes the node
// with every operand parenthesized.
type Expr interface {
	String() string
	expr()
}

// Term is a bare search term.
type Term struct{ Text string }

// Phrase is a double-quoted phrase; Text excludes the quotes.
type Phrase struct{ Text string }

// Not negates X.
type Not struct{ X Expr }

// Binary joins X and Y with Op.
type Binary struct {
	Op   Op
	X, Y Expr
}

func (Term) expr()   {}
func (Phrase) expr() {}
func (Not) expr()    {}
func (Binary) expr() {}

func (t Term) String() string   { return t.Text }
func (p Phrase) String() string { return `"` + p.Text + `"` }
func (n Not) String() string    { return "NOT (" + n.X.String() + ")" }
func (b Binary) String() string {
	return "(" + b.X.String() + ") " + string(b.Op) + " (" + b.Y.String() + ")"
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokTerm
	tokPhrase
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// tokenize splits q into terms, phrases, operators, and parentheses.
func tokenize(q string) ([]token, error) {
	var toks []token
	for i := 0; i < len(q); {
		r, size := utf8.DecodeRuneInString(q[i:])
		switch {
		case isSpace(r):
			i += size
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '"':
			end := strings.IndexByte(q[i+1:], '"')
			if end < 0 {
				return nil, &ParseError{Pos: i, Err: ErrUnmatchedQuote}
			}
			toks = append(toks, token{kind: tokPhrase, text: q[i+1 : i+1+end], pos: i})
			i += end + 2
		default:
			start := i
			for i < len(q) {
				r, size := utf8.DecodeRuneInString(q[i:])
				if isSpace(r) || r == '(' || r == ')' || r == '"' {
					break
				}
				i += size
			}
			word := q[start:i]
			kind := tokTerm
			switch strings.ToUpper(word) {
			case "AND":
				kind = tokAnd
			case "OR":
				kind = tokOr
			case "NOT":
				kind = tokNot
			}
			toks = append(toks, token{kind: kind, text: word, pos: start})
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
	end  int
}

// Parse parses q with the grammar
//
//	or    := and ("OR" and)*
//	and   := unary (["AND"] unary)*
//	unary := "NOT" unary | primary
//	primary := TERM | PHRASE | "(" or ")"
//
// where adjacent operands are joined by an implicit AND. Operators are
// case-insensitive.
func Parse(q string) (Expr, error) {
	toks, err := tokenize(q)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, &ParseError{Pos: 0, Err: ErrEmptyQuery}
	}
	p := &parser{toks: toks, end: len(q)}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		if t.kind == tokRParen {
			return nil, &ParseError{Pos: t.pos, Err: ErrUnbalancedParens}
		}
		return nil, &ParseError{Pos: t.pos, Err: ErrUnexpectedToken}
	}
	return e, nil
}

func (p *parser) peek() token {
	if p.pos >= len(p.toks) {
		return token{kind: tokEOF, pos: p.end}
	}
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseOr() (Expr, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		x = Binary{Op: OpOr, X: x, Y: y}
	}
	return x, nil
}

func (p *parser) parseAnd() (Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokAnd:
			p.next()
		case tokTerm, tokPhrase, tokNot, tokLParen:
		default:
			return x, nil
		}
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = Binary{Op: OpAnd, X: x, Y: y}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokTerm:
		return Term{Text: t.text}, nil
	case tokPhrase:
		return Phrase{Text: t.text}, nil
	case tokLParen:
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &ParseError{Pos: t.pos, Err: ErrUnbalancedParens}
		}
		return x, nil
	case tokEOF:
		return nil, &ParseError{Pos: t.pos, Err: ErrTrailingOperator}
	default:
		return nil, &ParseError{Pos: t.pos, Err: ErrUnexpectedToken}
	}
}
