package solver

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

var (
	// ErrUnsafeExpression is returned when an expression holds characters
	// outside digits, '.', the four operators, parentheses and whitespace.
	ErrUnsafeExpression = errors.New("unsafe expression")

	// ErrMalformedExpression is returned for expressions that pass the
	// character check but do not parse.
	ErrMalformedExpression = errors.New("malformed expression")
)

const maxNesting = 64

// Evaluate computes an arithmetic expression of numbers, + - * /, unary
// signs and parentheses with the usual precedence.
//
// Input is checked against the character whitelist before parsing and is
// never executed. Division follows IEEE-754: x/0 is ±Inf and 0/0 is NaN.
func Evaluate(expr string) (float64, error) {
	for _, r := range expr {
		if !allowedRune(r) {
			return 0, fmt.Errorf("%w: %q", ErrUnsafeExpression, r)
		}
	}

	p := &parser{src: expr}
	p.skipSpace()
	if p.done() {
		return 0, fmt.Errorf("%w: empty", ErrMalformedExpression)
	}
	v, err := p.expr(0)
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.done() {
		return 0, p.errorf("unexpected %q", p.src[p.pos])
	}
	return v, nil
}

func allowedRune(r rune) bool {
	switch r {
	case '.', '+', '-', '*', '/', '(', ')':
		return true
	}
	return isDigit(r) || unicode.IsSpace(r)
}

// parser is a recursive-descent evaluator over a whitelisted expression.
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = ("+" | "-") unary | primary
//	primary = number | "(" expr ")"
type parser struct {
	src string
	pos int
}

func (p *parser) done() bool { return p.pos >= len(p.src) }

func (p *parser) skipSpace() {
	for !p.done() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// peek returns the next non-space byte, or 0 at the end.
func (p *parser) peek() byte {
	p.skipSpace()
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at offset %d", ErrMalformedExpression, fmt.Sprintf(format, args...), p.pos)
}

func (p *parser) expr(depth int) (float64, error) {
	v, err := p.term(depth)
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.term(depth)
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.term(depth)
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) term(depth int) (float64, error) {
	v, err := p.unary(depth)
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.unary(depth)
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.unary(depth)
			if err != nil {
				return 0, err
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) unary(depth int) (float64, error) {
	if depth > maxNesting {
		return 0, p.errorf("nesting deeper than %d", maxNesting)
	}
	switch p.peek() {
	case '+':
		p.pos++
		return p.unary(depth + 1)
	case '-':
		p.pos++
		v, err := p.unary(depth + 1)
		return -v, err
	}
	return p.primary(depth)
}

func (p *parser) primary(depth int) (float64, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		v, err := p.expr(depth + 1)
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, p.errorf("missing ')'")
		}
		p.pos++
		return v, nil
	case isDigit(rune(c)) || c == '.':
		return p.number()
	case c == 0:
		return 0, p.errorf("unexpected end of expression")
	default:
		return 0, p.errorf("unexpected %q", c)
	}
}

// number reads digits with at most one decimal point ("3", "3.5", ".5", "3.").
func (p *parser) number() (float64, error) {
	start := p.pos
	digits, dots := 0, 0
	for !p.done() {
		c := p.src[p.pos]
		if c == '.' {
			dots++
		} else if isDigit(rune(c)) {
			digits++
		} else {
			break
		}
		p.pos++
	}
	if digits == 0 || dots > 1 {
		return 0, fmt.Errorf("%w: bad number %q", ErrMalformedExpression, p.src[start:p.pos])
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %v", ErrMalformedExpression, err)
	}
	return v, nil
}
