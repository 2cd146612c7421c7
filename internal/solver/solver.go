package solver

import (
	"fmt"
	"strings"
)

// DefaultVariable is the unknown solved for in equations.
const DefaultVariable = "x"

// Solver turns math text into an answer with a step trail. It holds no
// mutable state and is safe for concurrent use.
type Solver struct {
	variable string
}

// Option configures a Solver.
type Option func(*Solver)

// WithVariable sets the unknown solved for in linear equations.
func WithVariable(name string) Option {
	return func(s *Solver) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			s.variable = name
		}
	}
}

// New creates a Solver.
func New(opts ...Option) *Solver {
	s := &Solver{variable: DefaultVariable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Variable returns the unknown this solver solves for.
func (s *Solver) Variable() string { return s.variable }

// Solve applies the solving rules in order and returns the first success:
//
//  1. an equation with exactly one "=", solved as linear in the variable, or
//     with both sides evaluated when the variable is absent; words wrapped
//     around the equation ("solve ... ?") are ignored for the linear solve
//  2. the first "a op b" arithmetic pattern
//  3. a word problem: a keyword operation over all numbers, or a sum of
//     fractions
//
// Input no rule understands yields an unhandled Result. Solve accepts any
// string and does not fail.
func (s *Solver) Solve(text string) Result {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Unhandled()
	}

	raw := lex(text)
	tokens := normalize(raw)

	if res, ok := s.solveEquation(tokens); ok {
		return res
	}
	if res, ok := solveArithmetic(tokens); ok {
		return res
	}
	if res, ok := solveWordProblem(raw); ok {
		return res
	}
	return Unhandled()
}

func (s *Solver) solveEquation(tokens []token) (Result, bool) {
	eq := -1
	for i, t := range tokens {
		if t.is(tokOp, "=") {
			if eq >= 0 {
				return Result{}, false
			}
			eq = i
		}
	}
	if eq < 0 {
		return Result{}, false
	}
	left, right := tokens[:eq], tokens[eq+1:]

	if res, ok := solveLinear(left, right, s.variable); ok {
		return res, true
	}
	// "solve 2x + 3 = 11?" still reads as the equation it wraps
	if l, r := trimWords(left, s.variable, false), trimWords(right, s.variable, true); len(l) != len(left) || len(r) != len(right) {
		if res, ok := solveLinear(l, r, s.variable); ok {
			return res, true
		}
	}

	lv, err := Evaluate(render(left))
	if err != nil {
		return Result{}, false
	}
	rv, err := Evaluate(render(right))
	if err != nil {
		return Result{}, false
	}
	return handled(
		fmt.Sprintf("Left = %s, Right = %s", formatNumber(lv), formatNumber(rv)),
		"Evaluated left: "+formatNumber(lv),
		"Evaluated right: "+formatNumber(rv),
	), true
}

// trimWords drops the run of words other than the variable and punctuation
// at the start of tokens, or at the end when fromEnd is set.
func trimWords(tokens []token, variable string, fromEnd bool) []token {
	skip := func(t token) bool {
		return t.kind == tokOther || (t.kind == tokWord && t.text != variable)
	}
	if fromEnd {
		n := len(tokens)
		for n > 0 && skip(tokens[n-1]) {
			n--
		}
		return tokens[:n]
	}
	i := 0
	for i < len(tokens) && skip(tokens[i]) {
		i++
	}
	return tokens[i:]
}

var defaultSolver = New()

// Solve solves text for the variable x.
func Solve(text string) Result {
	return defaultSolver.Solve(text)
}
