package solver

import (
	"fmt"
	"math"
	"strconv"
)

// operand is a signed number, possibly a fraction, as written in the input.
type operand struct {
	raw   string
	value float64
}

// solveArithmetic finds the first "operand op operand" in tokens and
// applies op to the two operands. Operands are numbers with an optional
// sign glued to them and an optional "/ d" fraction part; a fraction is
// tried before the plain number.
func solveArithmetic(tokens []token) (Result, bool) {
	for i := range tokens {
		for _, a := range operandsAt(tokens, i) {
			j := a.next
			if j >= len(tokens) || !tokens[j].isOp("+-*/") {
				continue
			}
			op := tokens[j].text
			for _, b := range operandsAt(tokens, j+1) {
				res := apply(a.value, op, b.value)
				return handled(
					formatNumber(res),
					fmt.Sprintf("Parsed operands: %s => %s, %s => %s",
						a.raw, formatNumber(a.value), b.raw, formatNumber(b.value)),
					fmt.Sprintf("Operation: %s %s %s = %s",
						formatNumber(a.value), op, formatNumber(b.value), formatNumber(res)),
				), true
			}
		}
	}
	return Result{}, false
}

type operandMatch struct {
	operand
	next int
}

// operandsAt returns the operand readings starting at tokens[i], longest
// first.
func operandsAt(tokens []token, i int) []operandMatch {
	if i >= len(tokens) {
		return nil
	}

	sign, prefix := 1.0, ""
	start := i
	if tokens[i].isOp("+-") && i+1 < len(tokens) && tokens[i+1].kind == tokNumber && adjacent(tokens[i], tokens[i+1]) {
		if tokens[i].text == "-" {
			sign, prefix = -1, "-"
		} else {
			prefix = "+"
		}
		start = i + 1
	}
	if tokens[start].kind != tokNumber {
		return nil
	}

	n, err := strconv.ParseFloat(tokens[start].text, 64)
	if err != nil {
		return nil
	}

	matches := make([]operandMatch, 0, 2)
	if start+2 < len(tokens) && tokens[start+1].is(tokOp, "/") && tokens[start+2].kind == tokNumber && isInteger(tokens[start+2].text) {
		d, err := strconv.ParseFloat(tokens[start+2].text, 64)
		if err == nil {
			matches = append(matches, operandMatch{
				operand: operand{
					raw:   prefix + tokens[start].text + "/" + tokens[start+2].text,
					value: sign * n / d,
				},
				next: start + 3,
			})
		}
	}
	matches = append(matches, operandMatch{
		operand: operand{raw: prefix + tokens[start].text, value: sign * n},
		next:    start + 1,
	})
	return matches
}

func apply(a float64, op string, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		if b == 0 {
			return math.Inf(1)
		}
		return a / b
	}
	return math.NaN()
}

func isInteger(s string) bool {
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return s != ""
}
