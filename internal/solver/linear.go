package solver

import (
	"fmt"
	"strconv"
)

// linearForm is coeff*variable + constant.
type linearForm struct {
	coeff    float64
	constant float64
}

// parseLinear reads a sum of terms, each a number, the variable, or a
// number times the variable ("3", "x", "2x", "2*x", "1/2 x"). Signs between
// terms may repeat ("3 + -x"). Anything else fails the parse.
func parseLinear(tokens []token, variable string) (linearForm, bool) {
	var form linearForm
	if len(tokens) == 0 {
		return form, false
	}

	i := 0
	first := true
	for i < len(tokens) {
		sign := 1.0
		signs := 0
		for i < len(tokens) && tokens[i].isOp("+-") {
			if tokens[i].text == "-" {
				sign = -sign
			}
			signs++
			i++
		}
		if signs == 0 && !first {
			return form, false
		}
		first = false

		coeff, isVar, next, ok := parseTerm(tokens, i, variable)
		if !ok {
			return form, false
		}
		if isVar {
			form.coeff += sign * coeff
		} else {
			form.constant += sign * coeff
		}
		i = next
	}
	return form, true
}

// parseTerm reads one term at tokens[i]. It returns the term's numeric
// factor, whether the variable is present, and the index after the term.
func parseTerm(tokens []token, i int, variable string) (float64, bool, int, bool) {
	if i >= len(tokens) {
		return 0, false, i, false
	}
	if tokens[i].is(tokWord, variable) {
		return 1, true, i + 1, true
	}

	value, next, ok := parseNumber(tokens, i, true)
	if !ok {
		return 0, false, i, false
	}
	j := next
	if j < len(tokens) && tokens[j].is(tokOp, "*") {
		j++
	}
	if j < len(tokens) && tokens[j].is(tokWord, variable) {
		return value, true, j + 1, true
	}
	return value, false, next, true
}

// parseNumber reads a number at tokens[i], optionally followed by "/ d"
// when fractions are allowed.
func parseNumber(tokens []token, i int, fraction bool) (float64, int, bool) {
	if i >= len(tokens) || tokens[i].kind != tokNumber {
		return 0, i, false
	}
	v, err := strconv.ParseFloat(tokens[i].text, 64)
	if err != nil {
		return 0, i, false
	}
	if fraction && i+2 < len(tokens) && tokens[i+1].is(tokOp, "/") && tokens[i+2].kind == tokNumber {
		d, err := strconv.ParseFloat(tokens[i+2].text, 64)
		if err == nil {
			return v / d, i + 3, true
		}
	}
	return v, i + 1, true
}

// solveLinear solves left = right for variable. It fails when either side
// is not linear or the variable cancels out.
func solveLinear(left, right []token, variable string) (Result, bool) {
	l, ok := parseLinear(left, variable)
	if !ok {
		return Result{}, false
	}
	r, ok := parseLinear(right, variable)
	if !ok {
		return Result{}, false
	}

	a := l.coeff - r.coeff
	b := r.constant - l.constant
	if a == 0 {
		return Result{}, false
	}
	value := b / a

	return handled(
		fmt.Sprintf("%s = %s", variable, formatNumber(value)),
		fmt.Sprintf("Parsed left: coeff=%s, const=%s", formatNumber(l.coeff), formatNumber(l.constant)),
		fmt.Sprintf("Parsed right: coeff=%s, const=%s", formatNumber(r.coeff), formatNumber(r.constant)),
		fmt.Sprintf("Solve %s*%s = %s -> %s = %s/%s = %s",
			formatNumber(a), variable, formatNumber(b),
			variable, formatNumber(b), formatNumber(a), formatNumber(value)),
	), true
}
