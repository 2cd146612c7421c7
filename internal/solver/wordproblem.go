package solver

import (
	"fmt"
	"strconv"
	"strings"
)

// wordOperation folds the numbers of a word problem into one value.
type wordOperation struct {
	name     string
	keywords []string
	fold     func(nums []float64) float64
}

// Checked in order; the first operation with a keyword in the text wins.
var wordOperations = []wordOperation{
	{
		name:     "Sum",
		keywords: []string{"sum", "add", "adds", "added", "adding", "addition", "plus", "total", "totals"},
		fold:     sum,
	},
	{
		name:     "Difference",
		keywords: []string{"difference", "minus", "less"},
		fold: func(nums []float64) float64 {
			acc := nums[0]
			for _, n := range nums[1:] {
				acc -= n
			}
			return acc
		},
	},
	{
		name:     "Product",
		keywords: []string{"product", "times", "multiply", "multiplied", "multiplying"},
		fold: func(nums []float64) float64 {
			acc := 1.0
			for _, n := range nums {
				acc *= n
			}
			return acc
		},
	},
	{
		name:     "Quotient",
		keywords: []string{"divide", "divided", "divides", "dividing", "quotient"},
		fold: func(nums []float64) float64 {
			acc := nums[0]
			for _, n := range nums[1:] {
				acc /= n
			}
			return acc
		},
	},
}

func sum(nums []float64) float64 {
	acc := 0.0
	for _, n := range nums {
		acc += n
	}
	return acc
}

// solveWordProblem handles natural-language questions. With two or more
// numbers in the text, a keyword picks the operation applied across all of
// them. Failing that, two or more n/d fractions are added up.
func solveWordProblem(tokens []token) (Result, bool) {
	nums := extractNumbers(tokens)
	if len(nums) >= 2 {
		words := make(map[string]bool)
		for _, t := range tokens {
			if t.kind == tokWord {
				words[t.text] = true
			}
		}
		for _, op := range wordOperations {
			if !containsAny(words, op.keywords) {
				continue
			}
			v := op.fold(nums)
			return handled(
				formatNumber(v),
				"Numbers: "+formatNumbers(nums),
				fmt.Sprintf("%s = %s", op.name, formatNumber(v)),
			), true
		}
	}

	fractions, values := extractFractions(tokens)
	if len(fractions) >= 2 {
		total := sum(values)
		return handled(
			formatNumber(total),
			"Fractions: "+strings.Join(fractions, ", "),
			fmt.Sprintf("Sum = %s", formatNumber(total)),
		), true
	}

	return Result{}, false
}

// extractNumbers returns every number in tokens. A minus sign glued to the
// front of a number makes it negative.
func extractNumbers(tokens []token) []float64 {
	nums := make([]float64, 0)
	for i, t := range tokens {
		if t.kind != tokNumber {
			continue
		}
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			continue
		}
		if i > 0 && tokens[i-1].is(tokOp, "-") && adjacent(tokens[i-1], t) {
			v = -v
		}
		nums = append(nums, v)
	}
	return nums
}

// extractFractions returns the integer fractions n/d in tokens, scanning
// left to right without overlap.
func extractFractions(tokens []token) ([]string, []float64) {
	var raw []string
	var values []float64
	for i := 0; i+2 < len(tokens); i++ {
		n, slash, d := tokens[i], tokens[i+1], tokens[i+2]
		if n.kind != tokNumber || !isInteger(n.text) || !slash.is(tokOp, "/") ||
			d.kind != tokNumber || !isInteger(d.text) {
			continue
		}
		nv, _ := strconv.ParseFloat(n.text, 64)
		dv, _ := strconv.ParseFloat(d.text, 64)
		raw = append(raw, n.text+"/"+d.text)
		values = append(values, nv/dv)
		i += 2
	}
	return raw, values
}

func containsAny(words map[string]bool, keywords []string) bool {
	for _, k := range keywords {
		if words[k] {
			return true
		}
	}
	return false
}
