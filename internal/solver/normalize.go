package solver

// Word operators rewritten to symbols before matching.
var wordOperators = map[string]string{
	"plus":  "+",
	"minus": "-",
	"times": "*",
}

// Two-word operators: the first word must be followed by "by".
var phraseOperators = map[string]string{
	"multiply":   "*",
	"multiplied": "*",
	"divided":    "/",
}

// normalize rewrites spoken operators to symbols: plus, minus, times,
// multiply by, multiplied by and divided by. An "x" between two numbers
// becomes a multiplication sign when whitespace separates it from at least
// one of them, so "3 x 4" multiplies while "3x4" is left alone.
func normalize(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.kind != tokWord {
			out = append(out, t)
			continue
		}
		if op, ok := wordOperators[t.text]; ok {
			out = append(out, token{kind: tokOp, text: op, pos: t.pos, end: t.end})
			continue
		}
		if op, ok := phraseOperators[t.text]; ok && i+1 < len(tokens) && tokens[i+1].is(tokWord, "by") {
			out = append(out, token{kind: tokOp, text: op, pos: t.pos, end: tokens[i+1].end})
			i++
			continue
		}
		if t.text == "x" && isTimesX(tokens, i) {
			out = append(out, token{kind: tokOp, text: "*", pos: t.pos, end: t.end})
			continue
		}
		out = append(out, t)
	}
	return out
}

// isTimesX reports whether tokens[i] is an "x" written as a multiplication
// sign: a number on both sides, separated from at least one by whitespace.
func isTimesX(tokens []token, i int) bool {
	if i == 0 || i+1 >= len(tokens) {
		return false
	}
	prev, next := tokens[i-1], tokens[i+1]
	if prev.kind != tokNumber || next.kind != tokNumber {
		return false
	}
	return !adjacent(prev, tokens[i]) || !adjacent(tokens[i], next)
}
