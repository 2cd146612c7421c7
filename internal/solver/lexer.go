package solver

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokWord
	tokOp    // + - * / = ( )
	tokOther // punctuation and anything else
)

// token is a lexeme of the input with its byte span in the source.
type token struct {
	kind tokenKind
	text string
	pos  int
	end  int
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) isOp(ops string) bool {
	return t.kind == tokOp && strings.Contains(ops, t.text)
}

// adjacent reports whether b starts exactly where a ends.
func adjacent(a, b token) bool {
	return a.end == b.pos
}

// lex splits s into numbers, words, operators and other runes. Whitespace
// separates tokens and is dropped. The typographic operators ×, ÷ and − are
// read as *, / and -.
func lex(s string) []token {
	tokens := make([]token, 0, len(s)/2)
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isDigit(r) || (r == '.' && i+1 < len(s) && isDigit(rune(s[i+1]))):
			j := scanNumber(s, i)
			tokens = append(tokens, token{kind: tokNumber, text: s[i:j], pos: i, end: j})
			i = j
		case unicode.IsLetter(r):
			j := i + size
			for j < len(s) {
				r2, size2 := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsLetter(r2) {
					break
				}
				j += size2
			}
			tokens = append(tokens, token{kind: tokWord, text: s[i:j], pos: i, end: j})
			i = j
		default:
			tokens = append(tokens, symbolToken(r, i, i+size))
			i += size
		}
	}
	return tokens
}

func symbolToken(r rune, pos, end int) token {
	switch r {
	case '+', '-', '*', '/', '=', '(', ')':
		return token{kind: tokOp, text: string(r), pos: pos, end: end}
	case '×':
		return token{kind: tokOp, text: "*", pos: pos, end: end}
	case '÷':
		return token{kind: tokOp, text: "/", pos: pos, end: end}
	case '−':
		return token{kind: tokOp, text: "-", pos: pos, end: end}
	}
	return token{kind: tokOther, text: string(r), pos: pos, end: end}
}

// scanNumber returns the end of the number starting at i: digits with an
// optional fractional part, or a leading dot followed by digits.
func scanNumber(s string, i int) int {
	j := i
	for j < len(s) && isDigit(rune(s[j])) {
		j++
	}
	if j < len(s) && s[j] == '.' && j+1 < len(s) && isDigit(rune(s[j+1])) {
		j++
		for j < len(s) && isDigit(rune(s[j])) {
			j++
		}
	}
	return j
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// render joins token texts with single spaces.
func render(tokens []token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}
