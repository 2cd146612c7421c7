// Package stream merges OCR text and detected glyphs into one token
// sequence for the solver.
package stream

import (
	"strings"

	"github.com/ironsheep/math-tools-mcp/internal/detection"
)

// TokenKind tells text tokens from glyph symbols.
type TokenKind int

const (
	TextToken TokenKind = iota
	SymbolToken
)

func (k TokenKind) String() string {
	if k == SymbolToken {
		return "symbol"
	}
	return "text"
}

// MarshalText encodes the kind by name so JSON output reads "text"/"symbol".
func (k TokenKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Token is one element of the merged stream.
type Token struct {
	Kind TokenKind `json:"kind"`
	Text string    `json:"text"`
}

// SymbolFor returns the stream text for a glyph label.
//
// Operators keep their own symbol, arrows become "->", circles "(circle)",
// and every other label is bracketed, e.g. "[triangle]".
func SymbolFor(label detection.Label) string {
	switch label {
	case detection.LabelPlus, detection.LabelMinus, detection.LabelEquals,
		detection.LabelTimes, detection.LabelDivide:
		return string(label)
	case detection.LabelArrow:
		return "->"
	case detection.LabelCircle:
		return "(circle)"
	default:
		return "[" + string(label) + "]"
	}
}

// Merge builds the token stream: every whitespace-separated word of every
// line in order, then one symbol per glyph in glyph order.
//
// Text always precedes symbols; glyph positions are not interleaved with
// the words they sit between.
func Merge(lines []string, glyphs []detection.Glyph) []Token {
	tokens := make([]Token, 0, len(glyphs)+4*len(lines))
	for _, line := range lines {
		for _, word := range strings.Fields(line) {
			tokens = append(tokens, Token{Kind: TextToken, Text: word})
		}
	}
	for _, g := range glyphs {
		tokens = append(tokens, Token{Kind: SymbolToken, Text: SymbolFor(g.Label)})
	}
	return tokens
}

// Join renders tokens as a single space-separated string.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
