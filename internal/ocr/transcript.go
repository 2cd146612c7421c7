package ocr

import (
	"context"
	"image"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Word is a single recognized word with its location and confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is the engine's certainty for this word (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the word's box in the recognized image.
	Bounds image.Rectangle `json:"bounds"`
}

// Transcript is the text read from an image, one entry per non-empty line.
//
// Confidence is informational only. It is never used to gate downstream
// processing; HasConfidence is false when the engine reported no words.
type Transcript struct {
	Lines         []string `json:"lines"`
	Words         []Word   `json:"words,omitempty"`
	Confidence    float64  `json:"confidence"`
	HasConfidence bool     `json:"has_confidence"`
}

// Text returns the transcript lines joined by newlines.
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	return strings.Join(t.Lines, "\n")
}

// TextRecognizer reads text from an image.
//
// Implementations need not be safe for concurrent use unless documented.
type TextRecognizer interface {
	Recognize(ctx context.Context, img image.Image) (*Transcript, error)
	Close() error
}

// ParseTranscript splits free text into trimmed, non-empty lines. It is used
// for transcripts supplied by the caller instead of an OCR engine.
func ParseTranscript(text string) *Transcript {
	return &Transcript{Lines: splitLines(text)}
}

func splitLines(text string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// averageConfidence returns the mean word confidence, skipping words the
// engine scored below zero (tesseract uses -1 for "no estimate").
func averageConfidence(words []Word) (float64, bool) {
	scores := make([]float64, 0, len(words))
	for _, w := range words {
		if w.Confidence >= 0 {
			scores = append(scores, w.Confidence)
		}
	}
	if len(scores) == 0 {
		return 0, false
	}
	return stat.Mean(scores, nil), true
}
