package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// createImageWithText renders text and scales it up so the engine can read it.
func createImageWithText(text string, scale int) *image.RGBA {
	width := len(text)*7 + 40
	height := 40

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height*scale; y++ {
		for x := 0; x < width*scale; x++ {
			img.Set(x, y, small.At(x/scale, y/scale))
		}
	}
	return img
}

func newRecognizer(t *testing.T) *TesseractRecognizer {
	t.Helper()
	r, err := NewTesseractRecognizer(TesseractOptions{})
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestTesseractRecognizer_Recognize(t *testing.T) {
	r := newRecognizer(t)

	transcript, err := r.Recognize(context.Background(), createImageWithText("12 + 7", 4))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	text := strings.ReplaceAll(transcript.Text(), " ", "")
	if !strings.Contains(text, "12") || !strings.Contains(text, "7") {
		t.Logf("OCR read %q; engine output varies by version", transcript.Text())
	}
	if transcript.HasConfidence && (transcript.Confidence < 0 || transcript.Confidence > 1) {
		t.Errorf("Confidence = %v, want within [0,1]", transcript.Confidence)
	}
}

func TestTesseractRecognizer_CanceledContext(t *testing.T) {
	r := newRecognizer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Recognize(ctx, createImageWithText("1", 1)); err == nil {
		t.Error("Recognize should fail on a canceled context")
	}
}

func TestTesseractRecognizer_Defaults(t *testing.T) {
	r := newRecognizer(t)

	if r.Language() != "eng" {
		t.Errorf("Language = %q, want eng", r.Language())
	}
	info := r.Info()
	if !info.Available || info.Backend != "gosseract" {
		t.Errorf("Info = %+v", info)
	}

	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if r.Info().Available {
		t.Error("closed recognizer still reports available")
	}
}

func TestParseTranscript(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"single line", "2x + 3 = 11", []string{"2x + 3 = 11"}},
		{"blank lines and padding", "\n  12 + 7 \n\n\tfind x\n", []string{"12 + 7", "find x"}},
		{"windows newlines", "a\r\nb\r\n", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTranscript(tt.text)
			if got.HasConfidence {
				t.Error("caller transcript should carry no confidence")
			}
			if len(got.Lines) != len(tt.want) {
				t.Fatalf("Lines = %q, want %q", got.Lines, tt.want)
			}
			for i := range got.Lines {
				if got.Lines[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got.Lines[i], tt.want[i])
				}
			}
		})
	}
}

func TestTranscript_Text(t *testing.T) {
	var nilTranscript *Transcript
	if nilTranscript.Text() != "" {
		t.Error("nil transcript should have empty text")
	}
	tr := &Transcript{Lines: []string{"3 + 4", "= ?"}}
	if tr.Text() != "3 + 4\n= ?" {
		t.Errorf("Text = %q", tr.Text())
	}
}

func TestAverageConfidence(t *testing.T) {
	if _, ok := averageConfidence(nil); ok {
		t.Error("no words should report no confidence")
	}

	words := []Word{{Confidence: 0.9}, {Confidence: 0.7}, {Confidence: -0.01}}
	got, ok := averageConfidence(words)
	if !ok {
		t.Fatal("expected a confidence")
	}
	if got < 0.7999 || got > 0.8001 {
		t.Errorf("average = %v, want 0.8", got)
	}
}

func TestWordsFromBoxes(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(10, 10, 30, 22), Word: "12", Confidence: 91},
		{Box: image.Rect(40, 10, 48, 22), Word: "", Confidence: 10},
		{Box: image.Rect(60, 10, 70, 22), Word: "+", Confidence: 55},
	}
	words := wordsFromBoxes(boxes)
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[0].Text != "12" || words[0].Confidence != 0.91 {
		t.Errorf("first word = %+v", words[0])
	}
	if words[1].Bounds != image.Rect(60, 10, 70, 22) {
		t.Errorf("second word bounds = %v", words[1].Bounds)
	}
}
