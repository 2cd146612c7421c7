package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/ironsheep/math-tools-mcp/internal/errors"
)

// DefaultWhitelist restricts recognition to characters that appear in
// typed or handwritten math homework.
const DefaultWhitelist = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ.,!?;:()[]{}'\"-@#$%^&*+=<>/\\|`~ "

const engineName = "tesseract"

// TesseractOptions configures a TesseractRecognizer.
type TesseractOptions struct {
	// Language is the Tesseract language code, "eng" when empty.
	Language string

	// TessdataPrefix points at the traineddata directory. Empty uses the
	// engine's compiled-in default or TESSDATA_PREFIX.
	TessdataPrefix string

	// Whitelist limits the recognized characters, DefaultWhitelist when empty.
	Whitelist string
}

// TesseractRecognizer runs OCR through the gosseract bindings.
//
// A single engine client is reused across calls and guarded by a mutex, so a
// recognizer is safe for concurrent use but serializes recognition.
type TesseractRecognizer struct {
	opts TesseractOptions

	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractRecognizer creates a recognizer and configures its engine.
func NewTesseractRecognizer(opts TesseractOptions) (*TesseractRecognizer, error) {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	if opts.Whitelist == "" {
		opts.Whitelist = DefaultWhitelist
	}

	client := gosseract.NewClient()
	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, apperrors.NewOCRFailedError(engineName, fmt.Errorf("failed to set tessdata path: %w", err))
		}
	}
	if err := client.SetLanguage(opts.Language); err != nil {
		client.Close()
		return nil, apperrors.NewOCRFailedError(engineName, fmt.Errorf("failed to set language: %w", err))
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, apperrors.NewOCRFailedError(engineName, fmt.Errorf("failed to set page segmentation mode: %w", err))
	}
	if err := client.SetWhitelist(opts.Whitelist); err != nil {
		client.Close()
		return nil, apperrors.NewOCRFailedError(engineName, fmt.Errorf("failed to set whitelist: %w", err))
	}

	return &TesseractRecognizer{opts: opts, client: client}, nil
}

// Language returns the configured language code.
func (r *TesseractRecognizer) Language() string { return r.opts.Language }

// Recognize reads the text in img.
//
// The image is handed to the engine as PNG. Word boxes and confidences are
// collected at word level; when the engine cannot report them the
// transcript still carries the text with HasConfidence false.
func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image) (*Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.NewOCRFailedError(engineName, fmt.Errorf("failed to encode image: %w", err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, apperrors.NewOCRFailedError(engineName, fmt.Errorf("failed to set image: %w", err))
	}

	text, err := r.client.Text()
	if err != nil {
		return nil, apperrors.NewOCRFailedError(engineName, err)
	}

	transcript := &Transcript{Lines: splitLines(text)}

	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return transcript, nil
	}
	transcript.Words = wordsFromBoxes(boxes)
	transcript.Confidence, transcript.HasConfidence = averageConfidence(transcript.Words)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return transcript, nil
}

// Close releases the engine.
func (r *TesseractRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

// Info reports the engine version and configuration.
func (r *TesseractRecognizer) Info() EngineInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	info := EngineInfo{
		Backend:        "gosseract",
		Language:       r.opts.Language,
		TessdataPrefix: r.opts.TessdataPrefix,
	}
	if r.client != nil {
		info.Available = true
		info.Version = r.client.Version()
	}
	return info
}

// EngineInfo describes the OCR backend.
type EngineInfo struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Backend        string `json:"backend"`
	Language       string `json:"language"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
}

func wordsFromBoxes(boxes []gosseract.BoundingBox) []Word {
	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds:     box.Box,
		})
	}
	return words
}
