//go:build !gocv
// +build !gocv

package detection

import (
	"context"
	"errors"

	"github.com/ironsheep/math-tools-mcp/internal/imaging"
)

// ErrLearnedUnavailable is returned by NewLearnedDetector in builds without
// the gocv tag.
var ErrLearnedUnavailable = errors.New("gocv build tag is not enabled")

// LearnedDetector is a placeholder in builds without OpenCV.
type LearnedDetector struct{}

// NewLearnedDetector always fails without the gocv build tag.
func NewLearnedDetector(opts LearnedOptions, fallback GlyphDetector) (*LearnedDetector, error) {
	_ = opts
	_ = fallback
	return nil, ErrLearnedUnavailable
}

func (d *LearnedDetector) Name() string { return "learned" }

func (d *LearnedDetector) Close() error { return nil }

// Detect returns ErrLearnedUnavailable.
func (d *LearnedDetector) Detect(ctx context.Context, buf *imaging.PixelBuffer) ([]Glyph, error) {
	_ = ctx
	_ = buf
	return nil, ErrLearnedUnavailable
}
