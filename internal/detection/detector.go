package detection

import (
	"context"

	"github.com/ironsheep/math-tools-mcp/internal/imaging"
	"github.com/ironsheep/math-tools-mcp/internal/logging"
)

// GlyphDetector finds math glyphs in a normalized image.
//
// Implementations must be safe for concurrent use and must not retain buf.
// An image without glyphs yields an empty slice and a nil error.
type GlyphDetector interface {
	Detect(ctx context.Context, buf *imaging.PixelBuffer) ([]Glyph, error)
	Name() string
}

// HeuristicDetector classifies connected ink components with hand-written
// stroke-shape rules. It needs no model files and is always available.
type HeuristicDetector struct {
	// MinArea drops components smaller than this many pixels.
	MinArea int
}

// NewHeuristicDetector returns a detector using minArea, or DefaultMinArea
// when minArea is not positive.
func NewHeuristicDetector(minArea int) *HeuristicDetector {
	if minArea <= 0 {
		minArea = DefaultMinArea
	}
	return &HeuristicDetector{MinArea: minArea}
}

func (d *HeuristicDetector) Name() string { return "heuristic" }

// Detect binarizes buf, segments it, classifies each component and appends
// arrow glyphs found beside lines and unknown marks.
//
// Glyphs come back in component order (raster order of each component's
// first pixel) followed by arrows. The context is checked between
// components; on cancellation the context error is returned with no glyphs.
func (d *HeuristicDetector) Detect(ctx context.Context, buf *imaging.PixelBuffer) ([]Glyph, error) {
	mask := imaging.Binarize(buf)
	components := GroupStacked(Segment(mask, d.MinArea))

	glyphs := make([]Glyph, 0, len(components))
	for _, c := range components {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label, score := Classify(ExtractFeatures(c, mask))
		glyphs = append(glyphs, Glyph{
			Label:  label,
			Bounds: c.Bounds,
			Score:  score,
			Area:   c.Area,
		})
	}

	return append(glyphs, DetectArrows(glyphs, mask)...), nil
}

// Options selects and configures a detector.
type Options struct {
	MinArea int

	// Learned configures the model-backed detector. It is used when
	// Learned.Model is set and the binary was built with gocv support.
	Learned LearnedOptions
}

// NewDetector builds the detector described by opts. When a learned model
// is configured but cannot be loaded, the failure is logged and the
// heuristic detector is returned instead.
func NewDetector(opts Options, logger *logging.Logger) GlyphDetector {
	heuristic := NewHeuristicDetector(opts.MinArea)
	if opts.Learned.Model == "" {
		return heuristic
	}

	learned, err := NewLearnedDetector(opts.Learned, heuristic)
	if err != nil {
		logger.Warn("learned detector unavailable, using heuristic", "model", opts.Learned.Model, "error", err)
		return heuristic
	}
	logger.Info("learned detector loaded", "model", opts.Learned.Model, "labels", len(opts.Learned.Labels))
	return learned
}

// SegmentAndClassify runs d over buf. A nil detector means the heuristic
// detector with default settings.
func SegmentAndClassify(ctx context.Context, d GlyphDetector, buf *imaging.PixelBuffer) ([]Glyph, error) {
	if d == nil {
		d = NewHeuristicDetector(DefaultMinArea)
	}
	return d.Detect(ctx, buf)
}
