//go:build gocv
// +build gocv

package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ironsheep/math-tools-mcp/internal/imaging"
)

// LearnedDetector runs an SSD-style object detection network over the
// normalized image. When the network finds nothing, the fallback detector
// answers instead.
type LearnedDetector struct {
	opts     LearnedOptions
	fallback GlyphDetector

	// gocv nets are not safe for concurrent Forward calls
	mu  sync.Mutex
	net gocv.Net
}

// NewLearnedDetector loads the network described by opts.
func NewLearnedDetector(opts LearnedOptions, fallback GlyphDetector) (*LearnedDetector, error) {
	opts = opts.withDefaults()
	if len(opts.Labels) == 0 {
		return nil, errors.New("learned detector needs a label list")
	}

	net := gocv.ReadNet(opts.Model, opts.Config)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load detector model %q", opts.Model)
	}

	return &LearnedDetector{opts: opts, fallback: fallback, net: net}, nil
}

func (d *LearnedDetector) Name() string { return "learned" }

// Close releases the network.
func (d *LearnedDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// Detect runs the network. Results are filtered by MinScore, de-duplicated
// and returned in reading order.
func (d *LearnedDetector) Detect(ctx context.Context, buf *imaging.PixelBuffer) ([]Glyph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gray, err := gocv.NewMatFromBytes(buf.Height, buf.Width, gocv.MatTypeCV8U, buf.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap pixel buffer: %w", err)
	}
	defer gray.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(gray, &bgr, gocv.ColorGrayToBGR)

	size := d.opts.InputSize
	blob := gocv.BlobFromImage(bgr, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	prob := d.net.Forward("")
	d.mu.Unlock()
	defer prob.Close()

	glyphs := d.decode(prob, buf.Width, buf.Height)
	if len(glyphs) == 0 && d.fallback != nil {
		return d.fallback.Detect(ctx, buf)
	}
	return glyphs, nil
}

// decode reads SSD rows of [image_id, class_id, score, left, top, right, bottom]
// with coordinates relative to the input size.
func (d *LearnedDetector) decode(prob gocv.Mat, width, height int) []Glyph {
	frame := image.Rect(0, 0, width, height)
	glyphs := make([]Glyph, 0)

	for i := 0; i+6 < prob.Total(); i += 7 {
		score := float64(prob.GetFloatAt(0, i+2))
		if score < d.opts.MinScore {
			continue
		}
		classID := int(prob.GetFloatAt(0, i+1))
		left := int(prob.GetFloatAt(0, i+3) * float32(width))
		top := int(prob.GetFloatAt(0, i+4) * float32(height))
		right := int(prob.GetFloatAt(0, i+5) * float32(width))
		bottom := int(prob.GetFloatAt(0, i+6) * float32(height))

		r := image.Rect(left, top, right, bottom).Intersect(frame)
		if r.Empty() {
			continue
		}
		glyphs = append(glyphs, Glyph{
			Label:  d.opts.labelFor(classID),
			Bounds: boundsFromRect(r),
			Score:  score,
		})
	}

	glyphs = suppressOverlaps(glyphs)
	sortReadingOrder(glyphs)
	return glyphs
}
