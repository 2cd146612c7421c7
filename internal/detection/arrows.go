package detection

import (
	"image"
	"math"

	"github.com/ironsheep/math-tools-mcp/internal/imaging"
)

const (
	arrowBandMin      = 6
	arrowBandMax      = 12
	arrowBandFraction = 0.2
	arrowMassFraction = 0.05
)

// DetectArrows looks for arrowhead stubs beside line and unknown glyphs.
//
// For each such glyph a vertical band just left and just right of its box
// is probed in the mask. The band is min(12, max(6, round(min(w,h)*0.2)))
// pixels wide, spans the glyph's rows and is clipped to the image. When a
// band holds more ink than 5% of the glyph's area an arrow glyph covering
// that band is emitted. Source glyphs are not modified; each yields zero,
// one or two arrows, in input order, left before right.
func DetectArrows(glyphs []Glyph, mask *imaging.BinaryMask) []Glyph {
	arrows := make([]Glyph, 0)
	bounds := image.Rect(0, 0, mask.Width(), mask.Height())

	for _, g := range glyphs {
		if g.Label != LabelLine && g.Label != LabelUnknown {
			continue
		}
		b := g.Bounds
		band := bandWidth(b)
		limit := arrowMassFraction * float64(g.Area)

		left := image.Rect(b.X-band, b.Y, b.X, b.Y+b.H).Intersect(bounds)
		right := image.Rect(b.X+b.W, b.Y, b.X+b.W+band, b.Y+b.H).Intersect(bounds)

		for _, r := range []image.Rectangle{left, right} {
			if r.Empty() {
				continue
			}
			if float64(mask.CountRect(r)) > limit {
				arrows = append(arrows, Glyph{
					Label:  LabelArrow,
					Bounds: boundsFromRect(r),
					Score:  ScoreArrow,
				})
			}
		}
	}

	return arrows
}

func bandWidth(b Bounds) int {
	w := int(math.Round(float64(min(b.W, b.H)) * arrowBandFraction))
	return min(arrowBandMax, max(arrowBandMin, w))
}
