package detection

import (
	"math"
	"testing"

	"github.com/ironsheep/math-tools-mcp/internal/imaging"
)

// canvas is a drawable ink/paper grid for building synthetic glyphs.
type canvas struct {
	w, h int
	fg   []bool
}

func newCanvas(w, h int) *canvas {
	return &canvas{w: w, h: h, fg: make([]bool, w*h)}
}

func (c *canvas) set(x, y int) {
	if x >= 0 && y >= 0 && x < c.w && y < c.h {
		c.fg[y*c.w+x] = true
	}
}

// rect fills [x0,x1) x [y0,y1).
func (c *canvas) rect(x0, y0, x1, y1 int) *canvas {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c.set(x, y)
		}
	}
	return c
}

// outline draws a square ring of the given thickness inside [x0,x1) x [y0,y1).
func (c *canvas) outline(x0, y0, x1, y1, t int) *canvas {
	c.rect(x0, y0, x1, y0+t)
	c.rect(x0, y1-t, x1, y1)
	c.rect(x0, y0, x0+t, y1)
	c.rect(x1-t, y0, x1, y1)
	return c
}

// disc fills a circle of radius r around (cx, cy).
func (c *canvas) disc(cx, cy, r int) *canvas {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				c.set(x, y)
			}
		}
	}
	return c
}

// segment draws a thick straight stroke from (x0,y0) to (x1,y1).
func (c *canvas) segment(x0, y0, x1, y1 int, thickness float64) *canvas {
	dx, dy := float64(x1-x0), float64(y1-y0)
	length2 := dx*dx + dy*dy
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			px, py := float64(x-x0), float64(y-y0)
			t := math.Max(0, math.Min(1, (px*dx+py*dy)/length2))
			ex, ey := px-t*dx, py-t*dy
			if math.Sqrt(ex*ex+ey*ey) <= thickness/2 {
				c.set(x, y)
			}
		}
	}
	return c
}

func (c *canvas) mask() *imaging.BinaryMask {
	return imaging.NewBinaryMask(c.w, c.h, c.fg)
}

// buffer renders the canvas as a normalized image: ink 0, paper 255.
func (c *canvas) buffer() *imaging.PixelBuffer {
	buf := imaging.NewPixelBuffer(c.w, c.h)
	for i, v := range c.fg {
		if v {
			buf.Pix[i] = 0
		}
	}
	return buf
}

// classifyCanvas segments c, groups stacked strokes and classifies the
// single resulting component.
func classifyCanvas(t *testing.T, c *canvas) (Label, float64, *Features) {
	t.Helper()
	mask := c.mask()
	components := GroupStacked(Segment(mask, 1))
	if len(components) != 1 {
		t.Fatalf("expected 1 component, got %d", len(components))
	}
	f := ExtractFeatures(components[0], mask)
	label, score := Classify(f)
	return label, score, f
}
