package detection

import (
	"testing"
)

func TestDetectArrows_StubBesideLine(t *testing.T) {
	// vertical shaft with a detached arrowhead stub to its right; the stub is
	// below the component size limit but still ink in the mask
	c := newCanvas(60, 60).rect(20, 5, 23, 45).rect(26, 20, 30, 24)
	mask := c.mask()

	line := Glyph{Label: LabelLine, Bounds: Bounds{X: 20, Y: 5, W: 3, H: 40}, Score: ScoreLine, Area: 120}
	arrows := DetectArrows([]Glyph{line}, mask)

	if len(arrows) != 1 {
		t.Fatalf("got %d arrows, want 1", len(arrows))
	}
	a := arrows[0]
	if a.Label != LabelArrow || a.Score != ScoreArrow {
		t.Errorf("got %q (%v), want arrow (%v)", a.Label, a.Score, ScoreArrow)
	}
	want := Bounds{X: 23, Y: 5, W: 6, H: 40}
	if a.Bounds != want {
		t.Errorf("arrow bounds = %+v, want %+v", a.Bounds, want)
	}
}

func TestDetectArrows_OnlyLinesAndUnknown(t *testing.T) {
	c := newCanvas(60, 60).rect(10, 10, 40, 16).rect(42, 10, 50, 16)
	mask := c.mask()
	minus := Glyph{Label: LabelMinus, Bounds: Bounds{X: 10, Y: 10, W: 30, H: 6}, Area: 180}

	if arrows := DetectArrows([]Glyph{minus}, mask); len(arrows) != 0 {
		t.Errorf("minus glyph produced %d arrows", len(arrows))
	}

	minus.Label = LabelUnknown
	if arrows := DetectArrows([]Glyph{minus}, mask); len(arrows) != 1 {
		t.Errorf("unknown glyph produced %d arrows, want 1", len(arrows))
	}
}

func TestDetectArrows_BothSidesAndClipping(t *testing.T) {
	// shaft touching the left border has no left band at all
	c := newCanvas(40, 40).rect(0, 5, 3, 35).rect(4, 15, 7, 20)
	g := Glyph{Label: LabelLine, Bounds: Bounds{X: 0, Y: 5, W: 3, H: 30}, Area: 90}
	if arrows := DetectArrows([]Glyph{g}, c.mask()); len(arrows) != 1 {
		t.Errorf("got %d arrows, want 1 (right side only)", len(arrows))
	}

	c = newCanvas(60, 40).rect(20, 5, 23, 35).rect(15, 15, 19, 20).rect(24, 15, 28, 20)
	g = Glyph{Label: LabelLine, Bounds: Bounds{X: 20, Y: 5, W: 3, H: 30}, Area: 90}
	arrows := DetectArrows([]Glyph{g}, c.mask())
	if len(arrows) != 2 {
		t.Fatalf("got %d arrows, want 2", len(arrows))
	}
	if arrows[0].Bounds.X >= arrows[1].Bounds.X {
		t.Error("left arrow should come first")
	}
}

func TestDetectArrows_NoInkNoArrow(t *testing.T) {
	c := newCanvas(60, 60).rect(20, 5, 23, 45)
	g := Glyph{Label: LabelLine, Bounds: Bounds{X: 20, Y: 5, W: 3, H: 40}, Area: 120}
	if arrows := DetectArrows([]Glyph{g}, c.mask()); len(arrows) != 0 {
		t.Errorf("got %d arrows beside a bare line", len(arrows))
	}
}

func TestBandWidth(t *testing.T) {
	tests := []struct {
		b    Bounds
		want int
	}{
		{Bounds{W: 3, H: 40}, 6},
		{Bounds{W: 40, H: 40}, 8},
		{Bounds{W: 100, H: 200}, 12},
		{Bounds{W: 33, H: 50}, 7},
	}
	for _, tt := range tests {
		if got := bandWidth(tt.b); got != tt.want {
			t.Errorf("bandWidth(%+v) = %d, want %d", tt.b, got, tt.want)
		}
	}
}
