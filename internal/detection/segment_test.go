package detection

import (
	"testing"

	"github.com/ironsheep/math-tools-mcp/internal/imaging"
)

func TestSegment_EmptyMask(t *testing.T) {
	components := Segment(newCanvas(50, 50).mask(), DefaultMinArea)
	if components == nil {
		t.Fatal("Segment returned nil, want empty slice")
	}
	if len(components) != 0 {
		t.Errorf("got %d components on a blank page", len(components))
	}
}

func TestSegment_RasterOrderAndBounds(t *testing.T) {
	c := newCanvas(100, 60).
		rect(60, 5, 70, 15).  // top right, found first
		rect(10, 10, 20, 20). // starts lower, found second
		rect(40, 40, 48, 52)

	components := Segment(c.mask(), 1)
	if len(components) != 3 {
		t.Fatalf("got %d components, want 3", len(components))
	}

	want := []Bounds{
		{X: 60, Y: 5, W: 10, H: 10},
		{X: 10, Y: 10, W: 10, H: 10},
		{X: 40, Y: 40, W: 8, H: 12},
	}
	for i, comp := range components {
		if comp.Bounds != want[i] {
			t.Errorf("component %d bounds = %+v, want %+v", i, comp.Bounds, want[i])
		}
		if comp.Area != want[i].W*want[i].H || comp.Area != len(comp.Pixels) {
			t.Errorf("component %d area = %d (pixels %d), want %d", i, comp.Area, len(comp.Pixels), want[i].W*want[i].H)
		}
		if i > 0 && comp.ID <= components[i-1].ID {
			t.Errorf("ids not increasing: %d after %d", comp.ID, components[i-1].ID)
		}
	}
}

func TestSegment_FourConnectivity(t *testing.T) {
	// two squares touching only at a corner
	c := newCanvas(30, 30).rect(5, 5, 12, 12).rect(12, 12, 19, 19)
	if got := len(Segment(c.mask(), 1)); got != 2 {
		t.Errorf("diagonal neighbours should not connect: got %d components", got)
	}

	c.set(12, 11)
	if got := len(Segment(c.mask(), 1)); got != 1 {
		t.Errorf("edge-adjacent pixel should join them: got %d components", got)
	}
}

func TestSegment_NoiseFiltering(t *testing.T) {
	c := newCanvas(80, 40).
		rect(2, 2, 7, 7).     // 25 px speck
		rect(20, 10, 30, 20). // 100 px glyph
		rect(50, 30, 52, 32)  // 4 px dust

	components := Segment(c.mask(), DefaultMinArea)
	if len(components) != 1 {
		t.Fatalf("got %d components, want 1", len(components))
	}
	if components[0].Area < DefaultMinArea {
		t.Errorf("kept a component of area %d", components[0].Area)
	}
}

func TestSegment_Perimeter(t *testing.T) {
	tests := []struct {
		name string
		c    *canvas
		want int
	}{
		{"5x5 square", newCanvas(20, 20).rect(5, 5, 10, 10), 16},
		{"1px wide bar", newCanvas(20, 20).rect(2, 2, 12, 3), 10},
		{"square on image border", newCanvas(5, 5).rect(0, 0, 5, 5), 16},
		{"ring", newCanvas(20, 20).outline(2, 2, 12, 12, 2), 36 + 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components := Segment(tt.c.mask(), 1)
			if len(components) != 1 {
				t.Fatalf("got %d components", len(components))
			}
			if got := components[0].Perimeter; got != tt.want {
				t.Errorf("Perimeter = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSegment_PartitionInvariant(t *testing.T) {
	c := newCanvas(120, 80).
		disc(20, 20, 12).
		outline(50, 10, 90, 50, 3).
		segment(5, 70, 110, 60, 3).
		rect(100, 5, 115, 8)
	mask := c.mask()

	seen := make(map[int]int)
	for _, comp := range Segment(mask, 1) {
		for _, p := range comp.Pixels {
			if !mask.AtIndex(p) {
				t.Fatalf("component %d holds background pixel %d", comp.ID, p)
			}
			if other, dup := seen[p]; dup {
				t.Fatalf("pixel %d in components %d and %d", p, other, comp.ID)
			}
			seen[p] = comp.ID
		}
	}
	if len(seen) != mask.Foreground() {
		t.Errorf("components cover %d pixels, mask has %d", len(seen), mask.Foreground())
	}
}

func TestSegment_Deterministic(t *testing.T) {
	c := newCanvas(90, 60).disc(15, 15, 10).rect(40, 5, 80, 11).outline(40, 25, 70, 55, 2)
	a := Segment(c.mask(), DefaultMinArea)
	b := Segment(c.mask(), DefaultMinArea)

	if len(a) != len(b) {
		t.Fatalf("component counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Bounds != b[i].Bounds || a[i].Area != b[i].Area || a[i].Perimeter != b[i].Perimeter {
			t.Errorf("component %d differs: %+v vs %+v", i, a[i], b[i])
		}
		for j := range a[i].Pixels {
			if a[i].Pixels[j] != b[i].Pixels[j] {
				t.Fatalf("component %d pixel %d differs", i, j)
			}
		}
	}
}

func TestSegment_SolidImage(t *testing.T) {
	const side = 1400
	fg := make([]bool, side*side)
	for i := range fg {
		fg[i] = true
	}

	components := Segment(imaging.NewBinaryMask(side, side, fg), DefaultMinArea)
	if len(components) != 1 {
		t.Fatalf("got %d components, want 1", len(components))
	}
	comp := components[0]
	if comp.ID != 1 {
		t.Errorf("ID = %d, want 1", comp.ID)
	}
	if comp.Area != side*side || len(comp.Pixels) != comp.Area {
		t.Errorf("area = %d (pixels %d), want %d", comp.Area, len(comp.Pixels), side*side)
	}
	if want := (Bounds{X: 0, Y: 0, W: side, H: side}); comp.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", comp.Bounds, want)
	}
	// only the pixels on the image border touch background
	if want := 4*side - 4; comp.Perimeter != want {
		t.Errorf("perimeter = %d, want %d", comp.Perimeter, want)
	}
}
