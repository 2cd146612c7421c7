package detection

import (
	"testing"
)

func TestGroupStacked(t *testing.T) {
	tests := []struct {
		name string
		c    *canvas
		want int
	}{
		{"equals sign", newCanvas(60, 40).rect(5, 10, 45, 16).rect(5, 24, 45, 30), 1},
		{"division sign", newCanvas(50, 40).disc(25, 6, 4).rect(5, 16, 45, 21).disc(25, 31, 4), 1},
		{"bars on separate lines", newCanvas(60, 120).rect(5, 10, 45, 16).rect(5, 90, 45, 96), 2},
		{"bars side by side", newCanvas(120, 40).rect(5, 10, 45, 16).rect(60, 10, 100, 16), 2},
		{"bars of very different width", newCanvas(60, 40).rect(5, 10, 55, 16).rect(20, 22, 30, 26), 2},
		{"dot off to the side", newCanvas(60, 40).disc(8, 6, 4).rect(15, 16, 55, 21), 2},
		{"disc over disc", newCanvas(40, 60).disc(20, 12, 8).disc(20, 40, 8), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupStacked(Segment(tt.c.mask(), 1))
			if len(got) != tt.want {
				t.Errorf("got %d components, want %d", len(got), tt.want)
			}
		})
	}
}

func TestGroupStacked_MergedComponent(t *testing.T) {
	mask := newCanvas(60, 40).rect(5, 10, 45, 16).rect(5, 24, 45, 30).mask()
	parts := Segment(mask, 1)
	merged := GroupStacked(parts)[0]

	if merged.ID != parts[0].ID {
		t.Errorf("merged ID = %d, want %d", merged.ID, parts[0].ID)
	}
	if merged.Area != parts[0].Area+parts[1].Area {
		t.Errorf("merged Area = %d", merged.Area)
	}
	want := Bounds{X: 5, Y: 10, W: 40, H: 20}
	if merged.Bounds != want {
		t.Errorf("merged Bounds = %+v, want %+v", merged.Bounds, want)
	}
	for i := 1; i < len(merged.Pixels); i++ {
		if merged.Pixels[i] <= merged.Pixels[i-1] {
			t.Fatal("merged pixels are not sorted")
		}
	}
}
