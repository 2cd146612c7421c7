package detection

import (
	"testing"
)

func TestClassify_SyntheticGlyphs(t *testing.T) {
	tests := []struct {
		name  string
		c     *canvas
		want  Label
		score float64
	}{
		{
			name:  "filled disc",
			c:     newCanvas(41, 41).disc(20, 20, 15),
			want:  LabelCircle,
			score: ScoreCircle,
		},
		{
			name:  "horizontal bar",
			c:     newCanvas(50, 30).rect(5, 10, 45, 16),
			want:  LabelMinus,
			score: ScoreMinus,
		},
		{
			name:  "two parallel bars",
			c:     newCanvas(50, 40).rect(5, 10, 45, 16).rect(5, 24, 45, 30),
			want:  LabelEquals,
			score: ScoreEquals,
		},
		{
			name:  "cross",
			c:     newCanvas(42, 42).rect(18, 0, 24, 42).rect(0, 18, 42, 24),
			want:  LabelPlus,
			score: ScorePlus,
		},
		{
			name:  "diagonal cross",
			c:     newCanvas(44, 44).segment(2, 2, 41, 41, 5).segment(41, 2, 2, 41, 5),
			want:  LabelTimes,
			score: ScoreTimes,
		},
		{
			name:  "dot bar dot",
			c:     newCanvas(50, 40).disc(25, 6, 4).rect(5, 16, 45, 21).disc(25, 31, 4),
			want:  LabelDivide,
			score: ScoreDivide,
		},
		{
			name:  "square outline",
			c:     newCanvas(50, 50).outline(5, 5, 45, 45, 3),
			want:  LabelSquare,
			score: ScoreSquare,
		},
		{
			name:  "vertical stroke",
			c:     newCanvas(30, 50).rect(10, 5, 14, 45),
			want:  LabelLine,
			score: ScoreLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, score, f := classifyCanvas(t, tt.c)
			if label != tt.want {
				t.Errorf("label = %q, want %q (aspect=%.2f circ=%.2f fill=%.2f bands=%d peaks=%v diag=%.2f/%.2f corners=%d)",
					label, tt.want, f.Aspect, f.Circularity, f.Fill, f.Bands, f.RowPeaks, f.DiagMain, f.DiagAnti, f.CornerInk)
			}
			if score != tt.score {
				t.Errorf("score = %v, want %v", score, tt.score)
			}
		})
	}
}

func TestClassify_DiscCircularity(t *testing.T) {
	for _, r := range []int{10, 15, 25} {
		_, _, f := classifyCanvas(t, newCanvas(2*r+5, 2*r+5).disc(r+2, r+2, r))
		if f.Circularity <= 0.5 {
			t.Errorf("disc r=%d circularity %.3f, want > 0.5", r, f.Circularity)
		}
		if f.Aspect < 0.9 || f.Aspect > 1.1 {
			t.Errorf("disc r=%d aspect %.3f", r, f.Aspect)
		}
	}
}

func TestClassify_TriangleProfile(t *testing.T) {
	// row widths of an outlined triangle: apex, two sides, then the base
	rows := []float64{3, 5, 6, 6, 7, 6, 6, 7, 6, 7, 7, 40, 40, 40}
	cols := make([]float64, 40)
	for i := range cols {
		cols[i] = 5
	}
	f := &Features{
		Width:       40,
		Height:      len(rows),
		RowSum:      rows,
		ColSum:      cols,
		Aspect:      40.0 / float64(len(rows)),
		Circularity: 0.12,
		Bands:       1,
		maxRow:      40,
		maxCol:      5,
	}
	if label, score := Classify(f); label != LabelTriangle || score != ScoreTriangle {
		t.Errorf("got %q (%v), want triangle", label, score)
	}

	// same profile upside down is not a triangle
	flipped := make([]float64, len(rows))
	for i, v := range rows {
		flipped[len(rows)-1-i] = v
	}
	f.RowSum = flipped
	if label, _ := Classify(f); label == LabelTriangle {
		t.Error("inverted profile classified as triangle")
	}
}

func TestClassify_TriangleTolerance(t *testing.T) {
	cols := make([]float64, 40)
	for i := range cols {
		cols[i] = 5
	}
	features := func(rows []float64) *Features {
		return &Features{
			Width:       40,
			Height:      len(rows),
			RowSum:      rows,
			ColSum:      cols,
			Aspect:      40.0 / float64(len(rows)),
			Circularity: 0.12,
			Bands:       1,
			maxRow:      40,
			maxCol:      5,
		}
	}

	tests := []struct {
		name     string
		rows     []float64
		triangle bool
	}{
		{"wobble of four", []float64{3, 5, 6, 10, 6, 7, 6, 7, 6, 7, 7, 40, 40, 40}, true},
		{"wobble of five", []float64{3, 5, 6, 11, 6, 7, 6, 7, 6, 7, 7, 40, 40, 40}, false},
		{"jittery block", []float64{30, 31, 30, 30, 31, 30, 31, 30, 30, 32, 31, 30, 31, 30}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTriangle(features(tt.rows)); got != tt.triangle {
				t.Errorf("isTriangle = %v, want %v", got, tt.triangle)
			}
		})
	}
}

func TestClassify_Unknown(t *testing.T) {
	// a tall T matches none of the rules
	c := newCanvas(40, 50).rect(5, 5, 35, 10).rect(17, 10, 23, 45)
	label, score, f := classifyCanvas(t, c)
	if label != LabelUnknown || score != ScoreUnknown {
		t.Errorf("got %q (%v), want unknown; aspect=%.2f circ=%.2f", label, score, f.Aspect, f.Circularity)
	}
}

func TestFindPeaks(t *testing.T) {
	tests := []struct {
		name   string
		arr    []float64
		minSep int
		want   []int
	}{
		{"plateau at edges", []float64{5, 5, 0, 0, 5, 5}, 1, []int{0, 4}},
		{"single hump", []float64{1, 3, 7, 3, 1}, 1, []int{2}},
		{"flat profile", []float64{4, 4, 4, 4}, 1, []int{1}},
		{"close peaks merged", []float64{0, 6, 5, 7, 0}, 3, []int{3}},
		{"all zero", []float64{0, 0, 0}, 1, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findPeaks(tt.arr, tt.minSep)
			if len(got) != len(tt.want) {
				t.Fatalf("findPeaks = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("findPeaks = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
