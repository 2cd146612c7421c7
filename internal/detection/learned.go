package detection

import (
	"sort"
)

// LearnedOptions configures the model-backed detector.
type LearnedOptions struct {
	// Model and Config are the network files passed to the DNN loader
	// (for example an ONNX file, or a TensorFlow graph and its pbtxt).
	Model  string
	Config string

	// Labels maps class ids (index) to glyph labels.
	Labels []string

	// MinScore drops detections below this confidence.
	MinScore float64

	// InputSize is the square network input side in pixels.
	InputSize int
}

func (o LearnedOptions) withDefaults() LearnedOptions {
	if o.MinScore <= 0 {
		o.MinScore = 0.5
	}
	if o.InputSize <= 0 {
		o.InputSize = 320
	}
	return o
}

// labelFor maps a class id to a Label using the configured class list.
func (o LearnedOptions) labelFor(classID int) Label {
	if classID < 0 || classID >= len(o.Labels) {
		return LabelUnknown
	}
	return ParseLabel(o.Labels[classID])
}

// suppressOverlaps removes detections that overlap a higher-scoring
// detection by more than half of the smaller box.
func suppressOverlaps(glyphs []Glyph) []Glyph {
	sorted := append([]Glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	kept := make([]Glyph, 0, len(sorted))
	for _, g := range sorted {
		duplicate := false
		for _, k := range kept {
			inter := g.Bounds.Rect().Intersect(k.Bounds.Rect())
			if inter.Empty() {
				continue
			}
			smaller := min(g.Bounds.W*g.Bounds.H, k.Bounds.W*k.Bounds.H)
			if float64(inter.Dx()*inter.Dy()) > 0.5*float64(smaller) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, g)
		}
	}
	return kept
}

// sortReadingOrder orders glyphs top-to-bottom, then left-to-right.
func sortReadingOrder(glyphs []Glyph) {
	sort.SliceStable(glyphs, func(i, j int) bool {
		a, b := glyphs[i].Bounds, glyphs[j].Bounds
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}
