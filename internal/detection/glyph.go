package detection

import (
	"image"
	"strings"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X, Y) is the top-left corner (inclusive); W and H are the extent, so the
// box covers X <= x < X+W and Y <= y < Y+H.
type Bounds struct {
	X int `json:"x"` // Left edge (inclusive)
	Y int `json:"y"` // Top edge (inclusive)
	W int `json:"w"` // Width in pixels
	H int `json:"h"` // Height in pixels
}

// Rect converts the bounds to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Union returns the smallest bounds containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	r := b.Rect().Union(o.Rect())
	return boundsFromRect(r)
}

func boundsFromRect(r image.Rectangle) Bounds {
	return Bounds{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Label names a glyph class.
type Label string

const (
	LabelPlus     Label = "+"
	LabelMinus    Label = "-"
	LabelTimes    Label = "×"
	LabelDivide   Label = "÷"
	LabelEquals   Label = "="
	LabelCircle   Label = "circle"
	LabelTriangle Label = "triangle"
	LabelSquare   Label = "square"
	LabelLine     Label = "line"
	LabelArrow    Label = "arrow"
	LabelUnknown  Label = "unknown"
)

// Labels lists every label a detector may emit.
var Labels = []Label{
	LabelPlus, LabelMinus, LabelTimes, LabelDivide, LabelEquals,
	LabelCircle, LabelTriangle, LabelSquare, LabelLine, LabelArrow, LabelUnknown,
}

// ParseLabel maps a class name to a Label. Unrecognized names map to LabelUnknown.
func ParseLabel(s string) Label {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "plus":
		return LabelPlus
	case "minus":
		return LabelMinus
	case "x", "*", "times":
		return LabelTimes
	case "/", "divide":
		return LabelDivide
	case "equals":
		return LabelEquals
	}
	for _, l := range Labels {
		if string(l) == name {
			return l
		}
	}
	return LabelUnknown
}

// Glyph is a classified mark on the page.
type Glyph struct {
	// Label is the glyph class.
	Label Label `json:"label"`

	// Bounds locates the glyph in normalized-image coordinates.
	Bounds Bounds `json:"bounds"`

	// Score is the detector's confidence in [0, 1]. Heuristic scores are
	// fixed per rule and are not calibrated probabilities.
	Score float64 `json:"score"`

	// Area is the ink pixel count of the underlying component. Zero for
	// glyphs that were not derived from a component.
	Area int `json:"area,omitempty"`
}
