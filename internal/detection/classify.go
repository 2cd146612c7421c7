package detection

import (
	"gonum.org/v1/gonum/floats"
)

// Fixed scores reported for each heuristic rule.
const (
	ScoreMinus    = 0.92
	ScorePlus     = 0.92
	ScoreEquals   = 0.92
	ScoreTimes    = 0.88
	ScoreDivide   = 0.85
	ScoreCircle   = 0.86
	ScoreLine     = 0.66
	ScoreTriangle = 0.78
	ScoreSquare   = 0.78
	ScoreUnknown  = 0.6
	ScoreArrow    = 0.62
)

// Classify assigns a label and score to a measured component.
//
// Rules are tried in a fixed order and the first match wins:
//
//  1. -  a single band whose center row is dominant and whose columns are short
//  2. +  a single band with a full-width center row and a full-height center
//     column, both well above the average row and column
//  3. =  two bands, each with a wide row-sum peak, separated by more than h/6
//  4. ×  both box diagonals inked, ink in three or more corners and at the
//     center, and a sparse box
//  5. ÷  a narrow blob in the upper third, detached from a wide bar below it
//  6. circle    circularity > 0.5 and aspect in [0.6, 1.6]
//  7. line      aspect > 3 or < 0.33
//  8. triangle  row widths grow from the top to a peak in the lower 60%
//  9. square    aspect in [0.85, 1.25] and circularity < 0.3
//  10. unknown
func Classify(f *Features) (Label, float64) {
	switch {
	case isMinus(f):
		return LabelMinus, ScoreMinus
	case isPlus(f):
		return LabelPlus, ScorePlus
	case isEquals(f):
		return LabelEquals, ScoreEquals
	case isTimes(f):
		return LabelTimes, ScoreTimes
	case isDivide(f):
		return LabelDivide, ScoreDivide
	case f.Circularity > 0.5 && f.Aspect >= 0.6 && f.Aspect <= 1.6:
		return LabelCircle, ScoreCircle
	case f.Aspect > 3 || f.Aspect < 0.33:
		return LabelLine, ScoreLine
	case isTriangle(f):
		return LabelTriangle, ScoreTriangle
	case f.Aspect >= 0.85 && f.Aspect <= 1.25 && f.Circularity < 0.3:
		return LabelSquare, ScoreSquare
	default:
		return LabelUnknown, ScoreUnknown
	}
}

func isMinus(f *Features) bool {
	if f.Bands != 1 {
		return false
	}
	return f.RowSum[f.Height/2] > 0.6*f.maxRow && f.maxCol < 0.45*f.maxRow
}

func isPlus(f *Features) bool {
	if f.Bands != 1 || f.Aspect < 0.5 || f.Aspect > 2 {
		return false
	}
	row := bandMax(f.RowSum, f.Height/2, max(1, f.Height/8))
	col := bandMax(f.ColSum, f.Width/2, max(1, f.Width/8))
	if row < 0.8*f.maxRow || col < 0.8*f.maxCol {
		return false
	}
	meanRow := floats.Sum(f.RowSum) / float64(f.Height)
	meanCol := floats.Sum(f.ColSum) / float64(f.Width)
	return meanRow < 0.5*row && meanCol < 0.5*col
}

func isEquals(f *Features) bool {
	if f.Bands != 2 || len(f.RowPeaks) != 2 {
		return false
	}
	if f.RowPeaks[1]-f.RowPeaks[0] <= max(1, f.Height/6) {
		return false
	}
	for _, p := range f.RowPeaks {
		if f.RowSum[p] < 0.5*float64(f.Width) {
			return false
		}
	}
	return true
}

func isTimes(f *Features) bool {
	return f.Bands == 1 &&
		f.DiagMain > 0.6 && f.DiagAnti > 0.6 &&
		f.CornerInk >= 3 && f.CenterInk &&
		f.Fill < 0.6
}

func isDivide(f *Features) bool {
	if f.Bands < 2 {
		return false
	}
	third := max(1, f.Height/3)
	top := f.RowSum[:third]
	if floats.Sum(top) < 0.05*float64(f.Area) || floats.Max(top) > 0.5*f.maxRow {
		return false
	}
	bar := floats.MaxIdx(f.RowSum)
	if bar < third || f.RowSum[bar] < 0.8*float64(f.Width) {
		return false
	}
	// the blob must be separated from the bar by empty rows
	for y := third; y < bar; y++ {
		if f.RowSum[y] == 0 {
			return true
		}
	}
	return false
}

// triangleSlack is how far a row may be wider than the row below it before the
// profile stops counting as widening. Hand-drawn sides wobble by a few pixels.
const triangleSlack = 4

// A solid or jittery block also widens "almost" monotonically, so the widest
// row must clearly dominate the apex row.
const trianglePeakRatio = 1.5

func isTriangle(f *Features) bool {
	if f.Bands != 1 {
		return false
	}
	peak := floats.MaxIdx(f.RowSum)
	if float64(peak) < 0.4*float64(f.Height) {
		return false
	}
	if f.RowSum[peak] < trianglePeakRatio*f.RowSum[0] {
		return false
	}
	for y := 0; y < peak; y++ {
		if f.RowSum[y] > f.RowSum[y+1]+triangleSlack {
			return false
		}
	}
	return true
}

// bandMax returns the largest value within d of index c.
func bandMax(arr []float64, c, d int) float64 {
	lo, hi := max(0, c-d), min(len(arr), c+d+1)
	return floats.Max(arr[lo:hi])
}
