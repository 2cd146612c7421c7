package detection

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/math-tools-mcp/internal/imaging"
)

// Features are the stroke-shape measurements the heuristic classifier uses.
// They are computed from a component's own pixels; ink from neighbouring
// components inside the same bounding box is ignored.
type Features struct {
	Width, Height   int
	Area, Perimeter int

	// RowSum[y] and ColSum[x] count ink pixels per row and column of the patch.
	RowSum []float64
	ColSum []float64

	// Circularity is 4*pi*area/perimeter^2. A filled disc scores well above
	// 0.5; outlines and thin strokes score low.
	Circularity float64

	// Aspect is Width/Height.
	Aspect float64

	// Fill is Area/(Width*Height).
	Fill float64

	// Bands counts maximal runs of non-empty rows. A single stroke always has
	// one band; grouped glyphs such as = and ÷ have two or more.
	Bands int

	// RowPeaks are the row indices of significant row-sum maxima, at least
	// Height/8 rows apart.
	RowPeaks []int

	// DiagMain and DiagAnti are the fractions of samples along the two box
	// diagonals that land on or next to ink.
	DiagMain float64
	DiagAnti float64

	// CornerInk counts box corners with ink nearby.
	CornerInk int

	// CenterInk reports ink at or near the box center.
	CenterInk bool

	maxRow, maxCol float64
	patch          []bool
}

// ExtractFeatures measures component c of the mask it was segmented from.
func ExtractFeatures(c Component, mask *imaging.BinaryMask) *Features {
	w, h := c.Bounds.W, c.Bounds.H
	f := &Features{
		Width:     w,
		Height:    h,
		Area:      c.Area,
		Perimeter: c.Perimeter,
		RowSum:    make([]float64, h),
		ColSum:    make([]float64, w),
		patch:     make([]bool, w*h),
	}

	mw := mask.Width()
	for _, i := range c.Pixels {
		x, y := i%mw-c.Bounds.X, i/mw-c.Bounds.Y
		f.patch[y*w+x] = true
		f.RowSum[y]++
		f.ColSum[x]++
	}

	f.maxRow = floats.Max(f.RowSum)
	f.maxCol = floats.Max(f.ColSum)
	f.Aspect = float64(w) / float64(h)
	f.Fill = float64(c.Area) / float64(w*h)
	if c.Perimeter > 0 {
		f.Circularity = 4 * math.Pi * float64(c.Area) / float64(c.Perimeter*c.Perimeter)
	}

	f.Bands = countBands(f.RowSum)
	f.RowPeaks = significantPeaks(f.RowSum, f.maxRow, max(1, h/8))
	f.DiagMain = f.diagonalCoverage(false)
	f.DiagAnti = f.diagonalCoverage(true)

	r := max(2, min(w, h)/6)
	for _, p := range [][2]int{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		if f.inkNear(p[0], p[1], r) {
			f.CornerInk++
		}
	}
	f.CenterInk = f.inkNear(w/2, h/2, max(1, min(w, h)/10))

	return f
}

// inkNear reports ink within the (2r+1)-square around (x, y).
func (f *Features) inkNear(x, y, r int) bool {
	for yy := max(0, y-r); yy <= min(f.Height-1, y+r); yy++ {
		for xx := max(0, x-r); xx <= min(f.Width-1, x+r); xx++ {
			if f.patch[yy*f.Width+xx] {
				return true
			}
		}
	}
	return false
}

// diagonalCoverage samples max(w,h) points along a box diagonal and returns
// the fraction that have ink within one pixel.
func (f *Features) diagonalCoverage(anti bool) float64 {
	k := max(f.Width, f.Height)
	if k < 2 {
		return 0
	}
	hits := 0
	for t := 0; t < k; t++ {
		x := int(math.Round(float64(t) * float64(f.Width-1) / float64(k-1)))
		y := int(math.Round(float64(t) * float64(f.Height-1) / float64(k-1)))
		if anti {
			x = f.Width - 1 - x
		}
		if f.inkNear(x, y, 1) {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

func countBands(rowSum []float64) int {
	bands := 0
	inBand := false
	for _, v := range rowSum {
		switch {
		case v > 0 && !inBand:
			bands++
			inBand = true
		case v == 0:
			inBand = false
		}
	}
	return bands
}

// findPeaks returns the centers of plateaus that rise above both neighbours.
// Values outside the slice count as zero, so a profile that starts or ends
// on its maximum still reports a peak there. Peaks closer than minSep are
// merged, keeping the higher one (the first on ties).
func findPeaks(arr []float64, minSep int) []int {
	var raw []int
	n := len(arr)
	for i := 0; i < n; {
		j := i
		for j+1 < n && arr[j+1] == arr[i] {
			j++
		}
		left, right := 0.0, 0.0
		if i > 0 {
			left = arr[i-1]
		}
		if j < n-1 {
			right = arr[j+1]
		}
		if arr[i] > 0 && arr[i] > left && arr[i] > right {
			raw = append(raw, (i+j)/2)
		}
		i = j + 1
	}

	peaks := make([]int, 0, len(raw))
	for _, p := range raw {
		if last := len(peaks) - 1; last >= 0 && p-peaks[last] < minSep {
			if arr[p] > arr[peaks[last]] {
				peaks[last] = p
			}
			continue
		}
		peaks = append(peaks, p)
	}
	return peaks
}

// significantPeaks keeps peaks that reach half of the profile maximum.
func significantPeaks(arr []float64, maxVal float64, minSep int) []int {
	peaks := findPeaks(arr, minSep)
	out := peaks[:0]
	for _, p := range peaks {
		if arr[p] >= 0.5*maxVal {
			out = append(out, p)
		}
	}
	return out
}
