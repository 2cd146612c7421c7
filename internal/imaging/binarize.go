package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/anthonynsimon/bild/segment"
)

const (
	// ThresholdMin and ThresholdMax bound the adaptive ink threshold.
	ThresholdMin = 55
	ThresholdMax = 200

	thresholdScale = 0.9
)

// BinaryMask marks each pixel as foreground (ink) or background (paper).
//
// A mask is immutable once built; it has the dimensions of the PixelBuffer it
// was derived from.
type BinaryMask struct {
	width     int
	height    int
	threshold int
	fg        []bool
}

// NewBinaryMask builds a mask from a row-major foreground slice. The slice is
// copied. It is mainly useful for tests and for detectors that produce masks
// from other sources.
func NewBinaryMask(width, height int, fg []bool) *BinaryMask {
	bits := make([]bool, width*height)
	copy(bits, fg)
	return &BinaryMask{width: width, height: height, fg: bits}
}

func (m *BinaryMask) Width() int     { return m.width }
func (m *BinaryMask) Height() int    { return m.height }
func (m *BinaryMask) Threshold() int { return m.threshold }

// At reports whether (x, y) is foreground. Out-of-range reads are background.
func (m *BinaryMask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.fg[y*m.width+x]
}

// AtIndex reports whether the pixel at row-major index i is foreground.
func (m *BinaryMask) AtIndex(i int) bool {
	return m.fg[i]
}

// Foreground counts foreground pixels.
func (m *BinaryMask) Foreground() int {
	n := 0
	for _, v := range m.fg {
		if v {
			n++
		}
	}
	return n
}

// CountRect counts foreground pixels in r, clipped to the mask.
func (m *BinaryMask) CountRect(r image.Rectangle) int {
	r = r.Intersect(image.Rect(0, 0, m.width, m.height))
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.fg[y*m.width : (y+1)*m.width]
		for x := r.Min.X; x < r.Max.X; x++ {
			if row[x] {
				n++
			}
		}
	}
	return n
}

// Image renders the mask with foreground black on white.
func (m *BinaryMask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.width, m.height))
	for i, v := range m.fg {
		if v {
			img.Pix[i] = 0
		} else {
			img.Pix[i] = 255
		}
	}
	return img
}

// MeanLuma returns the average luma of the buffer, or 0 when it is empty.
func MeanLuma(buf *PixelBuffer) float64 {
	if len(buf.Pix) == 0 {
		return 0
	}
	var sum uint64
	for _, v := range buf.Pix {
		sum += uint64(v)
	}
	return float64(sum) / float64(len(buf.Pix))
}

// ThresholdFor computes the adaptive ink threshold for buf:
//
//	clamp(round(mean * 0.9), 55, 200)
//
// The 0.9 factor keeps mid-gray paper texture on the background side of the
// cut; the clamp keeps very dark or very bright photos usable.
func ThresholdFor(buf *PixelBuffer) int {
	return clamp(int(math.Round(MeanLuma(buf)*thresholdScale)), ThresholdMin, ThresholdMax)
}

// Binarize marks every pixel darker than ThresholdFor(buf) as foreground.
func Binarize(buf *PixelBuffer) *BinaryMask {
	thr := ThresholdFor(buf)
	mask := &BinaryMask{
		width:     buf.Width,
		height:    buf.Height,
		threshold: thr,
		fg:        make([]bool, len(buf.Pix)),
	}

	cut := uint8(thr)
	parallel.Line(buf.Height, func(start, end int) {
		for i := start * buf.Width; i < end*buf.Width; i++ {
			mask.fg[i] = buf.Pix[i] < cut
		}
	})

	return mask
}

// MaskPreview renders the binarization of buf as a black-on-white image for
// display. It uses the same threshold as Binarize.
func MaskPreview(buf *PixelBuffer) *image.Gray {
	return segment.Threshold(buf.Gray(), uint8(ThresholdFor(buf)))
}
