package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	apperrors "github.com/ironsheep/math-tools-mcp/internal/errors"
)

const (
	// DefaultMaxDimension caps the long edge of a normalized image.
	DefaultMaxDimension = 1400

	// DefaultGlyphContrast is the contrast gain used before glyph segmentation.
	DefaultGlyphContrast = 1.08

	// DefaultOCRContrast is the stronger gain used before handing an image to OCR.
	DefaultOCRContrast = 1.5
)

// PixelBuffer is a grayscale raster produced by Normalize.
//
// Pix holds one luma byte per pixel in row-major order: the pixel at (x, y)
// is Pix[y*Width+x]. Downstream stages treat the buffer as read-only.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer allocates a white buffer of the given size.
func NewPixelBuffer(width, height int) *PixelBuffer {
	pix := make([]uint8, width*height)
	for i := range pix {
		pix[i] = 255
	}
	return &PixelBuffer{Width: width, Height: height, Pix: pix}
}

// At returns the luma at (x, y). Out-of-range coordinates read as white.
func (b *PixelBuffer) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return 255
	}
	return b.Pix[y*b.Width+x]
}

// Gray wraps the buffer as an *image.Gray without copying.
func (b *PixelBuffer) Gray() *image.Gray {
	return &image.Gray{
		Pix:    b.Pix,
		Stride: b.Width,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// NormalizeOptions controls Normalize.
type NormalizeOptions struct {
	// MaxDimension is the largest allowed width or height. Larger images are
	// shrunk with their aspect ratio preserved. Smaller images are never enlarged.
	MaxDimension int

	// Contrast is the gain k in ((luma-128)*k)+128.
	Contrast float64
}

// DefaultNormalizeOptions returns the settings used ahead of glyph detection.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{MaxDimension: DefaultMaxDimension, Contrast: DefaultGlyphContrast}
}

// OCRNormalizeOptions returns the higher-contrast settings used ahead of OCR.
func OCRNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{MaxDimension: DefaultMaxDimension, Contrast: DefaultOCRContrast}
}

func (o NormalizeOptions) withDefaults() NormalizeOptions {
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.Contrast <= 0 {
		o.Contrast = 1
	}
	return o
}

// Normalize converts a decoded image into a contrast-stretched luma buffer.
//
// # Algorithm
//
//  1. Flatten: transparent areas are composited onto white paper.
//  2. Resize: if the long edge exceeds MaxDimension, shrink to fit (aspect
//     ratio preserved, bilinear filter).
//  3. Luma: Y = 0.299*R + 0.587*G + 0.114*B (ITU-R BT.601).
//  4. Contrast: Y' = ((Y - 128) * k) + 128, clamped to [0, 255] and rounded.
//
// Rows are processed in parallel; the result does not depend on scheduling.
//
// # Errors
//
// Returns a DECODE_FAILED ProcessingError for images without pixels.
func Normalize(img image.Image, opts NormalizeOptions) (*PixelBuffer, error) {
	opts = opts.withDefaults()

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, apperrors.NewDecodeError("image has no pixels", nil)
	}

	flat := imaging.Overlay(imaging.New(bounds.Dx(), bounds.Dy(), color.White), img, image.Pt(0, 0), 1.0)
	if bounds.Dx() > opts.MaxDimension || bounds.Dy() > opts.MaxDimension {
		flat = imaging.Fit(flat, opts.MaxDimension, opts.MaxDimension, imaging.Linear)
	}

	width := flat.Bounds().Dx()
	height := flat.Bounds().Dy()
	buf := &PixelBuffer{Width: width, Height: height, Pix: make([]uint8, width*height)}
	k := opts.Contrast

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			src := flat.Pix[y*flat.Stride : y*flat.Stride+width*4]
			dst := buf.Pix[y*width : (y+1)*width]
			for x := 0; x < width; x++ {
				r, g, b := float64(src[x*4]), float64(src[x*4+1]), float64(src[x*4+2])
				luma := 0.299*r + 0.587*g + 0.114*b
				dst[x] = clampByte(math.Round((luma-128)*k + 128))
			}
		}
	})

	return buf, nil
}

// NormalizeBytes decodes data and normalizes the result.
func NormalizeBytes(data []byte, opts NormalizeOptions) (*PixelBuffer, error) {
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return Normalize(img, opts)
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
