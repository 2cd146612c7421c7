package detection

import (
	"sort"

	"github.com/ironsheep/math-tools-mcp/internal/imaging"
)

// DefaultMinArea is the smallest component, in pixels, treated as a glyph.
// Anything smaller is specks, dust or JPEG noise.
const DefaultMinArea = 30

// Component is a maximal 4-connected set of foreground pixels.
type Component struct {
	// ID is assigned in raster order of each component's first pixel,
	// starting at 1. IDs of dropped components are not reused.
	ID int `json:"id"`

	// Bounds is the tight bounding box of Pixels.
	Bounds Bounds `json:"bounds"`

	// Pixels holds row-major indices (y*width + x) into the source mask.
	Pixels []int `json:"-"`

	// Area is len(Pixels).
	Area int `json:"area"`

	// Perimeter counts pixels with at least one background 4-neighbour.
	// Pixels on the image border count as boundary.
	Perimeter int `json:"perimeter"`
}

// Segment labels the 4-connected foreground components of mask.
//
// Components with fewer than minArea pixels are dropped. The result is
// ordered by ID and is identical for identical masks. An all-background mask
// yields an empty, non-nil slice.
//
// # Algorithm
//
// A raster scan finds unlabelled foreground pixels; each one seeds an
// iterative flood fill driven by an explicit stack, so arbitrarily large
// strokes cannot overflow the goroutine stack. Bounding box, pixel list and
// area are accumulated during the fill and the perimeter is counted in a
// second pass over the component's own pixels.
func Segment(mask *imaging.BinaryMask, minArea int) []Component {
	width, height := mask.Width(), mask.Height()
	labels := make([]int32, width*height)
	components := make([]Component, 0)
	stack := make([]int, 0, 256)

	var nextID int32
	for start := 0; start < width*height; start++ {
		if !mask.AtIndex(start) || labels[start] != 0 {
			continue
		}
		nextID++

		c := Component{ID: int(nextID)}
		minX, minY := width, height
		maxX, maxY := -1, -1

		labels[start] = nextID
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			c.Pixels = append(c.Pixels, i)

			x, y := i%width, i/width
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			// 4-connected neighbors
			if x > 0 && mask.AtIndex(i-1) && labels[i-1] == 0 {
				labels[i-1] = nextID
				stack = append(stack, i-1)
			}
			if x < width-1 && mask.AtIndex(i+1) && labels[i+1] == 0 {
				labels[i+1] = nextID
				stack = append(stack, i+1)
			}
			if y > 0 && mask.AtIndex(i-width) && labels[i-width] == 0 {
				labels[i-width] = nextID
				stack = append(stack, i-width)
			}
			if y < height-1 && mask.AtIndex(i+width) && labels[i+width] == 0 {
				labels[i+width] = nextID
				stack = append(stack, i+width)
			}
		}

		c.Area = len(c.Pixels)
		if c.Area < minArea {
			continue
		}

		sort.Ints(c.Pixels)
		c.Bounds = Bounds{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
		c.Perimeter = perimeter(mask, c.Pixels)
		components = append(components, c)
	}

	return components
}

// perimeter counts pixels of a component that touch background or the image
// border through a 4-neighbour.
func perimeter(mask *imaging.BinaryMask, pixels []int) int {
	width := mask.Width()
	n := 0
	for _, i := range pixels {
		x, y := i%width, i/width
		if !mask.At(x-1, y) || !mask.At(x+1, y) || !mask.At(x, y-1) || !mask.At(x, y+1) {
			n++
		}
	}
	return n
}
