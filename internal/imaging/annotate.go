package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotation is one labelled box to draw over an image.
type Annotation struct {
	Rect  image.Rectangle
	Label string
}

// AnnotateResult contains the annotated image
type AnnotateResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Count       int    `json:"count"`
}

// LabelColor returns the outline color used for a label. Every label maps to
// a fixed hue so the same glyph class has the same color across images.
func LabelColor(label string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(label))
	hue := float64(h.Sum32() % 360)
	r, g, b := colorful.Hsv(hue, 0.85, 0.9).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Annotate draws each annotation as a 2px outline with its label above the
// top-left corner and returns the result as a base64 PNG.
func Annotate(img image.Image, annotations []Annotation) (*AnnotateResult, error) {
	bounds := img.Bounds()

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for _, a := range annotations {
		c := LabelColor(a.Label)
		r := a.Rect.Add(bounds.Min)
		drawRect(result, r, c, 2)
		drawLabel(result, r.Min.X, r.Min.Y-2, a.Label, color.RGBA{255, 255, 255, 255}, c)
	}

	encoded, err := EncodePNGBase64(result)
	if err != nil {
		return nil, err
	}

	return &AnnotateResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Count:       len(annotations),
	}, nil
}

// EncodePNGBase64 encodes img as PNG and returns it base64 encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := r.Min.X - t; x < r.Max.X+t; x++ {
			img.Set(x, r.Min.Y-t, c)
			img.Set(x, r.Max.Y-1+t, c)
		}
		for y := r.Min.Y - t; y < r.Max.Y+t; y++ {
			img.Set(r.Min.X-t, y, c)
			img.Set(r.Max.X-1+t, y, c)
		}
	}
}

// drawLabel draws text with its baseline at (x, y) on a filled background.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()

	// keep the label inside the image
	if y-ascent < img.Rect.Min.Y {
		y = img.Rect.Min.Y + ascent
	}

	box := image.Rect(x-1, y-ascent-1, x+width+1, y+descent).Intersect(img.Rect)
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Src)

	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
